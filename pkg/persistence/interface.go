package persistence

// ITreePersistence stores the leaf sets behind published merkle roots so that
// proofs can be produced for a root after the process that built it is gone.
// All implementations must be thread-safe.
//
// Snapshots are keyed by their lowercase 0x-prefixed root.
type ITreePersistence interface {
	// SaveTree persists a snapshot under its root.
	// Saving the same root again overwrites the previous snapshot (idempotent).
	SaveTree(snapshot *TreeSnapshot) error

	// LoadTree retrieves the snapshot for root.
	// Returns nil if it doesn't exist, error only on storage failure.
	LoadTree(root string) (*TreeSnapshot, error)

	// ListTrees returns all snapshots ordered by CreatedAt, then root.
	// Returns empty slice if none exist, error only on storage failure.
	ListTrees() ([]*TreeSnapshot, error)

	// DeleteTree removes the snapshot for root.
	// Idempotent - returns nil if it doesn't exist.
	DeleteTree(root string) error

	// Close cleanly shuts down the persistence layer.
	// Idempotent - safe to call multiple times.
	// After Close(), all other operations return errors.
	Close() error

	// HealthCheck verifies the persistence layer is operational.
	HealthCheck() error
}
