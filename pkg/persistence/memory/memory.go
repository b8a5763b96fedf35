package memory

import (
	"fmt"
	"sync"

	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence"
)

// MemoryPersistence is an in-memory implementation of ITreePersistence.
// This implementation is intended for TESTING and one-shot CLI runs.
//
// All data is stored in memory and will be lost when the process exits.
// Thread-safe using sync.RWMutex for concurrent access.
// Deep copies data to prevent external mutation.
type MemoryPersistence struct {
	mu sync.RWMutex

	// Tree snapshots: root -> TreeSnapshot
	trees map[string]*persistence.TreeSnapshot

	closed bool
}

// NewMemoryPersistence creates a new in-memory persistence layer.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{
		trees: make(map[string]*persistence.TreeSnapshot),
	}
}

// SaveTree persists a tree snapshot.
func (m *MemoryPersistence) SaveTree(snapshot *persistence.TreeSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	m.trees[persistence.NormalizeRoot(snapshot.Root)] = snapshot.Copy()
	return nil
}

// LoadTree retrieves a tree snapshot by root.
func (m *MemoryPersistence) LoadTree(root string) (*persistence.TreeSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	snapshot, exists := m.trees[persistence.NormalizeRoot(root)]
	if !exists {
		return nil, nil // Not found is not an error
	}

	return snapshot.Copy(), nil
}

// ListTrees returns all tree snapshots sorted by creation time.
func (m *MemoryPersistence) ListTrees() ([]*persistence.TreeSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	result := make([]*persistence.TreeSnapshot, 0, len(m.trees))
	for _, snapshot := range m.trees {
		result = append(result, snapshot.Copy())
	}
	persistence.SortSnapshots(result)

	return result, nil
}

// DeleteTree removes a tree snapshot.
func (m *MemoryPersistence) DeleteTree(root string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	delete(m.trees, persistence.NormalizeRoot(root))
	return nil
}

// Close marks the persistence layer as closed.
func (m *MemoryPersistence) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// HealthCheck always succeeds for an open in-memory store.
func (m *MemoryPersistence) HealthCheck() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	return nil
}
