package prover

import "errors"

var (
	// ErrTreeNotFound is returned when no snapshot is stored under a root.
	ErrTreeNotFound = errors.New("tree not found")

	// ErrHasherMismatch is returned when a snapshot was published with a
	// different hash primitive than the service is configured with.
	ErrHasherMismatch = errors.New("snapshot hash does not match service hash")

	// ErrSnapshotCorrupt is returned when a stored snapshot does not rebuild
	// to the root it is keyed by.
	ErrSnapshotCorrupt = errors.New("snapshot is corrupt")

	// ErrEmptyTree is returned when publishing a leaf set with no leaves.
	ErrEmptyTree = errors.New("cannot publish an empty tree")
)
