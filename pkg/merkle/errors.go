package merkle

import "errors"

var (
	// ErrInvalidLeafSize is returned when an input leaf is not exactly 32 bytes.
	ErrInvalidLeafSize = errors.New("leaves must be 32 bytes")

	// ErrLeafNotFound is returned when a proof is requested for a value that is
	// not a leaf of the tree.
	ErrLeafNotFound = errors.New("leaf not found in merkle tree")

	// ErrLeafMismatch is returned when the leaf at the requested position does
	// not match the supplied leaf.
	ErrLeafMismatch = errors.New("leaf does not match leaf at index in tree")

	// ErrEmptyTreeRoot is returned when a proof is requested from a tree built
	// from zero leaves.
	ErrEmptyTreeRoot = errors.New("merkle tree has no leaves")

	// ErrIndexOutOfRange is returned for a 1-based position outside the tree.
	ErrIndexOutOfRange = errors.New("leaf index out of range")

	// ErrInvalidProofEncoding is returned when a hex proof cannot be split into
	// 32-byte elements.
	ErrInvalidProofEncoding = errors.New("invalid proof encoding")

	// ErrInvalidDigestEncoding is returned when a hex value is not a 32-byte digest.
	ErrInvalidDigestEncoding = errors.New("invalid digest encoding")
)
