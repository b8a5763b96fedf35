package merkle

import (
	"bytes"

	"github.com/Layr-Labs/merkle-proof-go/pkg/hasher"
)

// DigestLength is the size in bytes of every leaf and interior node.
const DigestLength = hasher.DigestLength

// Digest is a 32-byte node value. Leaves and hashes share the same type so a
// layer can hold carried-forward leaves next to computed digests.
type Digest [DigestLength]byte

// Leaf is an input value of the tree.
type Leaf = Digest

// Compare orders digests by unsigned byte-wise comparison.
func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d[:], other[:])
}

// Bytes returns a copy of the digest as a slice.
func (d Digest) Bytes() []byte {
	out := make([]byte, DigestLength)
	copy(out, d[:])
	return out
}

// Hex returns the 0x-prefixed lowercase hex form of the digest.
func (d Digest) Hex() string {
	return EncodeDigest(d)
}

// EmptyRoot is the root of a tree built from zero leaves. It is a placeholder,
// not the output of any hash; use Tree.Empty to tell it apart from a
// single-leaf tree whose leaf is all zeroes.
var EmptyRoot = Digest{}

// Proof is the list of sibling digests from a leaf up to the root.
// proof[0] is closest to the leaf.
type Proof []Digest

// Hex returns the wire encoding of the proof.
func (p Proof) Hex() string {
	return EncodeProof(p)
}

// Tree is an immutable binary merkle tree. All layers live in one arena:
// layer i occupies nodes[offsets[i]:offsets[i+1]], layer 0 holds the
// normalized leaves and the last layer holds the root.
//
// A Tree is never mutated after construction and may be shared between
// goroutines without locking.
type Tree struct {
	nodes         []Digest
	offsets       []int
	preserveOrder bool
	hasher        hasher.Hasher
}
