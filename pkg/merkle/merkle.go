// Package merkle builds binary merkle trees over 32-byte leaves and produces
// inclusion proofs that can be checked by a Solidity-style verifier.
//
// Two modes are supported. In ordered mode leaves keep their input positions
// and pairs are hashed as keccak256(left || right), so a proof is bound to a
// 1-based leaf index. In unordered mode leaves are deduplicated and sorted,
// and each pair is sorted before hashing, so proofs carry no position.
//
// A layer with an odd number of nodes carries its last node up to the next
// layer unchanged; nodes are never paired with themselves.
package merkle

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/Layr-Labs/merkle-proof-go/pkg/hasher"
)

// Option configures tree construction.
type Option func(*Tree)

// WithHasher sets the hash primitive used to combine nodes. It must return
// 32-byte digests. A nil hasher keeps the default Keccak-256.
func WithHasher(h hasher.Hasher) Option {
	return func(t *Tree) {
		if h != nil {
			t.hasher = h
		}
	}
}

// NewTree builds a merkle tree from leaves.
//
// Empty entries are dropped. Every remaining entry must be exactly 32 bytes.
// When preserveOrder is false, duplicate leaves are removed (first occurrence
// wins) and the rest are sorted byte-wise before the tree is built.
//
// Zero leaves yields a tree whose root is EmptyRoot.
func NewTree(leaves [][]byte, preserveOrder bool, opts ...Option) (*Tree, error) {
	t := &Tree{
		preserveOrder: preserveOrder,
		hasher:        hasher.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}

	normalized, err := normalizeLeaves(leaves, preserveOrder)
	if err != nil {
		return nil, err
	}

	t.build(normalized)
	return t, nil
}

// Root builds a tree from leaves and returns its root.
func Root(leaves [][]byte, preserveOrder bool, opts ...Option) (Digest, error) {
	t, err := NewTree(leaves, preserveOrder, opts...)
	if err != nil {
		return Digest{}, err
	}
	return t.Root(), nil
}

// normalizeLeaves filters, validates and (in unordered mode) dedups and sorts the input.
func normalizeLeaves(leaves [][]byte, preserveOrder bool) ([]Digest, error) {
	out := make([]Digest, 0, len(leaves))
	for i, raw := range leaves {
		if len(raw) == 0 {
			continue
		}
		if len(raw) != DigestLength {
			return nil, fmt.Errorf("leaf %d has %d bytes: %w", i, len(raw), ErrInvalidLeafSize)
		}
		var leaf Digest
		copy(leaf[:], raw)
		out = append(out, leaf)
	}

	if preserveOrder {
		return out, nil
	}

	seen := make(map[Digest]struct{}, len(out))
	deduped := out[:0]
	for _, leaf := range out {
		if _, ok := seen[leaf]; ok {
			continue
		}
		seen[leaf] = struct{}{}
		deduped = append(deduped, leaf)
	}
	sort.Slice(deduped, func(i, j int) bool {
		return deduped[i].Compare(deduped[j]) < 0
	})
	return deduped, nil
}

// layerSizes returns the length of every layer for n leaves, leaves first.
func layerSizes(n int) []int {
	sizes := []int{n}
	for n > 1 {
		n = (n + 1) / 2
		sizes = append(sizes, n)
	}
	return sizes
}

func (t *Tree) build(leaves []Digest) {
	if len(leaves) == 0 {
		t.nodes = []Digest{EmptyRoot}
		t.offsets = []int{0, 0, 1}
		return
	}

	sizes := layerSizes(len(leaves))
	total := 0
	t.offsets = make([]int, len(sizes)+1)
	for i, size := range sizes {
		t.offsets[i] = total
		total += size
	}
	t.offsets[len(sizes)] = total

	t.nodes = make([]Digest, total)
	copy(t.nodes, leaves)

	for layer := 1; layer < len(sizes); layer++ {
		below := t.Layer(layer - 1)
		current := t.nodes[t.offsets[layer]:t.offsets[layer+1]]
		for i := range current {
			left := 2 * i
			if left+1 < len(below) {
				current[i] = Combine(t.hasher, below[left], below[left+1], t.preserveOrder)
			} else {
				current[i] = below[left]
			}
		}
	}
}

// Combine hashes two sibling nodes into their parent. In ordered mode the
// digest is H(a || b); otherwise the pair is sorted byte-wise first so the
// result does not depend on which side each node was on.
func Combine(h hasher.Hasher, a, b Digest, preserveOrder bool) Digest {
	if !preserveOrder && bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	var out Digest
	copy(out[:], h.Hash(a[:], b[:]))
	return out
}

// Root returns the single node of the top layer, or EmptyRoot for an empty tree.
func (t *Tree) Root() Digest {
	return t.nodes[len(t.nodes)-1]
}

// Empty reports whether the tree was built from zero leaves.
func (t *Tree) Empty() bool {
	return t.LeafCount() == 0
}

// PreserveOrder reports whether the tree was built in ordered mode.
func (t *Tree) PreserveOrder() bool {
	return t.preserveOrder
}

// Hasher returns the hash primitive the tree was built with.
func (t *Tree) Hasher() hasher.Hasher {
	return t.hasher
}

// LeafCount returns the number of leaves after normalization.
func (t *Tree) LeafCount() int {
	return t.offsets[1] - t.offsets[0]
}

// Leaves returns a copy of the normalized leaves in tree order.
func (t *Tree) Leaves() []Leaf {
	return append([]Leaf(nil), t.Layer(0)...)
}

// Depth returns the number of layers, including the leaf and root layers.
func (t *Tree) Depth() int {
	return len(t.offsets) - 1
}

// Layer returns layer i, where 0 is the leaves and Depth()-1 is the root.
// The returned slice aliases the tree and must not be modified.
func (t *Tree) Layer(i int) []Digest {
	if i < 0 || i >= t.Depth() {
		return nil
	}
	return t.nodes[t.offsets[i]:t.offsets[i+1]:t.offsets[i+1]]
}

// LeafIndex returns the 0-based position of the first leaf equal to leaf, or -1.
func (t *Tree) LeafIndex(leaf Leaf) int {
	for i, l := range t.Layer(0) {
		if l == leaf {
			return i
		}
	}
	return -1
}
