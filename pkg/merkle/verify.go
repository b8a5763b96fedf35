package merkle

import (
	"math/bits"

	"github.com/Layr-Labs/merkle-proof-go/pkg/hasher"
)

// Verifier recomputes roots from proofs without access to the tree.
// Verification never fails with an error: a malformed or mismatched proof is
// reported as false.
type Verifier struct {
	hasher hasher.Hasher
}

// NewVerifier returns a verifier combining nodes with h. A nil h selects Keccak-256.
func NewVerifier(h hasher.Hasher) *Verifier {
	if h == nil {
		h = hasher.Default()
	}
	return &Verifier{hasher: h}
}

var defaultVerifier = NewVerifier(nil)

// CheckProof verifies an unordered proof with Keccak-256.
func CheckProof(proof Proof, root Digest, leaf Leaf) bool {
	return defaultVerifier.CheckProof(proof, root, leaf)
}

// CheckProofOrdered verifies an ordered proof for a 1-based index with Keccak-256.
func CheckProofOrdered(proof Proof, root Digest, leaf Leaf, index uint64) bool {
	return defaultVerifier.CheckProofOrdered(proof, root, leaf, index)
}

// CheckProofOrderedCompat runs the on-chain index walk with Keccak-256.
func CheckProofOrderedCompat(proof Proof, root Digest, leaf Leaf, index uint64) bool {
	return defaultVerifier.CheckProofOrderedCompat(proof, root, leaf, index)
}

// CheckProofHex verifies a hex-encoded unordered proof with Keccak-256.
func CheckProofHex(proof, root, leaf string) bool {
	return defaultVerifier.CheckProofHex(proof, root, leaf)
}

// CheckProofOrderedHex verifies a hex-encoded ordered proof with Keccak-256.
func CheckProofOrderedHex(proof, root, leaf string, index uint64) bool {
	return defaultVerifier.CheckProofOrderedHex(proof, root, leaf, index)
}

// CheckProof folds the proof into leaf with the sorted pair hash and compares
// the result with root.
func (v *Verifier) CheckProof(proof Proof, root Digest, leaf Leaf) bool {
	current := leaf
	for _, sibling := range proof {
		current = Combine(v.hasher, current, sibling, false)
	}
	return current == root
}

// CheckProofOrdered verifies a proof produced by Tree.GetProofOrdered for the
// leaf at the given 1-based index.
//
// Walking up from a leaf, its ancestor is at each layer either a left child, a
// right child, or the last node of an odd-length layer that is carried up
// without a sibling. Once an ancestor is the last node of its layer it stays
// last in every layer above, and from then on only right-child layers
// contribute a proof element. With p = index-1 and the lowest such layer t,
// the proof therefore has t + popcount(p >> t) elements. The verifier solves
// for t from the proof length and replays the walk. Layers in which the
// ancestor is a right child take a sibling from the left whether or not they
// are above t, so the hashing order does not depend on which solution is used.
func (v *Verifier) CheckProofOrdered(proof Proof, root Digest, leaf Leaf, index uint64) bool {
	if index == 0 {
		return false
	}
	position := index - 1

	carryFrom, ok := carryLayer(position, len(proof))
	if !ok {
		return false
	}

	current := leaf
	next := 0
	for layer := 0; next < len(proof); layer++ {
		right := layer < 64 && (position>>uint(layer))&1 == 1
		if !right && layer >= carryFrom {
			continue
		}
		if right {
			current = Combine(v.hasher, proof[next], current, true)
		} else {
			current = Combine(v.hasher, current, proof[next], true)
		}
		next++
	}
	return current == root
}

// carryLayer returns the lowest layer t with t + popcount(position >> t) == n.
func carryLayer(position uint64, n int) (int, bool) {
	for t := 0; t <= n; t++ {
		var above uint64
		if t < 64 {
			above = position >> uint(t)
		}
		switch count := t + bits.OnesCount64(above); {
		case count == n:
			return t, true
		case count > n:
			return 0, false
		}
	}
	return 0, false
}

// CheckProofOrderedCompat verifies an ordered proof with the index walk used
// by the MerkleProof.sol checkProofOrdered contract method:
//
//	for each proof element i, with remaining = len(proof) - i:
//	    while remaining > 0 and index is odd and index > 2^remaining:
//	        index = round(index / 2)
//	    even index: hash(element || current), odd index: hash(current || element)
//	    index = round(index / 2)
//
// It returns exactly what that contract returns. The walk rejects some honest
// proofs from trees whose leaf count is not a power of two (for example index
// 11 of 12 leaves). Use CheckProofOrdered when no on-chain parity is needed.
func (v *Verifier) CheckProofOrderedCompat(proof Proof, root Digest, leaf Leaf, index uint64) bool {
	if index == 0 {
		return false
	}

	current := leaf
	for i, element := range proof {
		remaining := len(proof) - i
		for remaining < 64 && index%2 == 1 && index > uint64(1)<<uint(remaining) {
			index = (index + 1) / 2
		}

		if index%2 == 0 {
			current = Combine(v.hasher, element, current, true)
		} else {
			current = Combine(v.hasher, current, element, true)
		}
		index = (index + 1) / 2
	}
	return current == root
}

// CheckProofHex decodes a wire-format proof, root and leaf and runs CheckProof.
// Any decoding failure is a failed verification.
func (v *Verifier) CheckProofHex(proof, root, leaf string) bool {
	p, r, l, ok := decodeInputs(proof, root, leaf)
	if !ok {
		return false
	}
	return v.CheckProof(p, r, l)
}

// CheckProofOrderedHex decodes a wire-format proof, root and leaf and runs
// CheckProofOrdered.
func (v *Verifier) CheckProofOrderedHex(proof, root, leaf string, index uint64) bool {
	p, r, l, ok := decodeInputs(proof, root, leaf)
	if !ok {
		return false
	}
	return v.CheckProofOrdered(p, r, l, index)
}

func decodeInputs(proof, root, leaf string) (Proof, Digest, Leaf, bool) {
	p, err := DecodeProof(proof)
	if err != nil {
		return nil, Digest{}, Leaf{}, false
	}
	r, err := DecodeDigest(root)
	if err != nil {
		return nil, Digest{}, Leaf{}, false
	}
	l, err := DecodeDigest(leaf)
	if err != nil {
		return nil, Digest{}, Leaf{}, false
	}
	return p, r, l, true
}
