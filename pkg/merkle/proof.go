package merkle

import "fmt"

// GetProof returns the inclusion proof for leaf in an unordered tree.
//
// The leaf is located by equality and the first match is used. In an ordered
// tree that contains duplicate leaves the match may not be the position the
// caller means; use GetProofOrdered whenever duplicates are possible.
func (t *Tree) GetProof(leaf Leaf) (Proof, error) {
	if t.Empty() {
		return nil, ErrEmptyTreeRoot
	}
	index := t.LeafIndex(leaf)
	if index < 0 {
		return nil, fmt.Errorf("%s: %w", leaf.Hex(), ErrLeafNotFound)
	}
	return t.proofAt(index), nil
}

// GetProofOrdered returns the inclusion proof for the leaf at the given
// 1-based index. It fails with ErrLeafMismatch if the leaf stored at that
// position is not leaf.
func (t *Tree) GetProofOrdered(leaf Leaf, index uint64) (Proof, error) {
	if t.Empty() {
		return nil, ErrEmptyTreeRoot
	}
	if index == 0 || index > uint64(t.LeafCount()) {
		return nil, fmt.Errorf("index %d with %d leaves: %w", index, t.LeafCount(), ErrIndexOutOfRange)
	}
	position := int(index - 1)
	if t.Layer(0)[position] != leaf {
		return nil, fmt.Errorf("index %d: %w", index, ErrLeafMismatch)
	}
	return t.proofAt(position), nil
}

// GetProofHex is GetProof encoded for an external verifier.
func (t *Tree) GetProofHex(leaf Leaf) (string, error) {
	proof, err := t.GetProof(leaf)
	if err != nil {
		return "", err
	}
	return EncodeProof(proof), nil
}

// GetProofOrderedHex is GetProofOrdered encoded for an external verifier.
func (t *Tree) GetProofOrderedHex(leaf Leaf, index uint64) (string, error) {
	proof, err := t.GetProofOrdered(leaf, index)
	if err != nil {
		return "", err
	}
	return EncodeProof(proof), nil
}

// proofAt collects the sibling of the node on the path from leaf index to the
// root at every layer. A layer adds nothing when the node is the carried-forward
// last element of an odd-length layer.
func (t *Tree) proofAt(index int) Proof {
	proof := make(Proof, 0, t.Depth()-1)
	for layer := 0; layer < t.Depth(); layer++ {
		nodes := t.Layer(layer)
		if sibling := index ^ 1; sibling < len(nodes) {
			proof = append(proof, nodes[sibling])
		}
		index /= 2
	}
	return proof
}
