package merkle

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// EncodeProof concatenates the proof elements, leaf side first, and returns
// them as a single 0x-prefixed lowercase hex string. An empty proof encodes
// as "0x".
func EncodeProof(proof Proof) string {
	buf := make([]byte, 0, len(proof)*DigestLength)
	for _, element := range proof {
		buf = append(buf, element[:]...)
	}
	return hexutil.Encode(buf)
}

// DecodeProof parses the output of EncodeProof.
func DecodeProof(s string) (Proof, error) {
	raw, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProofEncoding, err)
	}
	if len(raw)%DigestLength != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidProofEncoding, len(raw), DigestLength)
	}
	proof := make(Proof, len(raw)/DigestLength)
	for i := range proof {
		copy(proof[i][:], raw[i*DigestLength:(i+1)*DigestLength])
	}
	return proof, nil
}

// EncodeDigest returns the 0x-prefixed lowercase hex form of d.
func EncodeDigest(d Digest) string {
	return hexutil.Encode(d[:])
}

// DecodeDigest parses a 0x-prefixed hex string holding exactly 32 bytes.
func DecodeDigest(s string) (Digest, error) {
	raw, err := hexutil.Decode(s)
	if err != nil {
		return Digest{}, fmt.Errorf("%w: %v", ErrInvalidDigestEncoding, err)
	}
	if len(raw) != DigestLength {
		return Digest{}, fmt.Errorf("%w: got %d bytes", ErrInvalidDigestEncoding, len(raw))
	}
	var d Digest
	copy(d[:], raw)
	return d, nil
}

// EncodeRoot returns the wire form of the tree root. The empty tree has no
// computed root and encodes as "0x".
func EncodeRoot(t *Tree) string {
	if t.Empty() {
		return hexutil.Encode(nil)
	}
	return EncodeDigest(t.Root())
}
