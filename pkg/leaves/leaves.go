// Package leaves builds 32-byte merkle leaves from application values and
// reads leaf sets from text files.
package leaves

import (
	"bufio"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Layr-Labs/merkle-proof-go/pkg/merkle"
)

// FromUint64 encodes n big-endian, left padded to 32 bytes, which is how
// Solidity lays out a uint256.
func FromUint64(n uint64) merkle.Leaf {
	return FromBig(new(big.Int).SetUint64(n))
}

// FromBig encodes a non-negative integer as a 32-byte big-endian word. Values
// wider than 256 bits keep their low 32 bytes.
func FromBig(n *big.Int) merkle.Leaf {
	return merkle.Leaf(common.BigToHash(n))
}

// FromAddress encodes an address as a left padded 32-byte word.
func FromAddress(addr common.Address) merkle.Leaf {
	var leaf merkle.Leaf
	copy(leaf[:], common.LeftPadBytes(addr.Bytes(), merkle.DigestLength))
	return leaf
}

// Keccak hashes arbitrary data into a leaf: keccak256(abi.encodePacked(data...)).
func Keccak(data ...[]byte) merkle.Leaf {
	return merkle.Leaf(crypto.Keccak256Hash(data...))
}

// Range returns FromUint64(i) for i in [from, from+count).
func Range(from, count uint64) [][]byte {
	out := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		leaf := FromUint64(from + i)
		out = append(out, leaf.Bytes())
	}
	return out
}

// ToBytes converts leaves to the raw form accepted by merkle.NewTree.
func ToBytes(leaves []merkle.Leaf) [][]byte {
	out := make([][]byte, len(leaves))
	for i, leaf := range leaves {
		out[i] = leaf.Bytes()
	}
	return out
}

// ReadHex reads one 0x-prefixed 32-byte hex value per line. Blank lines and
// lines starting with '#' are skipped.
func ReadHex(r io.Reader) ([]merkle.Leaf, error) {
	var out []merkle.Leaf
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		leaf, err := merkle.DecodeDigest(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, leaf)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaves: %w", err)
	}
	return out, nil
}

// WriteHex writes leaves in the format read by ReadHex.
func WriteHex(w io.Writer, leaves []merkle.Leaf) error {
	for _, leaf := range leaves {
		if _, err := fmt.Fprintln(w, leaf.Hex()); err != nil {
			return err
		}
	}
	return nil
}
