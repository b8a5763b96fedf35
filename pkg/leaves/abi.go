package leaves

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/Layr-Labs/merkle-proof-go/pkg/merkle"
)

// ABIEncoder packs values with a fixed list of Solidity types. Build one per
// leaf layout and reuse it.
type ABIEncoder struct {
	arguments abi.Arguments
}

// NewABIEncoder parses Solidity type names such as "address" or "uint256".
func NewABIEncoder(typeNames ...string) (*ABIEncoder, error) {
	arguments := make(abi.Arguments, 0, len(typeNames))
	for _, name := range typeNames {
		typ, err := abi.NewType(name, "", nil)
		if err != nil {
			return nil, fmt.Errorf("invalid abi type %q: %w", name, err)
		}
		arguments = append(arguments, abi.Argument{Type: typ})
	}
	return &ABIEncoder{arguments: arguments}, nil
}

// Encode returns abi.encode(values...). Integer types wider than 64 bits take
// *big.Int values.
func (e *ABIEncoder) Encode(values ...interface{}) ([]byte, error) {
	encoded, err := e.arguments.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("failed to abi encode leaf values: %w", err)
	}
	return encoded, nil
}

// Leaf returns keccak256(abi.encode(values...)).
func (e *ABIEncoder) Leaf(values ...interface{}) (merkle.Leaf, error) {
	encoded, err := e.Encode(values...)
	if err != nil {
		return merkle.Leaf{}, err
	}
	return merkle.Leaf(crypto.Keccak256Hash(encoded)), nil
}

// DoubleHashedLeaf returns keccak256(keccak256(abi.encode(values...))), the
// layout used by OpenZeppelin's StandardMerkleTree to keep leaves distinct
// from inner nodes.
func (e *ABIEncoder) DoubleHashedLeaf(values ...interface{}) (merkle.Leaf, error) {
	leaf, err := e.Leaf(values...)
	if err != nil {
		return merkle.Leaf{}, err
	}
	return Keccak(leaf[:]), nil
}
