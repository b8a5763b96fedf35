// Package hasher provides the 32-byte hash primitives used to combine merkle
// tree nodes. The primitive is injected into the tree builder and verifier so it
// can be matched to whatever the downstream proof checker computes.
package hasher

import (
	"fmt"
	"sort"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/mimc"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/wealdtech/go-merkletree/v2/blake2b"
	"golang.org/x/crypto/sha3"
)

// DigestLength is the output size, in bytes, every Hasher must produce.
const DigestLength = 32

// Hasher hashes the concatenation of its inputs into a 32-byte digest.
// Implementations must be safe for concurrent use.
type Hasher interface {
	Hash(data ...[]byte) []byte
}

// HasherFunc adapts a plain function to the Hasher interface.
type HasherFunc func(data ...[]byte) []byte

// Hash calls f(data...).
func (f HasherFunc) Hash(data ...[]byte) []byte {
	return f(data...)
}

// Names of the built-in hash primitives
const (
	NameKeccak256 = "keccak256"
	NameSHA3256   = "sha3-256"
	NameBLAKE2b   = "blake2b"
	NameMiMC      = "mimc-bls12-381"
)

// Keccak256 is the legacy Keccak-256 used by the EVM. Solidity's keccak256
// over abi.encodePacked(a, b) produces the same digest.
var Keccak256 Hasher = HasherFunc(crypto.Keccak256)

// SHA3256 is the FIPS-202 SHA3-256 hash.
var SHA3256 Hasher = HasherFunc(func(data ...[]byte) []byte {
	h := sha3.New256()
	for _, b := range data {
		_, _ = h.Write(b)
	}
	return h.Sum(nil)
})

// BLAKE2b is the 256-bit BLAKE2b hash.
var BLAKE2b Hasher = blake2b.New()

// MiMC is the MiMC hash over the BLS12-381 scalar field, for trees whose
// proofs are checked inside a circuit. The concatenated input is split into
// 32-byte big-endian chunks and each chunk is reduced into the field first.
var MiMC Hasher = HasherFunc(func(data ...[]byte) []byte {
	var buf []byte
	for _, b := range data {
		buf = append(buf, b...)
	}

	h := mimc.NewMiMC()
	var e fr.Element
	for len(buf) > 0 {
		n := min(len(buf), fr.Bytes)
		e.SetBytes(buf[:n])
		block := e.Bytes()
		_, _ = h.Write(block[:])
		buf = buf[n:]
	}
	return h.Sum(nil)
})

var registry = map[string]Hasher{
	NameKeccak256: Keccak256,
	NameSHA3256:   SHA3256,
	NameBLAKE2b:   BLAKE2b,
	NameMiMC:      MiMC,
}

// Default returns the hasher used when none is configured.
func Default() Hasher {
	return Keccak256
}

// ByName returns the built-in hasher registered under name (case-insensitive).
func ByName(name string) (Hasher, error) {
	h, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unsupported hash %q, supported: %s", name, strings.Join(Names(), ", "))
	}
	return h, nil
}

// Names lists the registered hasher names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
