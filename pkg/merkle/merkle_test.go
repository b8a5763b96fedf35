package merkle

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-proof-go/pkg/hasher"
)

// leafFor encodes n big-endian into the low 4 bytes of a 32-byte leaf
func leafFor(n uint32) []byte {
	leaf := make([]byte, DigestLength)
	binary.BigEndian.PutUint32(leaf[DigestLength-4:], n)
	return leaf
}

func digestFor(n uint32) Digest {
	var d Digest
	copy(d[:], leafFor(n))
	return d
}

// createLeaves returns leaves for 1..n
func createLeaves(n int) [][]byte {
	leaves := make([][]byte, n)
	for i := 0; i < n; i++ {
		leaves[i] = leafFor(uint32(i + 1))
	}
	return leaves
}

func mustDecodeDigest(t *testing.T, s string) Digest {
	t.Helper()
	d, err := DecodeDigest(s)
	require.NoError(t, err)
	return d
}

func TestNewTree(t *testing.T) {
	testCases := []struct {
		name      string
		numLeaves int
		depth     int
	}{
		{"Single leaf", 1, 1},
		{"Two leaves", 2, 2},
		{"Three leaves", 3, 3},
		{"Four leaves (power of 2)", 4, 3},
		{"Seven leaves", 7, 4},
		{"Eight leaves (power of 2)", 8, 4},
		{"Twelve leaves", 12, 5},
		{"Sixteen leaves (power of 2)", 16, 5},
	}

	for _, tc := range testCases {
		for _, preserveOrder := range []bool{true, false} {
			t.Run(tc.name, func(t *testing.T) {
				tree, err := NewTree(createLeaves(tc.numLeaves), preserveOrder)
				require.NoError(t, err)
				require.NotNil(t, tree)

				require.False(t, tree.Empty())
				require.Equal(t, preserveOrder, tree.PreserveOrder())
				require.Equal(t, tc.numLeaves, tree.LeafCount())
				require.Equal(t, tc.depth, tree.Depth())

				// every layer is half its predecessor, rounded up
				for i := 1; i < tree.Depth(); i++ {
					require.Len(t, tree.Layer(i), (len(tree.Layer(i-1))+1)/2)
				}
				require.Len(t, tree.Layer(tree.Depth()-1), 1)
				require.Equal(t, tree.Layer(tree.Depth() - 1)[0], tree.Root())
			})
		}
	}
}

func TestNewTree_SingleLeafIsRoot(t *testing.T) {
	tree, err := NewTree([][]byte{leafFor(7)}, true)
	require.NoError(t, err)
	require.Equal(t, digestFor(7), tree.Root())
}

func TestNewTree_Empty(t *testing.T) {
	for _, input := range [][][]byte{nil, {}, {{}, nil}} {
		tree, err := NewTree(input, false)
		require.NoError(t, err)
		require.True(t, tree.Empty())
		require.Equal(t, 0, tree.LeafCount())
		require.Equal(t, EmptyRoot, tree.Root())
		require.Equal(t, "0x", EncodeRoot(tree))
		require.Empty(t, tree.Leaves())
	}
}

func TestNewTree_ZeroLeafIsNotEmpty(t *testing.T) {
	tree, err := NewTree([][]byte{make([]byte, DigestLength)}, true)
	require.NoError(t, err)
	require.False(t, tree.Empty())
	require.Equal(t, EmptyRoot, tree.Root())
	require.Equal(t, EncodeDigest(Digest{}), EncodeRoot(tree))
}

func TestNewTree_InvalidLeafSize(t *testing.T) {
	for _, size := range []int{1, 20, 31, 33, 64} {
		leaves := append(createLeaves(2), make([]byte, size))
		tree, err := NewTree(leaves, false)
		require.ErrorIs(t, err, ErrInvalidLeafSize)
		require.Nil(t, tree)
		require.Contains(t, err.Error(), "leaf 2")
	}
}

func TestNewTree_FiltersEmptyEntries(t *testing.T) {
	withGaps := [][]byte{nil, leafFor(1), {}, leafFor(2), nil}
	a, err := NewTree(withGaps, true)
	require.NoError(t, err)
	b, err := NewTree(createLeaves(2), true)
	require.NoError(t, err)
	require.Equal(t, b.Root(), a.Root())
	require.Equal(t, 2, a.LeafCount())
}

func TestNewTree_DoesNotRetainInput(t *testing.T) {
	leaves := createLeaves(4)
	tree, err := NewTree(leaves, true)
	require.NoError(t, err)
	root := tree.Root()

	leaves[0][0] ^= 0xff
	require.Equal(t, root, tree.Root())
	require.Equal(t, digestFor(1), tree.Leaves()[0])
}

// Three leaves in ordered mode: C has no sibling in layer 0 and must reach the
// second layer unhashed.
func TestNewTree_OddLayerCarriesForward(t *testing.T) {
	a, b, c := digestFor(1), digestFor(2), digestFor(3)
	tree, err := NewTree([][]byte{a[:], b[:], c[:]}, true)
	require.NoError(t, err)

	require.Equal(t, 3, tree.Depth())
	require.Equal(t, []Digest{Combine(hasher.Keccak256, a, b, true), c}, tree.Layer(1))
	require.Equal(t, mustDecodeDigest(t, "0xe90b7bceb6e7df5418fb78d8ee546e97c83a08bbccc01a0644d599ccd2a7c2e0"), tree.Layer(1)[0])
	require.Equal(t, Combine(hasher.Keccak256, tree.Layer(1)[0], c, true), tree.Root())
	require.Equal(t, mustDecodeDigest(t, "0x5b462f578537e091d2e07e7a9ce57dd98b869843ef18fbcf05a78900cbd9841b"), tree.Root())
}

func TestNewTree_Idempotent(t *testing.T) {
	for _, preserveOrder := range []bool{true, false} {
		leaves := createLeaves(13)
		a, err := NewTree(leaves, preserveOrder)
		require.NoError(t, err)
		b, err := NewTree(leaves, preserveOrder)
		require.NoError(t, err)

		require.Equal(t, a.Root(), b.Root())
		require.Equal(t, a.Depth(), b.Depth())
		for i := 0; i < a.Depth(); i++ {
			require.Equal(t, a.Layer(i), b.Layer(i))
		}
	}
}

func TestNewTree_UnorderedPermutationInvariant(t *testing.T) {
	leaves := createLeaves(37)
	want, err := Root(leaves, false)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([][]byte(nil), leaves...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got, err := Root(shuffled, false)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestNewTree_OrderedDependsOnOrder(t *testing.T) {
	leaves := createLeaves(5)
	want, err := Root(leaves, true)
	require.NoError(t, err)

	swapped := append([][]byte(nil), leaves...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	got, err := Root(swapped, true)
	require.NoError(t, err)
	require.NotEqual(t, want, got)
}

func TestNewTree_UnorderedDedup(t *testing.T) {
	leaves := createLeaves(6)
	withDup := append(append([][]byte(nil), leaves...), leafFor(3))

	deduped, err := NewTree(withDup, false)
	require.NoError(t, err)
	plain, err := NewTree(leaves, false)
	require.NoError(t, err)

	require.Equal(t, 6, deduped.LeafCount())
	require.Equal(t, plain.Root(), deduped.Root())
}

func TestNewTree_OrderedKeepsDuplicates(t *testing.T) {
	leaves := [][]byte{leafFor(1), leafFor(1), leafFor(2)}
	tree, err := NewTree(leaves, true)
	require.NoError(t, err)
	require.Equal(t, 3, tree.LeafCount())
	require.Equal(t, []Leaf{digestFor(1), digestFor(1), digestFor(2)}, tree.Leaves())
}

func TestNewTree_UnorderedSortsLeaves(t *testing.T) {
	leaves := [][]byte{leafFor(9), leafFor(3), leafFor(300), leafFor(1)}
	tree, err := NewTree(leaves, false)
	require.NoError(t, err)
	require.Equal(t, []Leaf{digestFor(1), digestFor(3), digestFor(9), digestFor(300)}, tree.Leaves())
}

func TestCombine(t *testing.T) {
	a, b := digestFor(1), digestFor(2)

	require.Equal(t, Combine(hasher.Keccak256, a, b, false), Combine(hasher.Keccak256, b, a, false))
	require.NotEqual(t, Combine(hasher.Keccak256, a, b, true), Combine(hasher.Keccak256, b, a, true))
	require.Equal(t, Combine(hasher.Keccak256, a, b, true), Combine(hasher.Keccak256, a, b, false))

	var want Digest
	copy(want[:], hasher.Keccak256.Hash(a[:], b[:]))
	require.Equal(t, want, Combine(hasher.Keccak256, a, b, true))
}

// xorHasher is a cheap synthetic primitive: it folds its input into 32 bytes
// with XOR and a position-dependent rotation, so ordering still matters.
func xorHasher(calls *int) hasher.Hasher {
	return hasher.HasherFunc(func(data ...[]byte) []byte {
		*calls++
		out := make([]byte, DigestLength)
		pos := 0
		for _, chunk := range data {
			for _, b := range chunk {
				out[pos%DigestLength] ^= b + byte(pos)
				pos++
			}
		}
		return out
	})
}

func TestWithHasher(t *testing.T) {
	calls := 0
	leaves := createLeaves(5)

	tree, err := NewTree(leaves, true, WithHasher(xorHasher(&calls)))
	require.NoError(t, err)
	// 5 leaves: 2 + 1 + 1 pair hashes, carried nodes are never hashed
	require.Equal(t, 4, calls)

	keccakTree, err := NewTree(leaves, true, WithHasher(nil))
	require.NoError(t, err)
	require.NotEqual(t, keccakTree.Root(), tree.Root())

	verifier := NewVerifier(tree.Hasher())
	for i, leaf := range tree.Leaves() {
		proof, err := tree.GetProofOrdered(leaf, uint64(i+1))
		require.NoError(t, err)
		require.True(t, verifier.CheckProofOrdered(proof, tree.Root(), leaf, uint64(i+1)))
		require.False(t, CheckProofOrdered(proof, tree.Root(), leaf, uint64(i+1)))
	}
}

func TestNewTree_AlternativeHashers(t *testing.T) {
	leaves := createLeaves(9)
	roots := map[Digest]string{}
	for _, name := range hasher.Names() {
		h, err := hasher.ByName(name)
		require.NoError(t, err)

		tree, err := NewTree(leaves, false, WithHasher(h))
		require.NoError(t, err)
		roots[tree.Root()] = name

		verifier := NewVerifier(h)
		for _, leaf := range tree.Leaves() {
			proof, err := tree.GetProof(leaf)
			require.NoError(t, err)
			require.True(t, verifier.CheckProof(proof, tree.Root(), leaf), name)
		}
	}
	require.Len(t, roots, len(hasher.Names()))
}

func TestLeafIndex(t *testing.T) {
	tree, err := NewTree(createLeaves(4), true)
	require.NoError(t, err)
	require.Equal(t, 2, tree.LeafIndex(digestFor(3)))
	require.Equal(t, -1, tree.LeafIndex(digestFor(99)))
	require.Nil(t, tree.Layer(-1))
	require.Nil(t, tree.Layer(tree.Depth()))
}
