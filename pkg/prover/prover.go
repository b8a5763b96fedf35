// Package prover publishes merkle trees to a snapshot store and serves
// inclusion proofs for their roots.
package prover

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-proof-go/pkg/config"
	"github.com/Layr-Labs/merkle-proof-go/pkg/hasher"
	"github.com/Layr-Labs/merkle-proof-go/pkg/merkle"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence"
)

// Service builds trees from published leaf sets and answers proof requests by
// root. Built trees are kept in an LRU cache; on a miss the tree is rebuilt
// from its stored snapshot. Safe for concurrent use.
type Service struct {
	store    persistence.ITreePersistence
	hasher   hasher.Hasher
	hashName string
	verifier *merkle.Verifier
	cache    *lru.Cache[string, *merkle.Tree]
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a proof service over store. cfg must already be validated.
func NewService(cfg *config.ProverConfig, store persistence.ITreePersistence, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("persistence cannot be nil")
	}
	h, err := cfg.Hasher()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve hasher")
	}
	cache, err := lru.New[string, *merkle.Tree](cfg.CacheSize)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create tree cache of size %d", cfg.CacheSize)
	}

	return &Service{
		store:    store,
		hasher:   h,
		hashName: cfg.HashName,
		verifier: merkle.NewVerifier(h),
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Publish builds a tree from leaves and stores its snapshot. Publishing the
// same leaf set twice is idempotent apart from the snapshot timestamp.
func (s *Service) Publish(leaves [][]byte, preserveOrder bool) (*merkle.Tree, error) {
	tree, err := merkle.NewTree(leaves, preserveOrder, merkle.WithHasher(s.hasher))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build tree")
	}
	if tree.Empty() {
		return nil, ErrEmptyTree
	}

	root := merkle.EncodeRoot(tree)
	normalized := tree.Leaves()
	snapshot := &persistence.TreeSnapshot{
		Root:          root,
		PreserveOrder: preserveOrder,
		HashName:      s.hashName,
		Leaves:        make([]string, len(normalized)),
		CreatedAt:     s.now().Unix(),
	}
	for i, leaf := range normalized {
		snapshot.Leaves[i] = leaf.Hex()
	}

	if err := s.store.SaveTree(snapshot); err != nil {
		return nil, errors.Wrapf(err, "failed to save tree %s", root)
	}
	s.cache.Add(root, tree)

	s.logger.Sugar().Infow("Published tree",
		"root", root,
		"leaves", tree.LeafCount(),
		"preserve_order", preserveOrder,
		"hash", s.hashName,
	)
	return tree, nil
}

// Tree returns the tree published under root.
func (s *Service) Tree(root string) (*merkle.Tree, error) {
	key := persistence.NormalizeRoot(root)
	if tree, ok := s.cache.Get(key); ok {
		return tree, nil
	}

	snapshot, err := s.store.LoadTree(key)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load tree %s", key)
	}
	if snapshot == nil {
		return nil, errors.Wrapf(ErrTreeNotFound, "root %s", key)
	}

	tree, err := s.rebuild(key, snapshot)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, tree)
	s.logger.Sugar().Debugw("Rebuilt tree from snapshot", "root", key, "leaves", tree.LeafCount())
	return tree, nil
}

func (s *Service) rebuild(key string, snapshot *persistence.TreeSnapshot) (*merkle.Tree, error) {
	if snapshot.HashName != s.hashName {
		return nil, errors.Wrapf(ErrHasherMismatch, "root %s was published with %s, service uses %s", key, snapshot.HashName, s.hashName)
	}

	raw := make([][]byte, len(snapshot.Leaves))
	for i, encoded := range snapshot.Leaves {
		leaf, err := merkle.DecodeDigest(encoded)
		if err != nil {
			return nil, errors.Wrapf(ErrSnapshotCorrupt, "root %s leaf %d: %v", key, i, err)
		}
		raw[i] = leaf.Bytes()
	}

	tree, err := merkle.NewTree(raw, snapshot.PreserveOrder, merkle.WithHasher(s.hasher))
	if err != nil {
		return nil, errors.Wrapf(ErrSnapshotCorrupt, "root %s: %v", key, err)
	}
	if got := merkle.EncodeRoot(tree); got != key {
		s.logger.Sugar().Warnw("Snapshot does not rebuild to its root", "root", key, "rebuilt", got)
		return nil, errors.Wrapf(ErrSnapshotCorrupt, "root %s rebuilt as %s", key, got)
	}
	return tree, nil
}

// Prove returns the proof for leaf in the tree published under root. For an
// unordered tree the proof verifies with Verify; for an ordered tree it is the
// proof for the first position holding leaf and verifies with VerifyOrdered.
func (s *Service) Prove(root string, leaf merkle.Leaf) (merkle.Proof, error) {
	tree, err := s.Tree(root)
	if err != nil {
		return nil, err
	}
	proof, err := tree.GetProof(leaf)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to prove leaf in %s", root)
	}
	return proof, nil
}

// ProveOrdered returns the proof for leaf at the 1-based index in the tree
// published under root.
func (s *Service) ProveOrdered(root string, leaf merkle.Leaf, index uint64) (merkle.Proof, error) {
	tree, err := s.Tree(root)
	if err != nil {
		return nil, err
	}
	proof, err := tree.GetProofOrdered(leaf, index)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to prove leaf at index %d in %s", index, root)
	}
	return proof, nil
}

// Verify checks an unordered proof with the service hasher.
func (s *Service) Verify(proof merkle.Proof, root merkle.Digest, leaf merkle.Leaf) bool {
	return s.verifier.CheckProof(proof, root, leaf)
}

// VerifyOrdered checks an ordered proof with the service hasher.
func (s *Service) VerifyOrdered(proof merkle.Proof, root merkle.Digest, leaf merkle.Leaf, index uint64) bool {
	return s.verifier.CheckProofOrdered(proof, root, leaf, index)
}

// Trees lists every published snapshot, oldest first.
func (s *Service) Trees() ([]*persistence.TreeSnapshot, error) {
	snapshots, err := s.store.ListTrees()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list trees")
	}
	return snapshots, nil
}

// Delete removes the snapshot and any cached tree for root.
func (s *Service) Delete(root string) error {
	key := persistence.NormalizeRoot(root)
	s.cache.Remove(key)
	if err := s.store.DeleteTree(key); err != nil {
		return errors.Wrapf(err, "failed to delete tree %s", key)
	}
	s.logger.Sugar().Infow("Deleted tree", "root", key)
	return nil
}

// Close closes the underlying store.
func (s *Service) Close() error {
	s.cache.Purge()
	return s.store.Close()
}
