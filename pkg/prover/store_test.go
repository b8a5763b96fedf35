package prover

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-proof-go/pkg/config"
	"github.com/Layr-Labs/merkle-proof-go/pkg/leaves"
	"github.com/Layr-Labs/merkle-proof-go/pkg/merkle"
)

func TestNewPersistence(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		cfg := config.NewDefaultProverConfig()
		store, err := NewPersistence(cfg, zap.NewNop())
		require.NoError(t, err)
		require.NoError(t, store.HealthCheck())
		require.NoError(t, store.Close())
	})

	t.Run("Badger survives service restart", func(t *testing.T) {
		cfg := config.NewDefaultProverConfig()
		cfg.PersistenceType = config.PersistenceTypeBadger
		cfg.DataPath = t.TempDir()
		require.NoError(t, cfg.Validate())

		store, err := NewPersistence(cfg, zap.NewNop())
		require.NoError(t, err)
		svc, err := NewService(cfg, store, zap.NewNop())
		require.NoError(t, err)
		tree, err := svc.Publish(leaves.Range(1, 12), true)
		require.NoError(t, err)
		require.NoError(t, svc.Close())

		store, err = NewPersistence(cfg, zap.NewNop())
		require.NoError(t, err)
		svc, err = NewService(cfg, store, zap.NewNop())
		require.NoError(t, err)
		defer func() { _ = svc.Close() }()

		leaf := leaves.FromUint64(12)
		proof, err := svc.ProveOrdered(merkle.EncodeRoot(tree), leaf, 12)
		require.NoError(t, err)
		require.True(t, svc.VerifyOrdered(proof, tree.Root(), leaf, 12))
	})

	t.Run("Redis without server", func(t *testing.T) {
		cfg := config.NewDefaultProverConfig()
		cfg.PersistenceType = config.PersistenceTypeRedis
		_, err := NewPersistence(cfg, zap.NewNop())
		require.Error(t, err)
	})

	t.Run("Unsupported", func(t *testing.T) {
		cfg := config.NewDefaultProverConfig()
		cfg.PersistenceType = "etcd"
		_, err := NewPersistence(cfg, zap.NewNop())
		require.Error(t, err)
	})
}
