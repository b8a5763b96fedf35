package prover

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-proof-go/pkg/config"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence/badger"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence/memory"
	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence/redis"
)

// NewPersistence opens the snapshot store selected by cfg.PersistenceType
func NewPersistence(cfg *config.ProverConfig, logger *zap.Logger) (persistence.ITreePersistence, error) {
	switch cfg.PersistenceType {
	case config.PersistenceTypeMemory:
		return memory.NewMemoryPersistence(), nil
	case config.PersistenceTypeBadger:
		store, err := badger.NewBadgerPersistence(cfg.DataPath, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.PersistenceTypeRedis:
		store, err := redis.NewRedisPersistence(&redis.RedisConfig{
			Address:   cfg.Redis.Address,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s", cfg.PersistenceType)
	}
}
