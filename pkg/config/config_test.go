package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Layr-Labs/merkle-proof-go/pkg/hasher"
)

func TestNewDefaultProverConfig(t *testing.T) {
	cfg := NewDefaultProverConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, PersistenceTypeMemory, cfg.PersistenceType)
	require.Equal(t, hasher.NameKeccak256, cfg.HashName)

	h, err := cfg.Hasher()
	require.NoError(t, err)
	require.Equal(t, hasher.Keccak256.Hash([]byte("abc")), h.Hash([]byte("abc")))
}

func TestProverConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*ProverConfig)
		wantErr []string
	}{
		{
			name:   "Badger with path",
			mutate: func(c *ProverConfig) { c.PersistenceType = PersistenceTypeBadger },
		},
		{
			name: "Badger without path",
			mutate: func(c *ProverConfig) {
				c.PersistenceType = PersistenceTypeBadger
				c.DataPath = ""
			},
			wantErr: []string{"dataPath"},
		},
		{
			name: "Redis",
			mutate: func(c *ProverConfig) {
				c.PersistenceType = PersistenceTypeRedis
				c.Redis.Address = "localhost:6379"
				c.Redis.DB = 3
			},
		},
		{
			name: "Redis without address and bad db",
			mutate: func(c *ProverConfig) {
				c.PersistenceType = PersistenceTypeRedis
				c.Redis.DB = 16
			},
			wantErr: []string{"redis.address", "redis.db"},
		},
		{
			name:   "Persistence type is case insensitive",
			mutate: func(c *ProverConfig) { c.PersistenceType = " Memory " },
		},
		{
			name:    "Unknown persistence type",
			mutate:  func(c *ProverConfig) { c.PersistenceType = "etcd" },
			wantErr: []string{"persistenceType"},
		},
		{
			name:   "Alternative hash",
			mutate: func(c *ProverConfig) { c.HashName = "BLAKE2b" },
		},
		{
			name: "Every problem reported at once",
			mutate: func(c *ProverConfig) {
				c.HashName = "md5"
				c.CacheSize = 0
			},
			wantErr: []string{"hashName", "cacheSize"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultProverConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if len(tc.wantErr) == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, field := range tc.wantErr {
				require.Contains(t, err.Error(), field)
			}
		})
	}
}

func TestGetSupportedPersistenceTypes(t *testing.T) {
	require.Equal(t, []string{"memory", "badger", "redis"}, GetSupportedPersistenceTypes())
}
