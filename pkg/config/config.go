package config

import (
	"fmt"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/Layr-Labs/merkle-proof-go/pkg/hasher"
)

// Environment variable names for prover configuration
const (
	EnvMerklePersistenceType = "MERKLE_PERSISTENCE_TYPE"
	EnvMerkleDataPath        = "MERKLE_DATA_PATH"
	EnvMerkleRedisAddress    = "MERKLE_REDIS_ADDRESS"
	EnvMerkleRedisPassword   = "MERKLE_REDIS_PASSWORD"
	EnvMerkleRedisDB         = "MERKLE_REDIS_DB"
	EnvMerkleRedisKeyPrefix  = "MERKLE_REDIS_KEY_PREFIX"
	EnvMerkleHash            = "MERKLE_HASH"
	EnvMerkleCacheSize       = "MERKLE_CACHE_SIZE"
	EnvMerkleDebug           = "MERKLE_DEBUG"
)

type PersistenceType string

func (p PersistenceType) String() string {
	return string(p)
}

const (
	PersistenceTypeMemory PersistenceType = "memory"
	PersistenceTypeBadger PersistenceType = "badger"
	PersistenceTypeRedis  PersistenceType = "redis"
)

// GetSupportedPersistenceTypes returns all persistence backends
func GetSupportedPersistenceTypes() []string {
	return []string{
		PersistenceTypeMemory.String(),
		PersistenceTypeBadger.String(),
		PersistenceTypeRedis.String(),
	}
}

const (
	DefaultDataPath    = "./merkle-data"
	DefaultCacheSize   = 128
	DefaultRedisDB     = 0
	MaxRedisDB         = 15
	DefaultHashName    = hasher.NameKeccak256
	DefaultPersistence = PersistenceTypeMemory
)

// RedisConfig is the redis section of ProverConfig
type RedisConfig struct {
	Address   string `json:"address" yaml:"address"`
	Password  string `json:"password" yaml:"password"`
	DB        int    `json:"db" yaml:"db"`
	KeyPrefix string `json:"keyPrefix" yaml:"keyPrefix"`
}

// ProverConfig represents the complete configuration for a proof service
type ProverConfig struct {
	// Storage
	PersistenceType PersistenceType `json:"persistenceType" yaml:"persistenceType"`
	DataPath        string          `json:"dataPath" yaml:"dataPath"` // badger only
	Redis           RedisConfig     `json:"redis" yaml:"redis"`

	// Tree construction
	HashName string `json:"hashName" yaml:"hashName"`

	// Number of built trees kept in memory
	CacheSize int `json:"cacheSize" yaml:"cacheSize"`

	Debug bool `json:"debug" yaml:"debug"`
}

// NewDefaultProverConfig returns an in-memory, keccak256 configuration
func NewDefaultProverConfig() *ProverConfig {
	return &ProverConfig{
		PersistenceType: DefaultPersistence,
		DataPath:        DefaultDataPath,
		Redis:           RedisConfig{DB: DefaultRedisDB},
		HashName:        DefaultHashName,
		CacheSize:       DefaultCacheSize,
	}
}

// Validate validates the prover configuration, reporting every problem at once
func (c *ProverConfig) Validate() error {
	var allErrors field.ErrorList

	c.PersistenceType = PersistenceType(strings.ToLower(strings.TrimSpace(string(c.PersistenceType))))
	switch c.PersistenceType {
	case PersistenceTypeMemory:
	case PersistenceTypeBadger:
		if c.DataPath == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("dataPath"), "dataPath is required for badger persistence"))
		}
	case PersistenceTypeRedis:
		if c.Redis.Address == "" {
			allErrors = append(allErrors, field.Required(field.NewPath("redis", "address"), "address is required for redis persistence"))
		}
		if c.Redis.DB < 0 || c.Redis.DB > MaxRedisDB {
			allErrors = append(allErrors, field.Invalid(field.NewPath("redis", "db"), c.Redis.DB, fmt.Sprintf("must be between 0-%d", MaxRedisDB)))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(field.NewPath("persistenceType"), c.PersistenceType.String(), GetSupportedPersistenceTypes()))
	}

	c.HashName = strings.ToLower(strings.TrimSpace(c.HashName))
	if _, err := hasher.ByName(c.HashName); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("hashName"), c.HashName, hasher.Names()))
	}

	if c.CacheSize < 1 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("cacheSize"), c.CacheSize, "must be at least 1"))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// Hasher resolves the configured hash primitive
func (c *ProverConfig) Hasher() (hasher.Hasher, error) {
	return hasher.ByName(c.HashName)
}
