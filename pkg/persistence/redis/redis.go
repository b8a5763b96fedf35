package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-proof-go/pkg/persistence"
)

// Key prefixes for namespacing in Redis
const (
	keyPrefixTree        = "merkle:tree:"
	keySchemaVersion     = "merkle:metadata:schema_version"
	currentSchemaVersion = "v1"

	// Key set for listing operations (Redis doesn't support prefix iteration natively)
	keySetTrees = "merkle:trees:index"
)

// RedisPersistence is an ITreePersistence backed by Redis, for deployments
// where several provers share published trees.
type RedisPersistence struct {
	client    *redis.Client
	logger    *zap.Logger
	keyPrefix string // Custom prefix for all keys
	mu        sync.RWMutex
	closed    bool
}

// RedisConfig holds the configuration for connecting to Redis
type RedisConfig struct {
	// Address is the Redis server address (host:port)
	Address string
	// Password is the optional Redis password
	Password string
	// DB is the Redis database number (0-15)
	DB int
	// KeyPrefix is an optional custom prefix prepended to every key, e.g.
	// "myapp:" gives keys like "myapp:merkle:tree:0x...".
	KeyPrefix string
}

// NewRedisPersistence connects to Redis and validates the schema version.
func NewRedisPersistence(cfg *RedisConfig, logger *zap.Logger) (*RedisPersistence, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}

	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	rp := &RedisPersistence{
		client:    client,
		logger:    logger,
		keyPrefix: cfg.KeyPrefix,
	}

	if err := rp.initSchema(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Sugar().Infow("Redis persistence initialized", "address", cfg.Address, "db", cfg.DB, "key_prefix", cfg.KeyPrefix)

	return rp, nil
}

// prefixKey adds the custom key prefix (if configured) to a key
func (r *RedisPersistence) prefixKey(key string) string {
	if r.keyPrefix == "" {
		return key
	}
	return r.keyPrefix + key
}

func (r *RedisPersistence) treeKey(root string) string {
	return r.prefixKey(keyPrefixTree + persistence.NormalizeRoot(root))
}

// initSchema initializes or validates the schema version
func (r *RedisPersistence) initSchema(ctx context.Context) error {
	schemaKey := r.prefixKey(keySchemaVersion)

	existingVersion, err := r.client.Get(ctx, schemaKey).Result()
	if err == redis.Nil {
		return r.client.Set(ctx, schemaKey, currentSchemaVersion, 0).Err()
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if existingVersion != currentSchemaVersion {
		return fmt.Errorf("unsupported schema version: %s (expected: %s)", existingVersion, currentSchemaVersion)
	}

	return nil
}

// SaveTree persists a tree snapshot
func (r *RedisPersistence) SaveTree(snapshot *persistence.TreeSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	ctx := context.Background()

	data, err := persistence.MarshalTreeSnapshot(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal TreeSnapshot: %w", err)
	}

	// Store the value and its index entry in one pipeline
	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.treeKey(snapshot.Root), data, 0)
	pipe.SAdd(ctx, r.prefixKey(keySetTrees), persistence.NormalizeRoot(snapshot.Root))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save TreeSnapshot: %w", err)
	}

	return nil
}

// LoadTree retrieves a tree snapshot
func (r *RedisPersistence) LoadTree(root string) (*persistence.TreeSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	data, err := r.client.Get(context.Background(), r.treeKey(root)).Bytes()
	if err == redis.Nil {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load TreeSnapshot: %w", err)
	}

	snapshot, err := persistence.UnmarshalTreeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal TreeSnapshot: %w", err)
	}

	return snapshot, nil
}

// ListTrees returns all tree snapshots sorted by creation time
func (r *RedisPersistence) ListTrees() ([]*persistence.TreeSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return nil, fmt.Errorf("persistence layer is closed")
	}

	ctx := context.Background()
	indexKey := r.prefixKey(keySetTrees)

	roots, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tree roots: %w", err)
	}

	if len(roots) == 0 {
		return []*persistence.TreeSnapshot{}, nil
	}

	keys := make([]string, len(roots))
	for i, root := range roots {
		keys[i] = r.treeKey(root)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch TreeSnapshots: %w", err)
	}

	snapshots := make([]*persistence.TreeSnapshot, 0, len(values))
	for i, val := range values {
		if val == nil {
			// Key was in index but doesn't exist - clean up index
			r.client.SRem(ctx, indexKey, roots[i])
			continue
		}

		data, ok := val.(string)
		if !ok {
			r.logger.Sugar().Warnw("Unexpected value type for TreeSnapshot", "key", keys[i])
			continue
		}

		snapshot, err := persistence.UnmarshalTreeSnapshot([]byte(data))
		if err != nil {
			r.logger.Sugar().Warnw("Failed to unmarshal TreeSnapshot, skipping",
				"key", keys[i], "error", err)
			continue
		}

		snapshots = append(snapshots, snapshot)
	}

	persistence.SortSnapshots(snapshots)
	return snapshots, nil
}

// DeleteTree removes a tree snapshot
func (r *RedisPersistence) DeleteTree(root string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	ctx := context.Background()

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.treeKey(root))
	pipe.SRem(ctx, r.prefixKey(keySetTrees), persistence.NormalizeRoot(root))

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete TreeSnapshot: %w", err)
	}

	return nil
}

// Close shuts down the persistence layer
func (r *RedisPersistence) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil // Already closed, idempotent
	}
	r.closed = true
	r.mu.Unlock()

	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis client: %w", err)
	}

	r.logger.Sugar().Info("Redis persistence closed")
	return nil
}

// HealthCheck verifies the persistence layer is operational
func (r *RedisPersistence) HealthCheck() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return fmt.Errorf("persistence layer is closed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}

	_, err := r.client.Get(ctx, r.prefixKey(keySchemaVersion)).Result()
	if err == redis.Nil {
		return fmt.Errorf("schema version not found - database may not be properly initialized")
	}
	if err != nil {
		return fmt.Errorf("failed to verify schema version: %w", err)
	}

	return nil
}
