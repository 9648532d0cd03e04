package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var (
	RedisClient *redis.Client

	ErrUnavailable = errors.New("redis not available")
	ErrMiss        = errors.New("cache miss")
)

// InitRedis connects to redis. rawURL is either a redis:// URL or a bare
// host:port. On failure the client stays nil and every cache call becomes a
// miss, so the API keeps working without redis.
func InitRedis(rawURL, password string) error {
	if rawURL == "" {
		rawURL = "localhost:6379"
	}

	opts := &redis.Options{Addr: rawURL}
	if strings.Contains(rawURL, "://") {
		parsed, err := redis.ParseURL(rawURL)
		if err != nil {
			return errors.Wrap(err, "parse redis url")
		}
		opts = parsed
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	RedisClient = client
	return nil
}

func CloseRedis() error {
	if RedisClient == nil {
		return nil
	}
	err := RedisClient.Close()
	RedisClient = nil
	return err
}

func IsRedisAvailable() bool {
	return RedisClient != nil
}

// Ping reports redis health for /health. A disabled cache is not an error.
func Ping(ctx context.Context) error {
	if !IsRedisAvailable() {
		return nil
	}
	return RedisClient.Ping(ctx).Err()
}

// ==================== CACHE KEYS ====================

const (
	GameCachePrefix  = "game:"       // game:<id>
	GamesListPrefix  = "games:list:" // games:list:<hash of query>
	CategoryCacheKey = "categories:all"

	GameTTL       = 10 * time.Minute
	GamesListTTL  = 5 * time.Minute
	CategoriesTTL = time.Hour
)

func GameKey(id string) string {
	return GameCachePrefix + id
}

// GamesListKey hashes a canonical query string so any filter combination
// maps to a short key.
func GamesListKey(canonicalQuery string) string {
	sum := sha1.Sum([]byte(canonicalQuery))
	return GamesListPrefix + hex.EncodeToString(sum[:])
}

// ==================== GENERIC CACHE OPERATIONS ====================

func Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !IsRedisAvailable() {
		return ErrUnavailable
	}
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, "marshal cache value")
	}
	return RedisClient.Set(ctx, key, data, ttl).Err()
}

// Get decodes the value at key into dest. It returns ErrMiss when the key
// is absent and ErrUnavailable without redis.
func Get(ctx context.Context, key string, dest interface{}) error {
	if !IsRedisAvailable() {
		return ErrUnavailable
	}
	val, err := RedisClient.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return ErrMiss
	}
	if err != nil {
		return errors.Wrap(err, "get cache value")
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return errors.Wrap(err, "unmarshal cache value")
	}
	return nil
}

func Delete(ctx context.Context, keys ...string) error {
	if !IsRedisAvailable() || len(keys) == 0 {
		return nil
	}
	return RedisClient.Del(ctx, keys...).Err()
}

// DeletePattern removes all keys matching pattern.
func DeletePattern(ctx context.Context, pattern string) error {
	if !IsRedisAvailable() {
		return nil
	}
	iter := RedisClient.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := RedisClient.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// ==================== GAME CACHING ====================

func GetGame(ctx context.Context, id string, dest interface{}) error {
	return Get(ctx, GameKey(id), dest)
}

func SetGame(ctx context.Context, id string, game interface{}) error {
	return Set(ctx, GameKey(id), game, GameTTL)
}

func GetGamesList(ctx context.Context, canonicalQuery string, dest interface{}) error {
	return Get(ctx, GamesListKey(canonicalQuery), dest)
}

func SetGamesList(ctx context.Context, canonicalQuery string, page interface{}) error {
	return Set(ctx, GamesListKey(canonicalQuery), page, GamesListTTL)
}

// InvalidateGame drops the cached detail of one game along with every
// catalog page and the category list, which may all include it.
func InvalidateGame(ctx context.Context, id string) error {
	if err := Delete(ctx, GameKey(id), CategoryCacheKey); err != nil {
		return err
	}
	return DeletePattern(ctx, GamesListPrefix+"*")
}

// ==================== CATEGORY CACHING ====================

func GetCategories(ctx context.Context, dest interface{}) error {
	return Get(ctx, CategoryCacheKey, dest)
}

func SetCategories(ctx context.Context, categories interface{}) error {
	return Set(ctx, CategoryCacheKey, categories, CategoriesTTL)
}
