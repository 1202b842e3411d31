package cache

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// AuthCache caches email+password-hash lookups so BasicAuth avoids a
// users-table read on every request. It is a read-through cache; entries
// expire rather than being invalidated.
type AuthCache struct {
	client  *redis.Client
	hashKey string
	ttl     time.Duration
}

func NewAuthCache(addr, password string) (*AuthCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &AuthCache{
		client:  rdb,
		hashKey: "users:auth",
		ttl:     10 * time.Minute,
	}, nil
}

func authKey(email, passwordHash string) string {
	return base64.StdEncoding.EncodeToString([]byte(email + ":" + passwordHash))
}

func (c *AuthCache) GetUserID(ctx context.Context, email, passwordHash string) (int64, error) {
	val, err := c.client.HGet(ctx, c.hashKey, authKey(email, passwordHash)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("user not found in cache")
		}
		return 0, fmt.Errorf("cache lookup error: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id in cache: %w", err)
	}

	return userID, nil
}

func (c *AuthCache) SetUserID(ctx context.Context, email, passwordHash string, userID int64) {
	// Best-effort write, a failure only costs a future DB read
	c.client.HSet(ctx, c.hashKey, authKey(email, passwordHash), strconv.FormatInt(userID, 10))
	c.client.HExpire(ctx, c.hashKey, c.ttl, authKey(email, passwordHash))
}

func (c *AuthCache) Close() error {
	return c.client.Close()
}
