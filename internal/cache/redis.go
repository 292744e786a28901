package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	return json.Unmarshal([]byte(val), dest)
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// SearchKey derives a stable cache key from everything that affects a search
// response: the query vector, result count, recall knob and filter.
func SearchKey(vector []float32, topK, efSearch int, filter interface{}) string {
	payload, _ := json.Marshal(struct {
		Vector   []float32   `json:"v"`
		TopK     int         `json:"k"`
		EfSearch int         `json:"ef"`
		Filter   interface{} `json:"f"`
	}{vector, topK, efSearch, filter})

	sum := sha256.Sum256(payload)
	return "search:" + hex.EncodeToString(sum[:])
}
