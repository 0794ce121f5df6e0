package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"teamfit/internal/domain"
)

// QueryCache guarda respuestas exitosas del query RAG para no repetir la
// cadena retrieval + re-rank sobre la misma consulta. Best-effort: cualquier
// falla del cache se ignora y el query sigue su camino normal.
type QueryCache interface {
	Get(query string, limit int) (domain.QueryResponse, bool)
	Set(response domain.QueryResponse, limit int)
}

type redisQueryCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisQueryCache crea el cache sobre Redis. Con client nil devuelve nil y
// el assistant opera sin cache.
func NewRedisQueryCache(client *redis.Client, ttl time.Duration) QueryCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &redisQueryCache{
		client: client,
		ttl:    ttl,
		prefix: "assistant:query:",
	}
}

func (c *redisQueryCache) Get(query string, limit int) (domain.QueryResponse, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	data, err := c.client.Get(ctx, c.key(query, limit)).Bytes()
	if err != nil {
		return domain.QueryResponse{}, false
	}

	var resp domain.QueryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return domain.QueryResponse{}, false
	}
	return resp, true
}

func (c *redisQueryCache) Set(response domain.QueryResponse, limit int) {
	data, err := json.Marshal(response)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_ = c.client.Set(ctx, c.key(response.Query, limit), data, c.ttl).Err()
}

func (c *redisQueryCache) key(query string, limit int) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return fmt.Sprintf("%s%s:%d", c.prefix, hex.EncodeToString(sum[:8]), limit)
}
