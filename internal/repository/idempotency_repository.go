package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// StoredResponse is a replayable response body for an Idempotency-Key.
type StoredResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

type IdempotencyRepository interface {
	Get(ctx context.Context, key string) (*StoredResponse, error)
	Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error
}

type redisIdempotencyRepository struct {
	client *redis.Client
	prefix string
}

func NewIdempotencyRepository(client *redis.Client) IdempotencyRepository {
	return &redisIdempotencyRepository{client: client, prefix: "idempotency:"}
}

func (r *redisIdempotencyRepository) Get(ctx context.Context, key string) (*StoredResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var resp StoredResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, fmt.Errorf("idempotency: failed to unmarshal: %w", err)
	}
	return &resp, nil
}

func (r *redisIdempotencyRepository) Save(ctx context.Context, key string, resp StoredResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("idempotency: failed to marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// first writer wins; a concurrent duplicate keeps the original response
	return r.client.SetNX(ctx, r.prefix+key, data, ttl).Err()
}
