package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/recipekeeper/backend/internal/model"
)

// RecipeCache keeps serialized recipes in redis, keyed by owner and id.
type RecipeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRecipeCache(client *redis.Client, ttl time.Duration) *RecipeCache {
	return &RecipeCache{client: client, ttl: ttl}
}

func recipeKey(userID, id uuid.UUID) string {
	return fmt.Sprintf("recipe:%s:%s", userID, id)
}

func versionKey(userID, id uuid.UUID) string {
	return recipeKey(userID, id) + ":version"
}

// Get returns the cached recipe, or nil without error on a miss.
func (c *RecipeCache) Get(ctx context.Context, userID, id uuid.UUID) (*model.Recipe, error) {
	data, err := c.client.Get(ctx, recipeKey(userID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r model.Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return &r, nil
}

// Version returns the entry's invalidation counter. Read it before loading
// the row that will be passed to Set.
func (c *RecipeCache) Version(ctx context.Context, userID, id uuid.UUID) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(userID, id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Set stores r unless the entry has been invalidated since version was
// read, so a read racing a write cannot put the old row back.
func (c *RecipeCache) Set(ctx context.Context, r *model.Recipe, version int64) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	key, vkey := recipeKey(r.UserID, r.ID), versionKey(r.UserID, r.ID)

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, vkey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, vkey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate drops the cached copy and bumps its version.
func (c *RecipeCache) Invalidate(ctx context.Context, userID, id uuid.UUID) error {
	vkey := versionKey(userID, id)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, recipeKey(userID, id))
		pipe.Incr(ctx, vkey)
		pipe.Expire(ctx, vkey, c.ttl+time.Minute)
		return nil
	})
	return err
}

// InvalidateUser drops every cached recipe owned by userID.
func (c *RecipeCache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	iter := c.client.Scan(ctx, 0, fmt.Sprintf("recipe:%s:*", userID), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
