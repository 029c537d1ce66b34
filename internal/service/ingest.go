package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// IngestJob asks the extractor to fill in a recipe saved from a URL.
type IngestJob struct {
	RecipeID   uuid.UUID `json:"recipe_id"`
	UserID     uuid.UUID `json:"user_id"`
	URL        string    `json:"url"`
	SourceType string    `json:"source_type"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// IngestQueue is a redis list the extractor consumes from the right.
type IngestQueue struct {
	client *redis.Client
	key    string
}

func NewIngestQueue(client *redis.Client, key string) *IngestQueue {
	return &IngestQueue{client: client, key: key}
}

// Enqueue pushes job onto the head of the list.
func (q *IngestQueue) Enqueue(ctx context.Context, job IngestJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to encode ingest job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue ingest job: %w", err)
	}
	return nil
}
