package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/docquiz/docquiz-backend/internal/config"
	"github.com/docquiz/docquiz-backend/internal/model"
	"github.com/redis/go-redis/v9"
)

// ResultSink receives finalized exam results. The production sink queues
// them for the persistence worker; tests substitute an in-memory one.
type ResultSink interface {
	Enqueue(ctx context.Context, result *model.ExamResult) error
}

// RedisResultSink pushes results onto the persistence queue consumed by the
// result worker.
type RedisResultSink struct {
	rdb *redis.Client
}

// NewRedisResultSink creates a new RedisResultSink.
func NewRedisResultSink(rdb *redis.Client) *RedisResultSink {
	return &RedisResultSink{rdb: rdb}
}

// Enqueue serializes the result and pushes it onto the worker queue.
func (s *RedisResultSink) Enqueue(ctx context.Context, result *model.ExamResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue result: %w", err)
	}
	return nil
}
