package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/webpilot-ai/webpilot/config"
	"github.com/webpilot-ai/webpilot/internal/agent/core"
)

const taskArchiveKey = "webpilot:tasks"

// Conn opens and pings a Redis connection.
func Conn(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		DialTimeout: cfg.Timeout,
		Password:    cfg.Password,
		DB:          cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisArchive mirrors task records into a Redis hash so they survive
// process restarts.
type RedisArchive struct {
	client *redis.Client
}

func NewRedisArchive(client *redis.Client) *RedisArchive {
	return &RedisArchive{client: client}
}

func (a *RedisArchive) Save(ctx context.Context, task core.Task) error {
	b, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return a.client.HSet(ctx, taskArchiveKey, task.ID, b).Err()
}

func (a *RedisArchive) Load(ctx context.Context) ([]core.Task, error) {
	entries, err := a.client.HGetAll(ctx, taskArchiveKey).Result()
	if err != nil {
		return nil, err
	}
	tasks := make([]core.Task, 0, len(entries))
	for _, raw := range entries {
		var task core.Task
		if err := json.Unmarshal([]byte(raw), &task); err != nil {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
