package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/redis/go-redis/v9"
)

const (
	ResultKeyPrefix = "result:"
	ResultTTL       = 10 * time.Minute
)

type RedisService struct {
	client *redis.Client
}

func NewRedisService(host string, port int) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%d", host, port),
	})
	return &RedisService{client: client}
}

// CacheResult stores an enriched result under the execution ID for fast
// re-reads during the result TTL window
func (r *RedisService) CacheResult(ctx context.Context, executionID string, result map[string]interface{}) error {
	var err error
	xray.Capture(ctx, "Redis.Set", func(ctx1 context.Context) error {
		jsonData, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			err = marshalErr
			return marshalErr
		}
		key := ResultKeyPrefix + executionID
		err = r.client.Set(ctx, key, jsonData, ResultTTL).Err()

		// Add metadata to subsegment
		if seg := xray.GetSegment(ctx1); seg != nil {
			seg.AddMetadata("redis.key", key)
			seg.AddMetadata("redis.operation", "SET")
		}

		return err
	})
	return err
}

// GetCachedResult retrieves a cached result for an execution ID, nil when
// the key is absent or expired
func (r *RedisService) GetCachedResult(ctx context.Context, executionID string) (map[string]interface{}, error) {
	var result map[string]interface{}
	var finalErr error

	xray.Capture(ctx, "Redis.Get", func(ctx1 context.Context) error {
		key := ResultKeyPrefix + executionID
		jsonData, err := r.client.Get(ctx, key).Result()
		if err == redis.Nil {
			result = nil
			finalErr = nil
			return nil
		}
		if err != nil {
			finalErr = err
			return err
		}

		var cached map[string]interface{}
		if err := json.Unmarshal([]byte(jsonData), &cached); err != nil {
			finalErr = err
			return err
		}
		result = cached
		finalErr = nil

		// Add metadata to subsegment
		if seg := xray.GetSegment(ctx1); seg != nil {
			seg.AddMetadata("redis.key", key)
			seg.AddMetadata("redis.operation", "GET")
			seg.AddMetadata("redis.execution_id", executionID)
		}

		return nil
	})

	return result, finalErr
}

// Ping checks Redis connection
func (r *RedisService) Ping(ctx context.Context) error {
	var err error
	xray.Capture(ctx, "Redis.Ping", func(ctx1 context.Context) error {
		err = r.client.Ping(ctx).Err()

		// Add metadata to subsegment
		if seg := xray.GetSegment(ctx1); seg != nil {
			seg.AddMetadata("redis.operation", "PING")
		}

		return err
	})
	return err
}
