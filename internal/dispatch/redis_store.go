package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campusforge/timetable-engine/internal/models"
	appErrors "github.com/campusforge/timetable-engine/pkg/errors"
)

const redisJobKeyPrefix = "timetable:run-job:"

// RedisStore keeps job records as JSON documents so Status survives a
// process restart and can be answered by any replica.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a store. A non-positive ttl keeps settled records
// until Redis evicts them.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Put(ctx context.Context, job *models.RunJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	expiry := time.Duration(0)
	if s.ttl > 0 && settled(job.Status) {
		expiry = s.ttl
	}
	return s.client.Set(ctx, redisJobKeyPrefix+job.ID, payload, expiry).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.RunJob, error) {
	payload, err := s.client.Get(ctx, redisJobKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "run job not found")
	}
	if err != nil {
		return nil, err
	}

	var job models.RunJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
