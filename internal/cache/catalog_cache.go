package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/learnhub/backend/internal/models"
)

const (
	courseKeyPrefix     = "catalog:course:"
	generationKeyPrefix = "catalog:course-gen:"
)

// errStaleCourse aborts a cache write whose course changed after it was read
var errStaleCourse = errors.New("course changed since it was read")

type catalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a Redis backed cache of course detail views.
// Entries expire after ttl so stale views age out even if an invalidation is lost.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *catalogCache {
	return &catalogCache{
		client: client,
		ttl:    ttl,
	}
}

func courseKey(id string) string {
	return courseKeyPrefix + id
}

func generationKey(id string) string {
	return generationKeyPrefix + id
}

// Generation returns the invalidation counter of the course. Read it before loading the
// course from the store and hand it to SetCourse.
func (c *catalogCache) Generation(ctx context.Context, id string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read course generation: %w", err)
	}
	return gen, nil
}

// GetCourse returns the cached course detail, or nil when the course is not cached
func (c *catalogCache) GetCourse(ctx context.Context, id string) (*models.CourseDetail, error) {
	data, err := c.client.Get(ctx, courseKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached course: %w", err)
	}

	var detail models.CourseDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		return nil, fmt.Errorf("failed to decode cached course: %w", err)
	}

	return &detail, nil
}

// SetCourse stores the course detail under its ID unless the course was invalidated
// after generation was read. A skipped write is not an error.
func (c *catalogCache) SetCourse(ctx context.Context, detail *models.CourseDetail, generation int64) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to encode course: %w", err)
	}

	genKey := generationKey(detail.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleCourse
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, courseKey(detail.ID), data, c.ttl)
			return nil
		})
		return err
	}, genKey)
	if errors.Is(err, errStaleCourse) || errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to cache course: %w", err)
	}

	return nil
}

// InvalidateCourse drops the cached view of the course and bumps its generation
// so reads still in flight cannot put the old view back
func (c *catalogCache) InvalidateCourse(ctx context.Context, id string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(id))
		pipe.Del(ctx, courseKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate cached course: %w", err)
	}
	return nil
}
