package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/learnhub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestCache creates a catalog cache backed by an in-memory Redis server
func setupTestCache(t *testing.T, ttl time.Duration) (*catalogCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr:       mr.Addr(),
		MaxRetries: -1,
	})
	t.Cleanup(func() { client.Close() })

	return NewCatalogCache(client, ttl), mr
}

func testDetail() *models.CourseDetail {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &models.CourseDetail{
		ID:          "c1",
		Title:       "Go Fundamentals",
		Description: "Learn Go",
		Subject:     "Programming",
		Category:    models.CategoryBackend,
		TeacherID:   "t1",
		TeacherName: "Grace Teacher",
		Published:   true,
		Lessons: []models.Lesson{
			{ID: "l1", Title: "Intro", VideoURL: "https://video/1", Notes: "welcome"},
		},
		QuizQuestionCount: 10,
		HasQuiz:           true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func TestNewCatalogCache(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	c := NewCatalogCache(client, time.Minute)

	assert.NotNil(t, c)
	assert.Equal(t, client, c.client)
	assert.Equal(t, time.Minute, c.ttl)
}

func TestCatalogCache_SetAndGet(t *testing.T) {
	c, mr := setupTestCache(t, 5*time.Minute)
	ctx := context.Background()

	require.NoError(t, c.SetCourse(ctx, testDetail(), 0))

	assert.True(t, mr.Exists("catalog:course:c1"))
	assert.Equal(t, 5*time.Minute, mr.TTL("catalog:course:c1"))

	detail, err := c.GetCourse(ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, testDetail(), detail)
}

func TestCatalogCache_GetMiss(t *testing.T) {
	c, _ := setupTestCache(t, time.Minute)

	detail, err := c.GetCourse(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, detail)
}

func TestCatalogCache_Expiry(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.SetCourse(ctx, testDetail(), 0))
	mr.FastForward(2 * time.Minute)

	detail, err := c.GetCourse(ctx, "c1")
	assert.NoError(t, err)
	assert.Nil(t, detail)
}

func TestCatalogCache_Invalidate(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.SetCourse(ctx, testDetail(), 0))
	require.NoError(t, c.InvalidateCourse(ctx, "c1"))
	assert.False(t, mr.Exists("catalog:course:c1"))

	// dropping an absent key is not an error
	assert.NoError(t, c.InvalidateCourse(ctx, "c1"))

	gen, err := c.Generation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
}

func TestCatalogCache_SetCourseAfterInvalidation(t *testing.T) {
	tests := []struct {
		name        string
		invalidate  bool
		expectCache bool
	}{
		{name: "unchanged generation is cached", invalidate: false, expectCache: true},
		{name: "write racing an invalidation is dropped", invalidate: true, expectCache: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mr := setupTestCache(t, time.Minute)
			ctx := context.Background()

			// a reader takes the generation, then loads the course
			gen, err := c.Generation(ctx, "c1")
			require.NoError(t, err)
			assert.Equal(t, int64(0), gen)

			// a writer updates the course meanwhile
			if tt.invalidate {
				require.NoError(t, c.InvalidateCourse(ctx, "c1"))
			}

			require.NoError(t, c.SetCourse(ctx, testDetail(), gen))
			assert.Equal(t, tt.expectCache, mr.Exists("catalog:course:c1"))

			detail, err := c.GetCourse(ctx, "c1")
			require.NoError(t, err)
			if tt.expectCache {
				assert.NotNil(t, detail)
			} else {
				assert.Nil(t, detail)
			}
		})
	}
}

func TestCatalogCache_CorruptEntry(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	require.NoError(t, mr.Set("catalog:course:c1", "{broken"))

	detail, err := c.GetCourse(context.Background(), "c1")

	assert.Error(t, err)
	assert.Nil(t, detail)
	assert.Contains(t, err.Error(), "failed to decode cached course")
}

func TestCatalogCache_ServerDown(t *testing.T) {
	c, mr := setupTestCache(t, time.Minute)
	mr.Close()
	ctx := context.Background()

	_, err := c.GetCourse(ctx, "c1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read cached course")

	err = c.SetCourse(ctx, testDetail(), 0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to cache course")

	_, err = c.Generation(ctx, "c1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read course generation")

	err = c.InvalidateCourse(ctx, "c1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to invalidate cached course")
}
