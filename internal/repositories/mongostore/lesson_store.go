package mongostore

import (
	"context"
	"fmt"

	"github.com/learnhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type lessonStore struct {
	coll *mongo.Collection
}

// NewLessonStore creates a lesson repository over the lessons collection
func NewLessonStore(db *mongo.Database) *lessonStore {
	return &lessonStore{
		coll: db.Collection(lessonsCollection),
	}
}

// Create inserts an independent lesson record
func (s *lessonStore) Create(ctx context.Context, lesson *models.Lesson) error {
	if _, err := s.coll.InsertOne(ctx, lesson); err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

// ListByCourse retrieves the lesson records of a course in creation order
func (s *lessonStore) ListByCourse(ctx context.Context, courseID string) ([]models.Lesson, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}

	lessons := make([]models.Lesson, 0)
	if err := cursor.All(ctx, &lessons); err != nil {
		return nil, fmt.Errorf("failed to decode lessons: %w", err)
	}

	return lessons, nil
}

// DeleteByCourse removes every lesson record of a course
func (s *lessonStore) DeleteByCourse(ctx context.Context, courseID string) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"course_id": courseID}); err != nil {
		return fmt.Errorf("failed to delete lessons: %w", err)
	}
	return nil
}
