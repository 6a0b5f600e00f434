package mongostore

import (
	"context"
	"fmt"

	"github.com/learnhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type quizAttemptStore struct {
	coll *mongo.Collection
}

// NewQuizAttemptStore creates a quiz attempt repository over the quiz_attempts collection
func NewQuizAttemptStore(db *mongo.Database) *quizAttemptStore {
	return &quizAttemptStore{
		coll: db.Collection(quizAttemptsCollection),
	}
}

// Create inserts a graded quiz attempt
func (s *quizAttemptStore) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	if _, err := s.coll.InsertOne(ctx, attempt); err != nil {
		return fmt.Errorf("failed to create quiz attempt: %w", err)
	}
	return nil
}

// ListByStudent retrieves all quiz attempts of a student, newest first
func (s *quizAttemptStore) ListByStudent(ctx context.Context, studentID string) ([]models.QuizAttempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz attempts: %w", err)
	}

	attempts := make([]models.QuizAttempt, 0)
	if err := cursor.All(ctx, &attempts); err != nil {
		return nil, fmt.Errorf("failed to decode quiz attempts: %w", err)
	}

	return attempts, nil
}
