// Package mongostore implements the repositories on MongoDB, keeping each course as a single document.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	coursesCollection      = "courses"
	lessonsCollection      = "lessons"
	enrollmentsCollection  = "enrollments"
	quizAttemptsCollection = "quiz_attempts"
)

// Connect opens a client to the MongoDB deployment and verifies it with a ping
func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, client.Database(database), nil
}

// EnsureIndexes creates the indexes the repositories rely on.
// The unique enrollment index enforces one enrollment per (student, course).
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		coursesCollection: {
			{Keys: bson.D{{Key: "teacher_id", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		lessonsCollection: {
			{Keys: bson.D{{Key: "course_id", Value: 1}, {Key: "created_at", Value: 1}}},
		},
		enrollmentsCollection: {
			{
				Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "course_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uq_enrollments_student_course"),
			},
			{Keys: bson.D{{Key: "course_id", Value: 1}, {Key: "enrolled_at", Value: 1}}},
		},
		quizAttemptsCollection: {
			{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for _, name := range []string{coursesCollection, lessonsCollection, enrollmentsCollection, quizAttemptsCollection} {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, indexes[name]); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}

	return nil
}
