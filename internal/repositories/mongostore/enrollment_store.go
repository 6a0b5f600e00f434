package mongostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type enrollmentStore struct {
	coll *mongo.Collection
}

// NewEnrollmentStore creates an enrollment repository over the enrollments collection
func NewEnrollmentStore(db *mongo.Database) *enrollmentStore {
	return &enrollmentStore{
		coll: db.Collection(enrollmentsCollection),
	}
}

// Create inserts the enrollment, relying on the unique (student_id, course_id) index
func (s *enrollmentStore) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.CompletedLessons == nil {
		enrollment.CompletedLessons = []string{}
	}

	if _, err := s.coll.InsertOne(ctx, enrollment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrDuplicateEnrollment
		}
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

// GetByStudentAndCourse retrieves the enrollment of a student in a course
func (s *enrollmentStore) GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := s.coll.FindOne(ctx, bson.M{"student_id": studentID, "course_id": courseID}).Decode(&enrollment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("enrollment")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}

	if enrollment.CompletedLessons == nil {
		enrollment.CompletedLessons = []string{}
	}
	return &enrollment, nil
}

// ListByStudent retrieves all enrollments of a student, newest first
func (s *enrollmentStore) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	return s.list(ctx, bson.M{"student_id": studentID}, -1)
}

// ListByCourse retrieves all enrollments in a course, oldest first
func (s *enrollmentStore) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	return s.list(ctx, bson.M{"course_id": courseID}, 1)
}

func (s *enrollmentStore) list(ctx context.Context, filter bson.M, order int) ([]models.Enrollment, error) {
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "enrolled_at", Value: order}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}

	enrollments := make([]models.Enrollment, 0)
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, fmt.Errorf("failed to decode enrollments: %w", err)
	}
	for i := range enrollments {
		if enrollments[i].CompletedLessons == nil {
			enrollments[i].CompletedLessons = []string{}
		}
	}

	return enrollments, nil
}

// AddCompletedLessons unions the lesson IDs into the completed set in a single atomic update
func (s *enrollmentStore) AddCompletedLessons(ctx context.Context, id string, lessonIDs []string) error {
	if len(lessonIDs) == 0 {
		return nil
	}

	update := bson.M{
		"$addToSet":    bson.M{"completed_lessons": bson.M{"$each": lessonIDs}},
		"$currentDate": bson.M{"updated_at": true},
	}
	if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update); err != nil {
		return fmt.Errorf("failed to add completed lessons: %w", err)
	}

	return nil
}

// UpdateProgress writes the workflow fields of an enrollment
func (s *enrollmentStore) UpdateProgress(ctx context.Context, enrollment *models.Enrollment) error {
	update := bson.M{"$set": bson.M{
		"state":              enrollment.State,
		"pending_lesson_id":  enrollment.PendingLessonID,
		"quiz_passed":        enrollment.QuizPassed,
		"quiz_score":         enrollment.QuizScore,
		"course_completed":   enrollment.CourseCompleted,
		"certificate_issued": enrollment.CertificateIssued,
		"updated_at":         enrollment.UpdatedAt,
	}}

	if _, err := s.coll.UpdateOne(ctx, bson.M{"_id": enrollment.ID}, update); err != nil {
		return fmt.Errorf("failed to update enrollment progress: %w", err)
	}

	return nil
}

// Delete removes the enrollment of a student in a course
func (s *enrollmentStore) Delete(ctx context.Context, studentID, courseID string) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"student_id": studentID, "course_id": courseID})
	if err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFound("enrollment")
	}

	return nil
}
