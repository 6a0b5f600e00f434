package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type courseStore struct {
	coll *mongo.Collection
}

// NewCourseStore creates a course repository over the courses collection
func NewCourseStore(db *mongo.Database) *courseStore {
	return &courseStore{
		coll: db.Collection(coursesCollection),
	}
}

// Create inserts the course document
func (s *courseStore) Create(ctx context.Context, course *models.Course) error {
	if _, err := s.coll.InsertOne(ctx, course); err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

// GetByID retrieves a course document by its ID
func (s *courseStore) GetByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&course)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.NotFound("course")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	normalizeCourse(&course)
	return &course, nil
}

// List retrieves course documents matching the filter, newest first
func (s *courseStore) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	query := bson.M{}
	if filter.Category != nil {
		query["category"] = *filter.Category
	}
	if filter.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	if filter.TeacherID != "" {
		query["teacher_id"] = filter.TeacherID
	}

	cursor, err := s.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}

	courses := make([]models.Course, 0)
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, fmt.Errorf("failed to decode courses: %w", err)
	}
	for i := range courses {
		normalizeCourse(&courses[i])
	}

	return courses, nil
}

// Update replaces the mutable fields of the course document
func (s *courseStore) Update(ctx context.Context, course *models.Course) error {
	normalizeCourse(course)
	update := bson.M{"$set": bson.M{
		"title":          course.Title,
		"description":    course.Description,
		"subject":        course.Subject,
		"category":       course.Category,
		"teacher_name":   course.TeacherName,
		"published":      course.Published,
		"lessons":        course.Lessons,
		"quiz_questions": course.QuizQuestions,
		"thumbnail":      course.Thumbnail,
		"updated_at":     course.UpdatedAt,
	}}

	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": course.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("course")
	}

	return nil
}

// Delete removes the course document
func (s *courseStore) Delete(ctx context.Context, id string) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFound("course")
	}

	return nil
}

func normalizeCourse(course *models.Course) {
	if course.Lessons == nil {
		course.Lessons = []models.Lesson{}
	}
	if course.QuizQuestions == nil {
		course.QuizQuestions = []models.QuizQuestion{}
	}
}
