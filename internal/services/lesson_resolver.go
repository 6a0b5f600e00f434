package services

import (
	"context"
	"fmt"

	"github.com/learnhub/backend/internal/models"
)

// LessonSource returns the current lessons of a course
type LessonSource interface {
	// Lessons returns the lessons of the course in order
	//
	// "ctx" is the context for the request.
	// "course" is the course whose lessons are resolved.
	//
	// Returns the lessons and an error if any.
	Lessons(ctx context.Context, course *models.Course) ([]models.Lesson, error)
}

type lessonResolver struct {
	lessonRepo LessonRepository
}

// NewLessonResolver creates the single read accessor for course lessons
func NewLessonResolver(lessonRepo LessonRepository) *lessonResolver {
	return &lessonResolver{
		lessonRepo: lessonRepo,
	}
}

// Lessons returns the independent lesson records of the course when any exist,
// otherwise the lessons embedded in the course document
func (r *lessonResolver) Lessons(ctx context.Context, course *models.Course) ([]models.Lesson, error) {
	records, err := r.lessonRepo.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	if len(records) > 0 {
		return records, nil
	}

	lessons := make([]models.Lesson, len(course.Lessons))
	for i, l := range course.Lessons {
		l.CourseID = course.ID
		lessons[i] = l
	}
	return lessons, nil
}
