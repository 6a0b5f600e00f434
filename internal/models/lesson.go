package models

import "time"

// Lesson represents a lesson, either embedded in a course or stored as an independent record
type Lesson struct {
	ID       string `json:"id" bson:"id"`
	CourseID string `json:"courseId,omitempty" bson:"course_id,omitempty"`
	Title    string `json:"title" bson:"title" validate:"required"`
	VideoURL string `json:"videoUrl" bson:"video_url" validate:"required"`
	Notes    string `json:"notes" bson:"notes"`
	// Duration in seconds
	Duration  int       `json:"duration,omitempty" bson:"duration,omitempty" validate:"gte=0"`
	CreatedAt time.Time `json:"createdAt,omitempty" bson:"created_at,omitempty"`
}

// LessonSummary represents a lesson in catalog list responses (notes withheld)
type LessonSummary struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	VideoURL string `json:"videoUrl"`
	Duration int    `json:"duration,omitempty"`
}

// LessonRef identifies a lesson by ID and title
type LessonRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CreateLessonRequest represents a request to add an independent lesson record to a course
type CreateLessonRequest struct {
	CourseID string `json:"courseId" validate:"required"`
	Title    string `json:"title" validate:"required"`
	VideoURL string `json:"videoUrl" validate:"required"`
	Notes    string `json:"notes,omitempty"`
	Duration int    `json:"duration,omitempty" validate:"gte=0"`
}

// ContainsLesson reports whether the lesson ID is part of the lesson list
func ContainsLesson(lessons []Lesson, lessonID string) bool {
	for _, l := range lessons {
		if l.ID == lessonID {
			return true
		}
	}
	return false
}
