package models

import "time"

// Category represents the catalog category of a course
type Category string

const (
	CategoryFrontend   Category = "Frontend"
	CategoryBackend    Category = "Backend"
	CategoryFullStack  Category = "Full Stack"
	CategoryJavaScript Category = "JavaScript"
	CategoryDatabase   Category = "Database"
	CategoryOther      Category = "Other"
)

// Categories lists every valid course category
var Categories = []Category{
	CategoryFrontend,
	CategoryBackend,
	CategoryFullStack,
	CategoryJavaScript,
	CategoryDatabase,
	CategoryOther,
}

// IsValid reports whether the category is one of the known categories
func (c Category) IsValid() bool {
	for _, category := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Course represents a course document with its embedded lessons and final quiz
type Course struct {
	ID            string         `json:"id" bson:"_id"`
	Title         string         `json:"title" bson:"title" validate:"required"`
	Description   string         `json:"description" bson:"description" validate:"required"`
	Subject       string         `json:"subject" bson:"subject" validate:"required"`
	Category      Category       `json:"category" bson:"category" validate:"category"`
	TeacherID     string         `json:"teacherId" bson:"teacher_id"`
	TeacherName   string         `json:"teacherName" bson:"teacher_name"`
	Published     bool           `json:"published" bson:"published"`
	Lessons       []Lesson       `json:"lessons" bson:"lessons" validate:"min=1,dive"`
	QuizQuestions []QuizQuestion `json:"quizQuestions" bson:"quiz_questions" validate:"dive"`
	Thumbnail     string         `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	CreatedAt     time.Time      `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" bson:"updated_at"`
}

// HasValidQuiz reports whether the course carries exactly RequiredQuizQuestions well-formed questions
func (c *Course) HasValidQuiz() bool {
	if len(c.QuizQuestions) != RequiredQuizQuestions {
		return false
	}
	for _, q := range c.QuizQuestions {
		if !q.IsValid() {
			return false
		}
	}
	return true
}

// CourseFilter holds the catalog listing filters
type CourseFilter struct {
	Category  *Category
	Search    string
	TeacherID string
}

// CourseSummary represents a course in catalog list responses.
// Quiz content and lesson notes are never part of a summary.
type CourseSummary struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Subject     string          `json:"subject"`
	Category    Category        `json:"category"`
	TeacherID   string          `json:"teacherId"`
	TeacherName string          `json:"teacherName"`
	Published   bool            `json:"published"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Lessons     []LessonSummary `json:"lessons"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CourseDetail represents a single course with resolved lessons and the quiz answers withheld
type CourseDetail struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Subject           string    `json:"subject"`
	Category          Category  `json:"category"`
	TeacherID         string    `json:"teacherId"`
	TeacherName       string    `json:"teacherName"`
	Published         bool      `json:"published"`
	Thumbnail         string    `json:"thumbnail,omitempty"`
	Lessons           []Lesson  `json:"lessons"`
	QuizQuestionCount int       `json:"quizQuestionCount"`
	HasQuiz           bool      `json:"hasQuiz"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// CreateCourseRequest represents a request to create a course
type CreateCourseRequest struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Subject       string         `json:"subject"`
	Category      Category       `json:"category,omitempty"`
	Lessons       []Lesson       `json:"lessons"`
	QuizQuestions []QuizQuestion `json:"quizQuestions,omitempty"`
	Published     bool           `json:"published"`
	Thumbnail     string         `json:"thumbnail,omitempty"`
}

// UpdateCourseRequest represents a request to update a course (partial update).
// Nil fields are left unchanged; a non-nil empty quiz clears the quiz.
type UpdateCourseRequest struct {
	Title         *string        `json:"title,omitempty"`
	Description   *string        `json:"description,omitempty"`
	Subject       *string        `json:"subject,omitempty"`
	Category      *Category      `json:"category,omitempty"`
	Lessons       []Lesson       `json:"lessons,omitempty"`
	QuizQuestions []QuizQuestion `json:"quizQuestions"`
	Published     *bool          `json:"published,omitempty"`
	Thumbnail     *string        `json:"thumbnail,omitempty"`
}
