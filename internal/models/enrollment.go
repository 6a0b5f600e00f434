package models

import (
	"errors"
	"fmt"
	"time"
)

// EnrollmentState is the position of an enrollment in the completion workflow
type EnrollmentState string

const (
	StateInProgress  EnrollmentState = "in_progress"
	StateQuizPending EnrollmentState = "quiz_pending"
	StateQuizFailed  EnrollmentState = "quiz_failed"
	StateQuizPassed  EnrollmentState = "quiz_passed"
)

// Transition is a named event moving an enrollment between states
type Transition string

const (
	TransitionCompleteLesson Transition = "complete_lesson"
	TransitionRequestQuiz    Transition = "request_quiz"
	TransitionPassQuiz       Transition = "pass_quiz"
	TransitionFailQuiz       Transition = "fail_quiz"
)

// ErrInvalidTransition is returned when a transition is not allowed from the current state
var ErrInvalidTransition = errors.New("invalid enrollment state transition")

var transitions = map[EnrollmentState]map[Transition]EnrollmentState{
	StateInProgress: {
		TransitionCompleteLesson: StateInProgress,
		TransitionRequestQuiz:    StateQuizPending,
	},
	StateQuizPending: {
		TransitionCompleteLesson: StateInProgress,
		TransitionRequestQuiz:    StateQuizPending,
		TransitionPassQuiz:       StateQuizPassed,
		TransitionFailQuiz:       StateQuizFailed,
	},
	StateQuizFailed: {
		TransitionCompleteLesson: StateInProgress,
		TransitionRequestQuiz:    StateQuizPending,
	},
	StateQuizPassed: {
		TransitionCompleteLesson: StateQuizPassed,
	},
}

// Apply returns the state reached by applying the transition.
// An empty state is treated as StateInProgress.
func (s EnrollmentState) Apply(t Transition) (EnrollmentState, error) {
	if s == "" {
		s = StateInProgress
	}
	next, ok := transitions[s][t]
	if !ok {
		return s, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, t, s)
	}
	return next, nil
}

// Enrollment represents a student's enrollment in a course and their progress
type Enrollment struct {
	ID                string          `json:"id" bson:"_id"`
	StudentID         string          `json:"studentId" bson:"student_id"`
	StudentName       string          `json:"studentName" bson:"student_name"`
	CourseID          string          `json:"courseId" bson:"course_id"`
	CompletedLessons  []string        `json:"completedLessons" bson:"completed_lessons"`
	State             EnrollmentState `json:"state" bson:"state"`
	PendingLessonID   string          `json:"pendingLessonId,omitempty" bson:"pending_lesson_id"`
	QuizPassed        bool            `json:"quizPassed" bson:"quiz_passed"`
	QuizScore         int             `json:"quizScore" bson:"quiz_score"`
	CourseCompleted   bool            `json:"courseCompleted" bson:"course_completed"`
	CertificateIssued bool            `json:"certificateIssued" bson:"certificate_issued"`
	EnrolledAt        time.Time       `json:"enrolledAt" bson:"enrolled_at"`
	UpdatedAt         time.Time       `json:"updatedAt" bson:"updated_at"`
}

// HasCompleted reports whether the lesson ID is in the completed set
func (e *Enrollment) HasCompleted(lessonID string) bool {
	for _, id := range e.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// MissingLessons returns the IDs of the given lessons that are not completed yet
func (e *Enrollment) MissingLessons(lessons []Lesson) []string {
	missing := make([]string, 0)
	for _, l := range lessons {
		if !e.HasCompleted(l.ID) {
			missing = append(missing, l.ID)
		}
	}
	return missing
}

// CompletedCount returns how many of the given lessons are completed
func (e *Enrollment) CompletedCount(lessons []Lesson) int {
	return len(lessons) - len(e.MissingLessons(lessons))
}

// EnrolledCourse is the course part of a student's enrollment listing
type EnrolledCourse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	TeacherName string   `json:"teacherName"`
	Category    Category `json:"category,omitempty"`
	Thumbnail   string   `json:"thumbnail,omitempty"`
	LessonCount int      `json:"lessonCount"`
	Deleted     bool     `json:"deleted"`
}

// EnrollmentView is an enrollment resolved against the course's current state
type EnrollmentView struct {
	ID                string          `json:"id"`
	Course            EnrolledCourse  `json:"course"`
	State             EnrollmentState `json:"state"`
	CompletedLessons  []LessonRef     `json:"completedLessons"`
	TotalLessons      int             `json:"totalLessons"`
	Progress          int             `json:"progress"`
	QuizPassed        bool            `json:"quizPassed"`
	QuizScore         int             `json:"quizScore"`
	CourseCompleted   bool            `json:"courseCompleted"`
	CertificateIssued bool            `json:"certificateIssued"`
	EnrolledAt        time.Time       `json:"enrolledAt"`
}

// LessonCompletionResult represents the outcome of a lesson completion request
type LessonCompletionResult struct {
	Enrollment          *Enrollment `json:"enrollment"`
	CompletedLessons    int         `json:"completedLessons"`
	TotalLessons        int         `json:"totalLessons"`
	CompletedAllLessons bool        `json:"completedAllLessons"`
	QuizRequired        bool        `json:"quizRequired"`
}
