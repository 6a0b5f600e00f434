package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
	"go.uber.org/zap"
)

// deletedCourseTitle is shown for enrollments whose course no longer exists
const deletedCourseTitle = "Course no longer available"

// EnrollmentRepository defines methods for enrollment data access
type EnrollmentRepository interface {
	// Create inserts a new enrollment
	//
	// "ctx" is the context for the request.
	// "enrollment" is the enrollment to create.
	//
	// Returns an error if any. A duplicate (student, course) pair yields apperrors.ErrDuplicateEnrollment.
	Create(ctx context.Context, enrollment *models.Enrollment) error
	// GetByStudentAndCourse retrieves the enrollment of a student in a course
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the student.
	// "courseID" is the ID of the course.
	//
	// Returns the enrollment and an error if any. A missing enrollment yields apperrors.ErrNotFound.
	GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
	// ListByStudent retrieves every enrollment of a student, newest first
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the student.
	//
	// Returns a list of enrollments and an error if any.
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	// ListByCourse retrieves every enrollment in a course, oldest first
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns a list of enrollments and an error if any.
	ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error)
	// AddCompletedLessons adds lesson IDs to the completed set as a single atomic set-union
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the enrollment.
	// "lessonIDs" are the lesson IDs to add.
	//
	// Returns an error if any.
	AddCompletedLessons(ctx context.Context, id string, lessonIDs []string) error
	// UpdateProgress stores the state, quiz and completion fields of an enrollment
	//
	// "ctx" is the context for the request.
	// "enrollment" is the enrollment holding the new values.
	//
	// Returns an error if any.
	UpdateProgress(ctx context.Context, enrollment *models.Enrollment) error
	// Delete removes the enrollment of a student in a course
	//
	// "ctx" is the context for the request.
	// "studentID" is the ID of the student.
	// "courseID" is the ID of the course.
	//
	// Returns an error if any. A missing enrollment yields apperrors.ErrNotFound.
	Delete(ctx context.Context, studentID, courseID string) error
}

type enrollmentLedger struct {
	enrollmentRepo EnrollmentRepository
	courseRepo     CourseRepository
	lessons        LessonSource
	logger         *zap.Logger
	now            func() time.Time
}

// NewEnrollmentLedger creates a new enrollment ledger
func NewEnrollmentLedger(
	enrollmentRepo EnrollmentRepository,
	courseRepo CourseRepository,
	lessons LessonSource,
	logger *zap.Logger,
) *enrollmentLedger {
	return &enrollmentLedger{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		lessons:        lessons,
		logger:         logger,
		now:            time.Now,
	}
}

// Enroll creates a fresh enrollment of the student in the course
func (l *enrollmentLedger) Enroll(ctx context.Context, student models.Principal, courseID string) (*models.Enrollment, error) {
	if _, err := l.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	existing, err := l.enrollmentRepo.GetByStudentAndCourse(ctx, student.UserID, courseID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check enrollment: %w", err)
	}
	if existing != nil {
		return nil, apperrors.ErrDuplicateEnrollment
	}

	now := l.now()
	enrollment := &models.Enrollment{
		ID:               uuid.New().String(),
		StudentID:        student.UserID,
		StudentName:      student.Name,
		CourseID:         courseID,
		CompletedLessons: []string{},
		State:            models.StateInProgress,
		EnrolledAt:       now,
		UpdatedAt:        now,
	}
	if err := l.enrollmentRepo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEnrollment) {
			return nil, apperrors.ErrDuplicateEnrollment
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	l.logger.Info("student enrolled", zap.String("student_id", student.UserID), zap.String("course_id", courseID))
	return enrollment, nil
}

// Get retrieves the enrollment of the student in the course
func (l *enrollmentLedger) Get(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	enrollment, err := l.enrollmentRepo.GetByStudentAndCourse(ctx, studentID, courseID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrNotEnrolled
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	if enrollment.State == "" {
		enrollment.State = models.StateInProgress
	}
	return enrollment, nil
}

// MarkLessonComplete adds the lessons to the enrollment's completed set.
// Lessons already in the set are skipped, so repeated calls are harmless.
func (l *enrollmentLedger) MarkLessonComplete(ctx context.Context, enrollment *models.Enrollment, lessonIDs ...string) error {
	added := make([]string, 0, len(lessonIDs))
	for _, id := range lessonIDs {
		if !enrollment.HasCompleted(id) && !slices.Contains(added, id) {
			added = append(added, id)
		}
	}
	if len(added) == 0 {
		return nil
	}

	if err := l.enrollmentRepo.AddCompletedLessons(ctx, enrollment.ID, added); err != nil {
		return fmt.Errorf("failed to mark lessons complete: %w", err)
	}
	enrollment.CompletedLessons = append(enrollment.CompletedLessons, added...)
	return nil
}

// RecordQuizResult stores the quiz score and outcome together with the enrollment's current state.
// It never changes the course completion flag on its own.
func (l *enrollmentLedger) RecordQuizResult(ctx context.Context, enrollment *models.Enrollment, score int, passed bool) error {
	enrollment.QuizScore = score
	enrollment.QuizPassed = passed
	return l.saveProgress(ctx, enrollment)
}

// Unenroll removes the student's enrollment in the course together with its progress
func (l *enrollmentLedger) Unenroll(ctx context.Context, studentID, courseID string) error {
	err := l.enrollmentRepo.Delete(ctx, studentID, courseID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.ErrNotEnrolled
	}
	if err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}

	l.logger.Info("student unenrolled", zap.String("student_id", studentID), zap.String("course_id", courseID))
	return nil
}

// ListMine retrieves the student's enrollments resolved against the current course content
func (l *enrollmentLedger) ListMine(ctx context.Context, studentID string) ([]models.EnrollmentView, error) {
	enrollments, err := l.enrollmentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	views := make([]models.EnrollmentView, 0, len(enrollments))
	for i := range enrollments {
		view, err := l.resolve(ctx, &enrollments[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (l *enrollmentLedger) resolve(ctx context.Context, e *models.Enrollment) (*models.EnrollmentView, error) {
	view := &models.EnrollmentView{
		ID:                e.ID,
		State:             e.State,
		CompletedLessons:  []models.LessonRef{},
		QuizPassed:        e.QuizPassed,
		QuizScore:         e.QuizScore,
		CourseCompleted:   e.CourseCompleted,
		CertificateIssued: e.CertificateIssued,
		EnrolledAt:        e.EnrolledAt,
	}
	if view.State == "" {
		view.State = models.StateInProgress
	}

	course, err := l.courseRepo.GetByID(ctx, e.CourseID)
	if errors.Is(err, apperrors.ErrNotFound) {
		view.Course = models.EnrolledCourse{ID: e.CourseID, Title: deletedCourseTitle, Deleted: true}
		return view, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	lessons, err := l.lessons.Lessons(ctx, course)
	if err != nil {
		return nil, err
	}

	for _, lesson := range lessons {
		if e.HasCompleted(lesson.ID) {
			view.CompletedLessons = append(view.CompletedLessons, models.LessonRef{ID: lesson.ID, Title: lesson.Title})
		}
	}
	view.TotalLessons = len(lessons)
	if view.TotalLessons > 0 {
		view.Progress = 100 * len(view.CompletedLessons) / view.TotalLessons
	}
	view.CourseCompleted = IsCertified(e, lessons)
	view.Course = models.EnrolledCourse{
		ID:          course.ID,
		Title:       course.Title,
		TeacherName: course.TeacherName,
		Category:    course.Category,
		Thumbnail:   course.Thumbnail,
		LessonCount: len(lessons),
	}
	return view, nil
}

func (l *enrollmentLedger) saveProgress(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.UpdatedAt = l.now()
	if err := l.enrollmentRepo.UpdateProgress(ctx, enrollment); err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}
	return nil
}

