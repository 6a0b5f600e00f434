package services

import (
	"context"
	"fmt"

	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
)

type reportService struct {
	courseRepo     CourseRepository
	enrollmentRepo EnrollmentRepository
	lessons        LessonSource
	attemptRepo    QuizAttemptRepository
}

// NewReportService creates a new progress report service
func NewReportService(
	courseRepo CourseRepository,
	enrollmentRepo EnrollmentRepository,
	lessons LessonSource,
	attemptRepo QuizAttemptRepository,
) *reportService {
	return &reportService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		lessons:        lessons,
		attemptRepo:    attemptRepo,
	}
}

// CourseReport builds the progress report of every student enrolled in a course owned by the teacher
func (s *reportService) CourseReport(ctx context.Context, teacherID, courseID string) (*models.CourseReport, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.TeacherID != teacherID {
		return nil, apperrors.Forbidden("you can only view reports of your own courses")
	}

	lessons, err := s.lessons.Lessons(ctx, course)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollmentRepo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}

	report := &models.CourseReport{
		CourseID:     course.ID,
		CourseTitle:  course.Title,
		TotalLessons: len(lessons),
		Enrolled:     len(enrollments),
		Students:     make([]models.StudentProgress, 0, len(enrollments)),
	}
	for i := range enrollments {
		e := &enrollments[i]
		state := e.State
		if state == "" {
			state = models.StateInProgress
		}
		completed := IsCertified(e, lessons)
		if completed {
			report.Completed++
		}
		report.Students = append(report.Students, models.StudentProgress{
			EnrollmentID:      e.ID,
			StudentID:         e.StudentID,
			StudentName:       e.StudentName,
			State:             state,
			CompletedLessons:  e.CompletedCount(lessons),
			TotalLessons:      len(lessons),
			QuizPassed:        e.QuizPassed,
			QuizScore:         e.QuizScore,
			CourseCompleted:   completed,
			CertificateIssued: e.CertificateIssued,
			EnrolledAt:        e.EnrolledAt,
		})
	}
	return report, nil
}

// MyQuizResults retrieves the student's quiz attempts grouped by course ID
func (s *reportService) MyQuizResults(ctx context.Context, studentID string) (map[string][]models.QuizAttempt, error) {
	attempts, err := s.attemptRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quiz attempts: %w", err)
	}

	grouped := make(map[string][]models.QuizAttempt)
	for _, a := range attempts {
		grouped[a.CourseID] = append(grouped[a.CourseID], a)
	}
	return grouped, nil
}
