package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
	"go.uber.org/zap"
)

// CertificateRenderer renders certificate documents
type CertificateRenderer interface {
	// Render produces the certificate document
	//
	// "data" is the content printed on the certificate.
	//
	// Returns the document bytes and an error if any.
	Render(data models.CertificateData) ([]byte, error)
	// ContentType returns the MIME type of rendered documents
	ContentType() string
	// Extension returns the file extension of rendered documents, without the dot
	Extension() string
}

var fileNameUnsafe = regexp.MustCompile(`[^A-Za-z0-9]+`)

type certificateService struct {
	ledger       *enrollmentLedger
	courseRepo   CourseRepository
	lessons      LessonSource
	renderer     CertificateRenderer
	platformName string
	logger       *zap.Logger
	now          func() time.Time
}

// NewCertificateService creates a new certificate issuer
func NewCertificateService(
	ledger *enrollmentLedger,
	courseRepo CourseRepository,
	lessons LessonSource,
	renderer CertificateRenderer,
	platformName string,
	logger *zap.Logger,
) *certificateService {
	return &certificateService{
		ledger:       ledger,
		courseRepo:   courseRepo,
		lessons:      lessons,
		renderer:     renderer,
		platformName: platformName,
		logger:       logger,
		now:          time.Now,
	}
}

// Issue renders the completion certificate of the student for the course.
// Eligibility is recomputed against the course's current lessons on every call.
func (s *certificateService) Issue(ctx context.Context, student models.Principal, courseID string) (*models.Certificate, error) {
	enrollment, err := s.ledger.Get(ctx, student.UserID, courseID)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	lessons, err := s.lessons.Lessons(ctx, course)
	if err != nil {
		return nil, err
	}

	switch CertificationGap(enrollment, lessons) {
	case ReasonLessonsIncomplete:
		return nil, apperrors.Refusal(ReasonLessonsIncomplete, fmt.Sprintf(
			"complete all lessons and pass the quiz to get the certificate (%d of %d lessons completed)",
			enrollment.CompletedCount(lessons), len(lessons)))
	case ReasonQuizNotPassed:
		return nil, apperrors.Refusal(ReasonQuizNotPassed, "pass the final quiz to get the certificate")
	}

	recipient := student.Name
	if recipient == "" {
		recipient = enrollment.StudentName
	}

	content, err := s.renderer.Render(models.CertificateData{
		RecipientName:  recipient,
		CourseTitle:    course.Title,
		InstructorName: course.TeacherName,
		PlatformName:   s.platformName,
		IssuedAt:       s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}

	if !enrollment.CertificateIssued || !enrollment.CourseCompleted {
		enrollment.CertificateIssued = true
		enrollment.CourseCompleted = true
		if err := s.ledger.saveProgress(ctx, enrollment); err != nil {
			s.logger.Warn("failed to mark certificate issued",
				zap.String("enrollment_id", enrollment.ID),
				zap.Error(err),
			)
		}
	}

	return &models.Certificate{
		FileName:    certificateFileName(course.Title, s.renderer.Extension()),
		ContentType: s.renderer.ContentType(),
		Content:     content,
	}, nil
}

func certificateFileName(courseTitle, extension string) string {
	slug := strings.Trim(fileNameUnsafe.ReplaceAllString(strings.ToLower(courseTitle), "-"), "-")
	if slug == "" {
		slug = "course"
	}
	return fmt.Sprintf("certificate-%s.%s", slug, extension)
}
