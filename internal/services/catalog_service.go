package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
	"go.uber.org/zap"
)

// CourseRepository defines methods for course data access
type CourseRepository interface {
	// Create inserts a new course document
	//
	// "ctx" is the context for the request.
	// "course" is the course to create.
	//
	// Returns an error if any.
	Create(ctx context.Context, course *models.Course) error
	// GetByID retrieves a course by its ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the course.
	//
	// Returns the course and an error if any. A missing course yields apperrors.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Course, error)
	// List retrieves courses matching the filter, newest first
	//
	// "ctx" is the context for the request.
	// "filter" holds the optional category, search and teacher filters.
	//
	// Returns a list of courses and an error if any.
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	// Update replaces the stored course document
	//
	// "ctx" is the context for the request.
	// "course" is the course to store.
	//
	// Returns an error if any.
	Update(ctx context.Context, course *models.Course) error
	// Delete removes a course by its ID
	//
	// "ctx" is the context for the request.
	// "id" is the ID of the course.
	//
	// Returns an error if any.
	Delete(ctx context.Context, id string) error
}

// LessonRepository defines methods for independent lesson records
type LessonRepository interface {
	// Create inserts a new lesson record
	//
	// "ctx" is the context for the request.
	// "lesson" is the lesson to create.
	//
	// Returns an error if any.
	Create(ctx context.Context, lesson *models.Lesson) error
	// ListByCourse retrieves the lesson records of a course in creation order
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns a list of lessons and an error if any.
	ListByCourse(ctx context.Context, courseID string) ([]models.Lesson, error)
	// DeleteByCourse removes every lesson record of a course
	//
	// "ctx" is the context for the request.
	// "courseID" is the ID of the course.
	//
	// Returns an error if any.
	DeleteByCourse(ctx context.Context, courseID string) error
}

// CatalogCache caches public course detail reads
type CatalogCache interface {
	// GetCourse returns the cached course detail, or nil on a miss
	GetCourse(ctx context.Context, id string) (*models.CourseDetail, error)
	// Generation returns the course's invalidation counter, read before loading the course
	Generation(ctx context.Context, id string) (int64, error)
	// SetCourse stores the course detail unless the course was invalidated after generation was read
	SetCourse(ctx context.Context, detail *models.CourseDetail, generation int64) error
	// InvalidateCourse drops the cached course detail
	InvalidateCourse(ctx context.Context, id string) error
}

type catalogService struct {
	courseRepo CourseRepository
	lessonRepo LessonRepository
	lessons    LessonSource
	cache      CatalogCache
	validate   *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewCatalogService creates a new course catalog service.
// cache may be nil, in which case detail reads always hit the store.
func NewCatalogService(
	courseRepo CourseRepository,
	lessonRepo LessonRepository,
	lessons LessonSource,
	cache CatalogCache,
	logger *zap.Logger,
) *catalogService {
	return &catalogService{
		courseRepo: courseRepo,
		lessonRepo: lessonRepo,
		lessons:    lessons,
		cache:      cache,
		validate:   newValidator(),
		logger:     logger,
		now:        time.Now,
	}
}

// ListCourses retrieves course summaries matching the filter
func (s *catalogService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.CourseSummary, error) {
	if filter.Category != nil && !filter.Category.IsValid() {
		return nil, apperrors.Validation(fmt.Sprintf("unknown category: %s", *filter.Category))
	}
	filter.Search = strings.TrimSpace(filter.Search)

	courses, err := s.courseRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	summaries := make([]models.CourseSummary, 0, len(courses))
	for i := range courses {
		lessons, err := s.lessons.Lessons(ctx, &courses[i])
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, toSummary(&courses[i], lessons))
	}
	return summaries, nil
}

// GetCourse retrieves the public detail of a course
func (s *catalogService) GetCourse(ctx context.Context, id string) (*models.CourseDetail, error) {
	cacheable := s.cache != nil
	var generation int64
	if cacheable {
		detail, err := s.cache.GetCourse(ctx, id)
		if err != nil {
			s.logger.Warn("failed to read course cache", zap.String("course_id", id), zap.Error(err))
		} else if detail != nil {
			return detail, nil
		}

		generation, err = s.cache.Generation(ctx, id)
		if err != nil {
			s.logger.Warn("failed to read course cache generation", zap.String("course_id", id), zap.Error(err))
			cacheable = false
		}
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	lessons, err := s.lessons.Lessons(ctx, course)
	if err != nil {
		return nil, err
	}

	detail := toDetail(course, lessons)
	if cacheable {
		if err := s.cache.SetCourse(ctx, detail, generation); err != nil {
			s.logger.Warn("failed to write course cache", zap.String("course_id", id), zap.Error(err))
		}
	}
	return detail, nil
}

// ListMyCourses retrieves every course owned by the teacher, drafts and quiz content included
func (s *catalogService) ListMyCourses(ctx context.Context, teacherID string) ([]models.Course, error) {
	courses, err := s.courseRepo.List(ctx, models.CourseFilter{TeacherID: teacherID})
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	for i := range courses {
		lessons, err := s.lessons.Lessons(ctx, &courses[i])
		if err != nil {
			return nil, err
		}
		courses[i].Lessons = lessons
	}
	return courses, nil
}

// CreateCourse validates and stores a new course owned by the teacher
func (s *catalogService) CreateCourse(ctx context.Context, teacher models.Principal, req *models.CreateCourseRequest) (*models.Course, error) {
	now := s.now()
	course := &models.Course{
		ID:            uuid.New().String(),
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Subject:       strings.TrimSpace(req.Subject),
		Category:      req.Category,
		TeacherID:     teacher.UserID,
		TeacherName:   teacher.Name,
		Published:     req.Published,
		QuizQuestions: req.QuizQuestions,
		Thumbnail:     req.Thumbnail,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if course.Category == "" {
		course.Category = models.CategoryOther
	}
	if course.QuizQuestions == nil {
		course.QuizQuestions = []models.QuizQuestion{}
	}
	course.Lessons = prepareLessons(course.ID, req.Lessons)

	if err := validateCourse(s.validate, course); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}
	return course, nil
}

// UpdateCourse applies a partial update to a course owned by the teacher and re-validates the result
func (s *catalogService) UpdateCourse(ctx context.Context, teacherID, id string, req *models.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.getOwnedCourse(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		course.Description = strings.TrimSpace(*req.Description)
	}
	if req.Subject != nil {
		course.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Category != nil {
		course.Category = *req.Category
	}
	if req.Lessons != nil {
		course.Lessons = prepareLessons(course.ID, req.Lessons)
	}
	if req.QuizQuestions != nil {
		course.QuizQuestions = req.QuizQuestions
	}
	if req.Published != nil {
		course.Published = *req.Published
	}
	if req.Thumbnail != nil {
		course.Thumbnail = *req.Thumbnail
	}
	course.UpdatedAt = s.now()

	if err := validateCourse(s.validate, course); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", err)
	}
	s.invalidate(ctx, course.ID)
	return course, nil
}

// PublishCourse publishes a course owned by the teacher once its quiz is complete
func (s *catalogService) PublishCourse(ctx context.Context, teacherID, id string) (*models.Course, error) {
	course, err := s.getOwnedCourse(ctx, teacherID, id)
	if err != nil {
		return nil, err
	}

	if !course.HasValidQuiz() {
		return nil, apperrors.Validation(fmt.Sprintf("a course needs exactly %d valid quiz questions before it can be published", models.RequiredQuizQuestions))
	}

	course.Published = true
	course.UpdatedAt = s.now()
	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to publish course: %w", err)
	}
	s.invalidate(ctx, course.ID)
	return course, nil
}

// DeleteCourse removes a course owned by the teacher together with its lesson records.
// Enrollments are kept and resolve to a tombstone.
func (s *catalogService) DeleteCourse(ctx context.Context, teacherID, id string) error {
	if _, err := s.getOwnedCourse(ctx, teacherID, id); err != nil {
		return err
	}

	if err := s.lessonRepo.DeleteByCourse(ctx, id); err != nil {
		return fmt.Errorf("failed to delete lessons: %w", err)
	}
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	s.invalidate(ctx, id)
	return nil
}

// AddLesson stores an independent lesson record for a course owned by the teacher
func (s *catalogService) AddLesson(ctx context.Context, teacherID string, req *models.CreateLessonRequest) (*models.Lesson, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	if _, err := s.getOwnedCourse(ctx, teacherID, req.CourseID); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		ID:        uuid.New().String(),
		CourseID:  req.CourseID,
		Title:     strings.TrimSpace(req.Title),
		VideoURL:  strings.TrimSpace(req.VideoURL),
		Notes:     req.Notes,
		Duration:  req.Duration,
		CreatedAt: s.now(),
	}
	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}
	s.invalidate(ctx, req.CourseID)
	return lesson, nil
}

// ListLessons retrieves the current lessons of a course
func (s *catalogService) ListLessons(ctx context.Context, courseID string) ([]models.Lesson, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return s.lessons.Lessons(ctx, course)
}

func (s *catalogService) getOwnedCourse(ctx context.Context, teacherID, id string) (*models.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	if course.TeacherID != teacherID {
		return nil, apperrors.Forbidden("you can only modify your own courses")
	}
	return course, nil
}

func (s *catalogService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCourse(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate course cache", zap.String("course_id", id), zap.Error(err))
	}
}

// prepareLessons assigns IDs to new embedded lessons and binds them to the course
func prepareLessons(courseID string, lessons []models.Lesson) []models.Lesson {
	prepared := make([]models.Lesson, len(lessons))
	for i, l := range lessons {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.CourseID = courseID
		l.Title = strings.TrimSpace(l.Title)
		l.VideoURL = strings.TrimSpace(l.VideoURL)
		prepared[i] = l
	}
	return prepared
}

func toSummary(course *models.Course, lessons []models.Lesson) models.CourseSummary {
	summaries := make([]models.LessonSummary, len(lessons))
	for i, l := range lessons {
		summaries[i] = models.LessonSummary{ID: l.ID, Title: l.Title, VideoURL: l.VideoURL, Duration: l.Duration}
	}
	return models.CourseSummary{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Subject:     course.Subject,
		Category:    course.Category,
		TeacherID:   course.TeacherID,
		TeacherName: course.TeacherName,
		Published:   course.Published,
		Thumbnail:   course.Thumbnail,
		Lessons:     summaries,
		CreatedAt:   course.CreatedAt,
	}
}

func toDetail(course *models.Course, lessons []models.Lesson) *models.CourseDetail {
	return &models.CourseDetail{
		ID:                course.ID,
		Title:             course.Title,
		Description:       course.Description,
		Subject:           course.Subject,
		Category:          course.Category,
		TeacherID:         course.TeacherID,
		TeacherName:       course.TeacherName,
		Published:         course.Published,
		Thumbnail:         course.Thumbnail,
		Lessons:           lessons,
		QuizQuestionCount: len(course.QuizQuestions),
		HasQuiz:           course.HasValidQuiz(),
		CreatedAt:         course.CreatedAt,
		UpdatedAt:         course.UpdatedAt,
	}
}
