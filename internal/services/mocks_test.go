package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
)

// mockCourseRepository is an in-memory implementation of CourseRepository
type mockCourseRepository struct {
	courses     map[string]*models.Course
	err         error
	createErr   error
	updateErr   error
	deleteErr   error
	listFilter  models.CourseFilter
	updateCalls int
	deleteCalls int
}

func newMockCourseRepository(courses ...*models.Course) *mockCourseRepository {
	m := &mockCourseRepository{courses: make(map[string]*models.Course)}
	for _, c := range courses {
		m.courses[c.ID] = c
	}
	return m
}

func (m *mockCourseRepository) Create(ctx context.Context, course *models.Course) error {
	if m.createErr != nil {
		return m.createErr
	}
	copied := *course
	m.courses[course.ID] = &copied
	return nil
}

func (m *mockCourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	course, ok := m.courses[id]
	if !ok {
		return nil, apperrors.NotFound("course")
	}
	copied := *course
	return &copied, nil
}

func (m *mockCourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	m.listFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	result := make([]models.Course, 0, len(m.courses))
	for _, c := range m.courses {
		if filter.TeacherID != "" && c.TeacherID != filter.TeacherID {
			continue
		}
		result = append(result, *c)
	}
	slices.SortFunc(result, func(a, b models.Course) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return result, nil
}

func (m *mockCourseRepository) Update(ctx context.Context, course *models.Course) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := *course
	m.courses[course.ID] = &copied
	return nil
}

func (m *mockCourseRepository) Delete(ctx context.Context, id string) error {
	m.deleteCalls++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.courses, id)
	return nil
}

// mockLessonRepository is an in-memory implementation of LessonRepository
type mockLessonRepository struct {
	lessons      map[string][]models.Lesson
	err          error
	createErr    error
	deleteErr    error
	deleteCalled bool
}

func newMockLessonRepository() *mockLessonRepository {
	return &mockLessonRepository{lessons: make(map[string][]models.Lesson)}
}

func (m *mockLessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.lessons[lesson.CourseID] = append(m.lessons[lesson.CourseID], *lesson)
	return nil
}

func (m *mockLessonRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Lesson, error) {
	if m.err != nil {
		return nil, m.err
	}
	return slices.Clone(m.lessons[courseID]), nil
}

func (m *mockLessonRepository) DeleteByCourse(ctx context.Context, courseID string) error {
	m.deleteCalled = true
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.lessons, courseID)
	return nil
}

// mockEnrollmentRepository is an in-memory implementation of EnrollmentRepository
type mockEnrollmentRepository struct {
	enrollments    map[string]*models.Enrollment
	getErr         error
	createErr      error
	addErr         error
	updateErr      error
	deleteErr      error
	listErr        error
	addCalls       int
	updateCalls    int
	lastAddedBatch []string
}

func newMockEnrollmentRepository(enrollments ...*models.Enrollment) *mockEnrollmentRepository {
	m := &mockEnrollmentRepository{enrollments: make(map[string]*models.Enrollment)}
	for _, e := range enrollments {
		m.enrollments[enrollmentKey(e.StudentID, e.CourseID)] = e
	}
	return m
}

func enrollmentKey(studentID, courseID string) string {
	return studentID + "/" + courseID
}

func (m *mockEnrollmentRepository) stored(studentID, courseID string) *models.Enrollment {
	return m.enrollments[enrollmentKey(studentID, courseID)]
}

func (m *mockEnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	key := enrollmentKey(enrollment.StudentID, enrollment.CourseID)
	if _, ok := m.enrollments[key]; ok {
		return apperrors.ErrDuplicateEnrollment
	}
	copied := *enrollment
	m.enrollments[key] = &copied
	return nil
}

func (m *mockEnrollmentRepository) GetByStudentAndCourse(ctx context.Context, studentID, courseID string) (*models.Enrollment, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	e, ok := m.enrollments[enrollmentKey(studentID, courseID)]
	if !ok {
		return nil, apperrors.NotFound("enrollment")
	}
	copied := *e
	copied.CompletedLessons = slices.Clone(e.CompletedLessons)
	return &copied, nil
}

func (m *mockEnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]models.Enrollment, 0)
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			result = append(result, *e)
		}
	}
	slices.SortFunc(result, func(a, b models.Enrollment) int { return b.EnrolledAt.Compare(a.EnrolledAt) })
	return result, nil
}

func (m *mockEnrollmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]models.Enrollment, 0)
	for _, e := range m.enrollments {
		if e.CourseID == courseID {
			result = append(result, *e)
		}
	}
	slices.SortFunc(result, func(a, b models.Enrollment) int { return a.EnrolledAt.Compare(b.EnrolledAt) })
	return result, nil
}

func (m *mockEnrollmentRepository) AddCompletedLessons(ctx context.Context, id string, lessonIDs []string) error {
	m.addCalls++
	m.lastAddedBatch = slices.Clone(lessonIDs)
	if m.addErr != nil {
		return m.addErr
	}
	for _, e := range m.enrollments {
		if e.ID != id {
			continue
		}
		for _, lessonID := range lessonIDs {
			if !slices.Contains(e.CompletedLessons, lessonID) {
				e.CompletedLessons = append(e.CompletedLessons, lessonID)
			}
		}
		return nil
	}
	return apperrors.NotFound("enrollment")
}

func (m *mockEnrollmentRepository) UpdateProgress(ctx context.Context, enrollment *models.Enrollment) error {
	m.updateCalls++
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.enrollments[enrollmentKey(enrollment.StudentID, enrollment.CourseID)]
	if !ok {
		return apperrors.NotFound("enrollment")
	}
	stored.State = enrollment.State
	stored.PendingLessonID = enrollment.PendingLessonID
	stored.QuizPassed = enrollment.QuizPassed
	stored.QuizScore = enrollment.QuizScore
	stored.CourseCompleted = enrollment.CourseCompleted
	stored.CertificateIssued = enrollment.CertificateIssued
	stored.UpdatedAt = enrollment.UpdatedAt
	return nil
}

func (m *mockEnrollmentRepository) Delete(ctx context.Context, studentID, courseID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	key := enrollmentKey(studentID, courseID)
	if _, ok := m.enrollments[key]; !ok {
		return apperrors.NotFound("enrollment")
	}
	delete(m.enrollments, key)
	return nil
}

// mockQuizAttemptRepository is a mock implementation of QuizAttemptRepository
type mockQuizAttemptRepository struct {
	attempts  []models.QuizAttempt
	createErr error
	listErr   error
}

func (m *mockQuizAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.attempts = append(m.attempts, *attempt)
	return nil
}

func (m *mockQuizAttemptRepository) ListByStudent(ctx context.Context, studentID string) ([]models.QuizAttempt, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	result := make([]models.QuizAttempt, 0)
	for _, a := range m.attempts {
		if a.StudentID == studentID {
			result = append(result, a)
		}
	}
	return result, nil
}

// mockCatalogCache is an in-memory implementation of CatalogCache
type mockCatalogCache struct {
	details     map[string]*models.CourseDetail
	generations map[string]int64
	getErr      error
	setErr      error
	genErr      error
	invalidated []string
	// afterGeneration runs once the generation is read, standing in for a concurrent writer
	afterGeneration func()
}

func newMockCatalogCache() *mockCatalogCache {
	return &mockCatalogCache{
		details:     make(map[string]*models.CourseDetail),
		generations: make(map[string]int64),
	}
}

func (m *mockCatalogCache) Generation(ctx context.Context, id string) (int64, error) {
	if m.genErr != nil {
		return 0, m.genErr
	}
	gen := m.generations[id]
	if m.afterGeneration != nil {
		m.afterGeneration()
	}
	return gen, nil
}

func (m *mockCatalogCache) GetCourse(ctx context.Context, id string) (*models.CourseDetail, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.details[id], nil
}

func (m *mockCatalogCache) SetCourse(ctx context.Context, detail *models.CourseDetail, generation int64) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.generations[detail.ID] != generation {
		return nil
	}
	m.details[detail.ID] = detail
	return nil
}

func (m *mockCatalogCache) InvalidateCourse(ctx context.Context, id string) error {
	m.invalidated = append(m.invalidated, id)
	m.generations[id]++
	delete(m.details, id)
	return nil
}

// mockRenderer is a mock implementation of CertificateRenderer
type mockRenderer struct {
	data   *models.CertificateData
	err    error
	called bool
}

func (m *mockRenderer) Render(data models.CertificateData) ([]byte, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	m.data = &data
	return []byte("%PDF-1.3 test"), nil
}

func (m *mockRenderer) ContentType() string { return "application/pdf" }

func (m *mockRenderer) Extension() string { return "pdf" }

// newTestCourse builds a course with n embedded lessons l1..ln and a valid ten question quiz
func newTestCourse(id, teacherID string, lessonCount int) *models.Course {
	lessons := make([]models.Lesson, lessonCount)
	for i := range lessons {
		lessons[i] = models.Lesson{
			ID:       fmt.Sprintf("l%d", i+1),
			CourseID: id,
			Title:    fmt.Sprintf("Lesson %d", i+1),
			VideoURL: "https://youtu.be/video",
		}
	}
	return &models.Course{
		ID:            id,
		Title:         "Go Fundamentals",
		Description:   "Learn Go",
		Subject:       "Programming",
		Category:      models.CategoryBackend,
		TeacherID:     teacherID,
		TeacherName:   "Grace Teacher",
		Published:     true,
		Lessons:       lessons,
		QuizQuestions: quizOf(models.RequiredQuizQuestions),
		CreatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestEnrollment(studentID, courseID string, completed ...string) *models.Enrollment {
	if completed == nil {
		completed = []string{}
	}
	return &models.Enrollment{
		ID:               "e-" + studentID + "-" + courseID,
		StudentID:        studentID,
		StudentName:      "Ada Student",
		CourseID:         courseID,
		CompletedLessons: completed,
		State:            models.StateInProgress,
		EnrolledAt:       time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}
