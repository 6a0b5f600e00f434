package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/learnhub/backend/internal/auth/middleware"
	"github.com/learnhub/backend/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	testTeacher = &models.Principal{UserID: "t1", Role: models.RoleTeacher, Name: "Grace Teacher"}
	testStudent = &models.Principal{UserID: "s1", Role: models.RoleStudent, Name: "Ada Student"}
)

// asPrincipal stands in for the auth middleware and injects a fixed caller
func asPrincipal(p *models.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if p != nil {
				r = r.WithContext(middleware.WithPrincipal(r.Context(), p))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func doRequest(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func newTestRouter(register func(r chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Route("/api/v1", register)
	return r
}

type mockCatalogService struct {
	listCourses   func(ctx context.Context, filter models.CourseFilter) ([]models.CourseSummary, error)
	getCourse     func(ctx context.Context, id string) (*models.CourseDetail, error)
	listMyCourses func(ctx context.Context, teacherID string) ([]models.Course, error)
	createCourse  func(ctx context.Context, teacher models.Principal, req *models.CreateCourseRequest) (*models.Course, error)
	updateCourse  func(ctx context.Context, teacherID, id string, req *models.UpdateCourseRequest) (*models.Course, error)
	publishCourse func(ctx context.Context, teacherID, id string) (*models.Course, error)
	deleteCourse  func(ctx context.Context, teacherID, id string) error
	addLesson     func(ctx context.Context, teacherID string, req *models.CreateLessonRequest) (*models.Lesson, error)
	listLessons   func(ctx context.Context, courseID string) ([]models.Lesson, error)
}

func (m *mockCatalogService) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.CourseSummary, error) {
	return m.listCourses(ctx, filter)
}

func (m *mockCatalogService) GetCourse(ctx context.Context, id string) (*models.CourseDetail, error) {
	return m.getCourse(ctx, id)
}

func (m *mockCatalogService) ListMyCourses(ctx context.Context, teacherID string) ([]models.Course, error) {
	return m.listMyCourses(ctx, teacherID)
}

func (m *mockCatalogService) CreateCourse(ctx context.Context, teacher models.Principal, req *models.CreateCourseRequest) (*models.Course, error) {
	return m.createCourse(ctx, teacher, req)
}

func (m *mockCatalogService) UpdateCourse(ctx context.Context, teacherID, id string, req *models.UpdateCourseRequest) (*models.Course, error) {
	return m.updateCourse(ctx, teacherID, id, req)
}

func (m *mockCatalogService) PublishCourse(ctx context.Context, teacherID, id string) (*models.Course, error) {
	return m.publishCourse(ctx, teacherID, id)
}

func (m *mockCatalogService) DeleteCourse(ctx context.Context, teacherID, id string) error {
	return m.deleteCourse(ctx, teacherID, id)
}

func (m *mockCatalogService) AddLesson(ctx context.Context, teacherID string, req *models.CreateLessonRequest) (*models.Lesson, error) {
	return m.addLesson(ctx, teacherID, req)
}

func (m *mockCatalogService) ListLessons(ctx context.Context, courseID string) ([]models.Lesson, error) {
	return m.listLessons(ctx, courseID)
}

type mockEnrollmentService struct {
	enroll   func(ctx context.Context, student models.Principal, courseID string) (*models.Enrollment, error)
	unenroll func(ctx context.Context, studentID, courseID string) error
	listMine func(ctx context.Context, studentID string) ([]models.EnrollmentView, error)
}

func (m *mockEnrollmentService) Enroll(ctx context.Context, student models.Principal, courseID string) (*models.Enrollment, error) {
	return m.enroll(ctx, student, courseID)
}

func (m *mockEnrollmentService) Unenroll(ctx context.Context, studentID, courseID string) error {
	return m.unenroll(ctx, studentID, courseID)
}

func (m *mockEnrollmentService) ListMine(ctx context.Context, studentID string) ([]models.EnrollmentView, error) {
	return m.listMine(ctx, studentID)
}

type mockCompletionService struct {
	completeLesson func(ctx context.Context, studentID, courseID, lessonID string) (*models.LessonCompletionResult, error)
	getPendingQuiz func(ctx context.Context, studentID, courseID string) ([]models.QuizQuestionView, error)
	submitQuiz     func(ctx context.Context, studentID, courseID string, answers map[int]int) (*models.QuizSubmissionResult, error)
}

func (m *mockCompletionService) CompleteLesson(ctx context.Context, studentID, courseID, lessonID string) (*models.LessonCompletionResult, error) {
	return m.completeLesson(ctx, studentID, courseID, lessonID)
}

func (m *mockCompletionService) GetPendingQuiz(ctx context.Context, studentID, courseID string) ([]models.QuizQuestionView, error) {
	return m.getPendingQuiz(ctx, studentID, courseID)
}

func (m *mockCompletionService) SubmitQuiz(ctx context.Context, studentID, courseID string, answers map[int]int) (*models.QuizSubmissionResult, error) {
	return m.submitQuiz(ctx, studentID, courseID, answers)
}

type mockCertificateService struct {
	issue func(ctx context.Context, student models.Principal, courseID string) (*models.Certificate, error)
}

func (m *mockCertificateService) Issue(ctx context.Context, student models.Principal, courseID string) (*models.Certificate, error) {
	return m.issue(ctx, student, courseID)
}

type mockReportService struct {
	courseReport  func(ctx context.Context, teacherID, courseID string) (*models.CourseReport, error)
	myQuizResults func(ctx context.Context, studentID string) (map[string][]models.QuizAttempt, error)
}

func (m *mockReportService) CourseReport(ctx context.Context, teacherID, courseID string) (*models.CourseReport, error) {
	return m.courseReport(ctx, teacherID, courseID)
}

func (m *mockReportService) MyQuizResults(ctx context.Context, studentID string) (map[string][]models.QuizAttempt, error) {
	return m.myQuizResults(ctx, studentID)
}

type mockQuizGrader struct {
	gradeQuiz func(req *models.GradeQuizRequest) (*models.QuizResult, error)
}

func (m *mockQuizGrader) GradeQuiz(req *models.GradeQuizRequest) (*models.QuizResult, error) {
	return m.gradeQuiz(req)
}
