package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/learnhub/backend/internal/models"
	"go.uber.org/zap"
)

// ReportService is the interface that wraps methods for progress reports.
type ReportService interface {
	// Method CourseReport retrieve the progress of every student enrolled in a course owned by the teacher.
	//
	// If the teacher does not own the course, an apperrors.ErrForbidden error will be returned.
	CourseReport(ctx context.Context, teacherID, courseID string) (*models.CourseReport, error)
	// Method MyQuizResults retrieve every final quiz attempt of the student grouped by course ID, newest first.
	MyQuizResults(ctx context.Context, studentID string) (map[string][]models.QuizAttempt, error)
}

// QuizGrader is the interface that wraps stateless quiz grading.
type QuizGrader interface {
	// Method GradeQuiz grades answers keyed by question index against the submitted questions.
	//
	// Malformed questions are reported as apperrors.ErrValidation errors. Missing answers count as incorrect.
	GradeQuiz(req *models.GradeQuizRequest) (*models.QuizResult, error)
}

// ReportHandler handles HTTP requests for reports and quiz grading
type ReportHandler struct {
	BaseHandler
	reports ReportService
	grader  QuizGrader
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ReportService, grader QuizGrader, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reports:     reports,
		grader:      grader,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all report and quiz handler routes
func (h *ReportHandler) RegisterRoutes(r chi.Router, studentMiddleware, teacherMiddleware func(http.Handler) http.Handler) {
	r.With(teacherMiddleware).Get("/reports/courses/{courseId}", h.CourseReport)
	r.Route("/quiz", func(r chi.Router) {
		r.Post("/grade", h.GradeQuiz)
		r.With(studentMiddleware).Get("/results", h.MyQuizResults)
	})
}

// CourseReport handles GET /reports/courses/{courseId}
// @Summary Course progress report
// @Description Get the progress of every student enrolled in a course owned by the authenticated teacher. Requires teacher role.
// @Tags reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} models.CourseReport "Course report"
// @Failure 403 {object} map[string]string "Not the course owner"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /reports/courses/{courseId} [get]
func (h *ReportHandler) CourseReport(w http.ResponseWriter, r *http.Request) {
	teacher, ok := h.principal(w, r)
	if !ok {
		return
	}

	report, err := h.reports.CourseReport(r.Context(), teacher.UserID, chi.URLParam(r, "courseId"))
	if err != nil {
		h.respondServiceError(w, r, "build course report", err)
		return
	}

	h.respondJSON(w, http.StatusOK, report)
}

// MyQuizResults handles GET /quiz/results
// @Summary My quiz results
// @Description Get every final quiz attempt of the authenticated student grouped by course ID. Requires student role.
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string][]models.QuizAttempt "Attempts by course ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /quiz/results [get]
func (h *ReportHandler) MyQuizResults(w http.ResponseWriter, r *http.Request) {
	student, ok := h.principal(w, r)
	if !ok {
		return
	}

	results, err := h.reports.MyQuizResults(r.Context(), student.UserID)
	if err != nil {
		h.respondServiceError(w, r, "list quiz results", err)
		return
	}

	h.respondJSON(w, http.StatusOK, results)
}

// GradeQuiz handles POST /quiz/grade
// @Summary Grade quiz
// @Description Grade answers keyed by question index against the submitted questions. A score of 75 or more passes.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body models.GradeQuizRequest true "Questions and answers"
// @Success 200 {object} models.QuizResult "Quiz result"
// @Failure 400 {object} map[string]string "Invalid questions"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /quiz/grade [post]
func (h *ReportHandler) GradeQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.GradeQuizRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	result, err := h.grader.GradeQuiz(&req)
	if err != nil {
		h.respondServiceError(w, r, "grade quiz", err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}
