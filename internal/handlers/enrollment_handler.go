package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/learnhub/backend/internal/models"
	"go.uber.org/zap"
)

// EnrollmentService is the interface that wraps methods for the enrollment ledger.
type EnrollmentService interface {
	// Method Enroll creates a fresh enrollment of the student in the course.
	//
	// If the student is already enrolled, an apperrors.ErrDuplicateEnrollment error will be returned.
	// If the course does not exist, an apperrors.ErrNotFound error will be returned.
	Enroll(ctx context.Context, student models.Principal, courseID string) (*models.Enrollment, error)
	// Method Unenroll removes the enrollment of the student in the course together with its progress.
	//
	// If the student is not enrolled, an apperrors.ErrNotEnrolled error will be returned.
	Unenroll(ctx context.Context, studentID, courseID string) error
	// Method ListMine retrieve every enrollment of the student with course summary and progress, newest first.
	//
	// Enrollments whose course was deleted are returned with a placeholder course.
	ListMine(ctx context.Context, studentID string) ([]models.EnrollmentView, error)
}

// CompletionService is the interface that wraps methods for the lesson completion and quiz gating workflow.
type CompletionService interface {
	// Method CompleteLesson records the lesson as completed for the student.
	//
	// Completing the last remaining lesson does not record it; instead the final quiz becomes pending
	// and the result reports quizRequired. Completing an already completed lesson changes nothing.
	// If the course has no valid quiz at that point, an apperrors.ErrQuizUnavailable error will be returned.
	CompleteLesson(ctx context.Context, studentID, courseID, lessonID string) (*models.LessonCompletionResult, error)
	// Method GetPendingQuiz retrieve the final quiz questions without correct answers.
	//
	// If no quiz is pending for the student, an apperrors.ErrQuizNotPending error will be returned.
	GetPendingQuiz(ctx context.Context, studentID, courseID string) ([]models.QuizQuestionView, error)
	// Method SubmitQuiz grades the answers to the pending final quiz.
	//
	// "answers" parameter maps question index to option index and must answer every question.
	// A passing score completes the course; a failing score leaves it open for another attempt.
	SubmitQuiz(ctx context.Context, studentID, courseID string, answers map[int]int) (*models.QuizSubmissionResult, error)
}

// EnrollmentHandler handles HTTP requests for student enrollments
type EnrollmentHandler struct {
	BaseHandler
	ledger   EnrollmentService
	workflow CompletionService
}

// NewEnrollmentHandler creates a new enrollment handler
func NewEnrollmentHandler(ledger EnrollmentService, workflow CompletionService, logger *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		ledger:      ledger,
		workflow:    workflow,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all enrollment handler routes
func (h *EnrollmentHandler) RegisterRoutes(r chi.Router, studentMiddleware func(http.Handler) http.Handler) {
	r.Route("/enrollments", func(r chi.Router) {
		r.Use(studentMiddleware)
		r.Get("/my", h.ListMine)
		r.Post("/{courseId}", h.Enroll)
		r.Post("/complete/{courseId}/{lessonId}", h.CompleteLesson)
		r.Get("/quiz/{courseId}", h.GetPendingQuiz)
		r.Post("/quiz-passed/{courseId}", h.SubmitQuiz)
		r.Delete("/unenroll/{courseId}", h.Unenroll)
	})
}

// Enroll handles POST /enrollments/{courseId}
// @Summary Enroll in course
// @Description Enroll the authenticated student in a course. Requires student role.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 201 {object} models.Enrollment "Enrollment"
// @Failure 400 {object} map[string]string "Already enrolled"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /enrollments/{courseId} [post]
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	student, ok := h.principal(w, r)
	if !ok {
		return
	}

	enrollment, err := h.ledger.Enroll(r.Context(), *student, chi.URLParam(r, "courseId"))
	if err != nil {
		h.respondServiceError(w, r, "enroll", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, enrollment)
}

// CompleteLesson handles POST /enrollments/complete/{courseId}/{lessonId}
// @Summary Complete lesson
// @Description Mark a lesson as completed. Completing the final lesson makes the final quiz pending instead. Requires student role.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param lessonId path string true "Lesson ID"
// @Success 200 {object} models.LessonCompletionResult "Progress after completion"
// @Failure 404 {object} map[string]string "Not enrolled, course or lesson not found"
// @Failure 409 {object} map[string]string "Course has no valid quiz"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /enrollments/complete/{courseId}/{lessonId} [post]
func (h *EnrollmentHandler) CompleteLesson(w http.ResponseWriter, r *http.Request) {
	student, ok := h.principal(w, r)
	if !ok {
		return
	}

	result, err := h.workflow.CompleteLesson(r.Context(), student.UserID, chi.URLParam(r, "courseId"), chi.URLParam(r, "lessonId"))
	if err != nil {
		h.respondServiceError(w, r, "complete lesson", err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// GetPendingQuiz handles GET /enrollments/quiz/{courseId}
// @Summary Get pending quiz
// @Description Get the final quiz questions without correct answers. Available only while the quiz is pending. Requires student role.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {array} models.QuizQuestionView "Quiz questions"
// @Failure 404 {object} map[string]string "Not enrolled"
// @Failure 409 {object} map[string]string "No quiz pending"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /enrollments/quiz/{courseId} [get]
func (h *EnrollmentHandler) GetPendingQuiz(w http.ResponseWriter, r *http.Request) {
	student, ok := h.principal(w, r)
	if !ok {
		return
	}

	questions, err := h.workflow.GetPendingQuiz(r.Context(), student.UserID, chi.URLParam(r, "courseId"))
	if err != nil {
		h.respondServiceError(w, r, "get pending quiz", err)
		return
	}

	h.respondJSON(w, http.StatusOK, questions)
}

// SubmitQuiz handles POST /enrollments/quiz-passed/{courseId}
// @Summary Submit final quiz
// @Description Grade answers to the pending final quiz. A score of 75 or more completes the course. Requires student role.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Param request body models.SubmitQuizRequest true "Answers keyed by question index"
// @Success 200 {object} models.QuizSubmissionResult "Quiz result"
// @Failure 400 {object} map[string]string "Incomplete or invalid answers"
// @Failure 404 {object} map[string]string "Not enrolled"
// @Failure 409 {object} map[string]string "No quiz pending"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /enrollments/quiz-passed/{courseId} [post]
func (h *EnrollmentHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	student, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req models.SubmitQuizRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	result, err := h.workflow.SubmitQuiz(r.Context(), student.UserID, chi.URLParam(r, "courseId"), req.Answers)
	if err != nil {
		h.respondServiceError(w, r, "submit quiz", err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// Unenroll handles DELETE /enrollments/unenroll/{courseId}
// @Summary Unenroll from course
// @Description Remove the enrollment of the authenticated student together with all progress. Requires student role.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} map[string]string "Unenrolled"
// @Failure 404 {object} map[string]string "Not enrolled"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /enrollments/unenroll/{courseId} [delete]
func (h *EnrollmentHandler) Unenroll(w http.ResponseWriter, r *http.Request) {
	student, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.ledger.Unenroll(r.Context(), student.UserID, chi.URLParam(r, "courseId")); err != nil {
		h.respondServiceError(w, r, "unenroll", err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "unenrolled successfully"})
}

// ListMine handles GET /enrollments/my
// @Summary List my enrollments
// @Description Get every enrollment of the authenticated student with course summary and progress, newest first. Requires student role.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.EnrollmentView "List of enrollments"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /enrollments/my [get]
func (h *EnrollmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	student, ok := h.principal(w, r)
	if !ok {
		return
	}

	enrollments, err := h.ledger.ListMine(r.Context(), student.UserID)
	if err != nil {
		h.respondServiceError(w, r, "list enrollments", err)
		return
	}

	h.respondJSON(w, http.StatusOK, enrollments)
}
