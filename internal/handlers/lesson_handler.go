package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/learnhub/backend/internal/models"
	"go.uber.org/zap"
)

// LessonService is the interface that wraps methods for independent lesson records.
type LessonService interface {
	// Method AddLesson stores a lesson record for a course owned by the teacher.
	//
	// Once a course has lesson records they replace its embedded lessons for progress and certification.
	// If the teacher does not own the course, an apperrors.ErrForbidden error will be returned.
	AddLesson(ctx context.Context, teacherID string, req *models.CreateLessonRequest) (*models.Lesson, error)
	// Method ListLessons retrieve the current lessons of a course.
	//
	// Lesson records are returned when the course has any, otherwise its embedded lessons.
	ListLessons(ctx context.Context, courseID string) ([]models.Lesson, error)
}

// LessonHandler handles HTTP requests for lessons
type LessonHandler struct {
	BaseHandler
	service LessonService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(svc LessonService, logger *zap.Logger) *LessonHandler {
	return &LessonHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all lesson handler routes
func (h *LessonHandler) RegisterRoutes(r chi.Router, authMiddleware, teacherMiddleware func(http.Handler) http.Handler) {
	r.Route("/lessons", func(r chi.Router) {
		r.With(teacherMiddleware).Post("/", h.AddLesson)
		r.With(authMiddleware).Get("/{courseId}", h.ListLessons)
	})
}

// AddLesson handles POST /lessons
// @Summary Add lesson
// @Description Add a lesson record to a course owned by the authenticated teacher. Requires teacher role.
// @Tags lessons
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateLessonRequest true "Lesson"
// @Success 201 {object} models.Lesson "Created lesson"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Not the course owner"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons [post]
func (h *LessonHandler) AddLesson(w http.ResponseWriter, r *http.Request) {
	teacher, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req models.CreateLessonRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	lesson, err := h.service.AddLesson(r.Context(), teacher.UserID, &req)
	if err != nil {
		h.respondServiceError(w, r, "add lesson", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, lesson)
}

// ListLessons handles GET /lessons/{courseId}
// @Summary List lessons
// @Description Get the current lessons of a course. Requires authentication.
// @Tags lessons
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {array} models.Lesson "List of lessons"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /lessons/{courseId} [get]
func (h *LessonHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.service.ListLessons(r.Context(), chi.URLParam(r, "courseId"))
	if err != nil {
		h.respondServiceError(w, r, "list lessons", err)
		return
	}

	h.respondJSON(w, http.StatusOK, lessons)
}
