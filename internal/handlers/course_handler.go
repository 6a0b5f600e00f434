package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/learnhub/backend/internal/models"
	"go.uber.org/zap"
)

// CatalogService is the interface that wraps methods for course catalog business logic.
type CatalogService interface {
	// Method ListCourses retrieve course summaries matching the filter, newest first.
	//
	// "filter" parameter narrows the list by category, search term (title or description) and teacher.
	// Summaries never carry lesson notes or quiz questions.
	// If some error will occur during data retrieve, the error will be returned together with "nil" value.
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.CourseSummary, error)
	// Method GetCourse retrieve the public detail view of a course by its ID.
	//
	// The view carries full lessons and the number of quiz questions, never the questions themselves.
	// If the course does not exist, an apperrors.ErrNotFound error will be returned.
	GetCourse(ctx context.Context, id string) (*models.CourseDetail, error)
	// Method ListMyCourses retrieve all courses authored by the teacher, including drafts and quiz questions.
	ListMyCourses(ctx context.Context, teacherID string) ([]models.Course, error)
	// Method CreateCourse validates and stores a new course authored by the teacher.
	//
	// "teacher" parameter is the authenticated author; its ID and name are recorded on the course.
	// Validation failures are returned as apperrors.ErrValidation errors with a client-facing message.
	CreateCourse(ctx context.Context, teacher models.Principal, req *models.CreateCourseRequest) (*models.Course, error)
	// Method UpdateCourse applies a partial update to a course owned by the teacher.
	//
	// Only non-nil request fields are applied; the result is validated as a whole.
	// If the teacher does not own the course, an apperrors.ErrForbidden error will be returned.
	UpdateCourse(ctx context.Context, teacherID, id string, req *models.UpdateCourseRequest) (*models.Course, error)
	// Method PublishCourse marks a course owned by the teacher as published.
	//
	// Publishing requires a final quiz of exactly 10 questions.
	PublishCourse(ctx context.Context, teacherID, id string) (*models.Course, error)
	// Method DeleteCourse removes a course owned by the teacher together with its lesson records.
	//
	// Enrollments are kept and later shown with a placeholder course.
	DeleteCourse(ctx context.Context, teacherID, id string) error
}

// CourseHandler handles HTTP requests for the course catalog
type CourseHandler struct {
	BaseHandler
	service CatalogService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(svc CatalogService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all course handler routes
func (h *CourseHandler) RegisterRoutes(r chi.Router, teacherMiddleware func(http.Handler) http.Handler) {
	r.Route("/courses", func(r chi.Router) {
		r.Get("/", h.ListCourses)
		r.Get("/{id}", h.GetCourse)
		r.Group(func(r chi.Router) {
			r.Use(teacherMiddleware)
			r.Get("/mine", h.ListMyCourses)
			r.Post("/", h.CreateCourse)
			r.Put("/{id}", h.UpdateCourse)
			r.Patch("/{id}/publish", h.PublishCourse)
			r.Delete("/{id}", h.DeleteCourse)
		})
	})
}

// ListCourses handles GET /courses
// @Summary List courses
// @Description Get course summaries, newest first, optionally filtered by category and a case-insensitive search on title and description
// @Tags courses
// @Accept json
// @Produce json
// @Param category query string false "Category: Frontend, Backend, Full Stack, JavaScript, Database, Other"
// @Param search query string false "Search term"
// @Success 200 {array} models.CourseSummary "List of courses"
// @Failure 400 {object} map[string]string "Invalid category"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses [get]
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	filter := models.CourseFilter{
		Search: r.URL.Query().Get("search"),
	}

	if categoryParam := r.URL.Query().Get("category"); categoryParam != "" {
		category := models.Category(categoryParam)
		if !category.IsValid() {
			h.respondError(w, http.StatusBadRequest, "invalid category")
			return
		}
		filter.Category = &category
	}

	courses, err := h.service.ListCourses(r.Context(), filter)
	if err != nil {
		h.respondServiceError(w, r, "list courses", err)
		return
	}

	h.respondJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /courses/{id}
// @Summary Get course
// @Description Get a course with its lessons. Quiz questions are not included.
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} models.CourseDetail "Course"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.service.GetCourse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, "get course", err)
		return
	}

	h.respondJSON(w, http.StatusOK, course)
}

// ListMyCourses handles GET /courses/mine
// @Summary List my courses
// @Description Get every course authored by the authenticated teacher, drafts included. Requires teacher role.
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.Course "List of courses"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/mine [get]
func (h *CourseHandler) ListMyCourses(w http.ResponseWriter, r *http.Request) {
	teacher, ok := h.principal(w, r)
	if !ok {
		return
	}

	courses, err := h.service.ListMyCourses(r.Context(), teacher.UserID)
	if err != nil {
		h.respondServiceError(w, r, "list teacher courses", err)
		return
	}

	h.respondJSON(w, http.StatusOK, courses)
}

// CreateCourse handles POST /courses
// @Summary Create course
// @Description Create a course with embedded lessons and an optional final quiz of exactly 10 questions. Requires teacher role.
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.CreateCourseRequest true "Course"
// @Success 201 {object} models.Course "Created course"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses [post]
func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	teacher, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req models.CreateCourseRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	course, err := h.service.CreateCourse(r.Context(), *teacher, &req)
	if err != nil {
		h.respondServiceError(w, r, "create course", err)
		return
	}

	h.respondJSON(w, http.StatusCreated, course)
}

// UpdateCourse handles PUT /courses/{id}
// @Summary Update course
// @Description Update fields of a course owned by the authenticated teacher. Omitted fields are unchanged. Requires teacher role.
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Param request body models.UpdateCourseRequest true "Fields to update"
// @Success 200 {object} models.Course "Updated course"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Not the course owner"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{id} [put]
func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	teacher, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req models.UpdateCourseRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	course, err := h.service.UpdateCourse(r.Context(), teacher.UserID, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.respondServiceError(w, r, "update course", err)
		return
	}

	h.respondJSON(w, http.StatusOK, course)
}

// PublishCourse handles PATCH /courses/{id}/publish
// @Summary Publish course
// @Description Publish a course owned by the authenticated teacher. The course must have a final quiz of exactly 10 questions. Requires teacher role.
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Success 200 {object} models.Course "Published course"
// @Failure 400 {object} map[string]string "Course has no valid quiz"
// @Failure 403 {object} map[string]string "Not the course owner"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{id}/publish [patch]
func (h *CourseHandler) PublishCourse(w http.ResponseWriter, r *http.Request) {
	teacher, ok := h.principal(w, r)
	if !ok {
		return
	}

	course, err := h.service.PublishCourse(r.Context(), teacher.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, "publish course", err)
		return
	}

	h.respondJSON(w, http.StatusOK, course)
}

// DeleteCourse handles DELETE /courses/{id}
// @Summary Delete course
// @Description Delete a course owned by the authenticated teacher. Requires teacher role.
// @Tags courses
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Course ID"
// @Success 204 "No content"
// @Failure 403 {object} map[string]string "Not the course owner"
// @Failure 404 {object} map[string]string "Course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	teacher, ok := h.principal(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteCourse(r.Context(), teacher.UserID, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, r, "delete course", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
