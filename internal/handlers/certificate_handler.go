package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/learnhub/backend/internal/models"
	"go.uber.org/zap"
)

// CertificateService is the interface that wraps the certificate issuing logic.
type CertificateService interface {
	// Method Issue renders the completion certificate of the student for the course.
	//
	// A certificate is issued only when every current lesson is completed and the final quiz is passed.
	// Otherwise an apperrors.ErrCertificateRefused error is returned carrying the reason
	// ("lessons_incomplete" or "quiz_not_passed") and a client-facing message.
	Issue(ctx context.Context, student models.Principal, courseID string) (*models.Certificate, error)
}

// CertificateHandler handles HTTP requests for completion certificates
type CertificateHandler struct {
	BaseHandler
	service CertificateService
}

// NewCertificateHandler creates a new certificate handler
func NewCertificateHandler(svc CertificateService, logger *zap.Logger) *CertificateHandler {
	return &CertificateHandler{
		service:     svc,
		BaseHandler: BaseHandler{logger: logger},
	}
}

// RegisterRoutes registers all certificate handler routes
func (h *CertificateHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/certificates", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/{courseId}", h.GetCertificate)
	})
}

// GetCertificate handles GET /certificates/{courseId}
// @Summary Download certificate
// @Description Download the completion certificate as a PDF. Refused with a reason while lessons or the final quiz are outstanding. Requires authentication.
// @Tags certificates
// @Produce application/pdf
// @Produce json
// @Security ApiKeyAuth
// @Param courseId path string true "Course ID"
// @Success 200 {file} file "Certificate document"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Requirements not met, with reason"
// @Failure 404 {object} map[string]string "Not enrolled or course not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /certificates/{courseId} [get]
func (h *CertificateHandler) GetCertificate(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}

	certificate, err := h.service.Issue(r.Context(), *principal, chi.URLParam(r, "courseId"))
	if err != nil {
		h.respondServiceError(w, r, "issue certificate", err)
		return
	}

	w.Header().Set("Content-Type", certificate.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", certificate.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(certificate.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(certificate.Content); err != nil {
		h.logger.Error("failed to write certificate", zap.Error(err))
	}
}
