package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/auth/middleware"
	"github.com/learnhub/backend/internal/models"
	"go.uber.org/zap"
)

type BaseHandler struct {
	logger *zap.Logger
}

// errorStatus maps error kinds to HTTP status codes, in match order
var errorStatus = []struct {
	kind   error
	status int
}{
	{apperrors.ErrValidation, http.StatusBadRequest},
	{apperrors.ErrDuplicateEnrollment, http.StatusBadRequest},
	{apperrors.ErrQuizSubmissionIncomplete, http.StatusBadRequest},
	{apperrors.ErrNotEnrolled, http.StatusNotFound},
	{apperrors.ErrNotFound, http.StatusNotFound},
	{apperrors.ErrQuizUnavailable, http.StatusConflict},
	{apperrors.ErrQuizNotPending, http.StatusConflict},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized},
	{apperrors.ErrForbidden, http.StatusForbidden},
	{apperrors.ErrCertificateRefused, http.StatusForbidden},
}

// respondJSON sends a JSON response
func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// respondError sends an error JSON response
func (h *BaseHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps a service error to its HTTP status and client message.
// Errors of unknown kind are logged and reported as 500.
func (h *BaseHandler) respondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	for _, m := range errorStatus {
		if !errors.Is(err, m.kind) {
			continue
		}

		message := m.kind.Error()
		body := map[string]string{}
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			message = appErr.Message
			if appErr.Reason != "" {
				body["reason"] = appErr.Reason
			}
		}
		body["error"] = message
		h.respondJSON(w, m.status, body)
		return
	}

	h.logger.Error("failed to "+op,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	h.respondError(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON decodes the request body, answering 400 on malformed input
func (h *BaseHandler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// principal returns the authenticated caller, answering 401 when the request carries none
func (h *BaseHandler) principal(w http.ResponseWriter, r *http.Request) (*models.Principal, bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok || principal == nil {
		h.respondError(w, http.StatusUnauthorized, apperrors.ErrUnauthorized.Error())
		return nil, false
	}
	return principal, true
}
