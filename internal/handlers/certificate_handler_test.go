package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/learnhub/backend/internal/apperrors"
	"github.com/learnhub/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCertificateHandler_GetCertificate(t *testing.T) {
	tests := []struct {
		name           string
		issue          func(ctx context.Context, student models.Principal, courseID string) (*models.Certificate, error)
		expectedStatus int
		validate       func(*testing.T, http.Header, []byte)
	}{
		{
			name: "issued",
			issue: func(ctx context.Context, student models.Principal, courseID string) (*models.Certificate, error) {
				assert.Equal(t, "Ada Student", student.Name)
				assert.Equal(t, "c1", courseID)
				return &models.Certificate{
					FileName:    "certificate-go-fundamentals.pdf",
					ContentType: "application/pdf",
					Content:     []byte("%PDF-1.3 test"),
				}, nil
			},
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, header http.Header, body []byte) {
				assert.Equal(t, "application/pdf", header.Get("Content-Type"))
				assert.Equal(t, `attachment; filename="certificate-go-fundamentals.pdf"`, header.Get("Content-Disposition"))
				assert.Equal(t, "13", header.Get("Content-Length"))
				assert.Equal(t, "%PDF-1.3 test", string(body))
			},
		},
		{
			name: "lessons incomplete",
			issue: func(ctx context.Context, student models.Principal, courseID string) (*models.Certificate, error) {
				return nil, apperrors.Refusal("lessons_incomplete", "complete all lessons and pass the quiz to get the certificate (1 of 3 lessons completed)")
			},
			expectedStatus: http.StatusForbidden,
			validate: func(t *testing.T, header http.Header, body []byte) {
				assert.Equal(t, "application/json", header.Get("Content-Type"))
				assert.Contains(t, string(body), `"reason":"lessons_incomplete"`)
				assert.Contains(t, string(body), "1 of 3 lessons completed")
			},
		},
		{
			name: "quiz not passed",
			issue: func(ctx context.Context, student models.Principal, courseID string) (*models.Certificate, error) {
				return nil, apperrors.Refusal("quiz_not_passed", "pass the final quiz to get the certificate")
			},
			expectedStatus: http.StatusForbidden,
			validate: func(t *testing.T, header http.Header, body []byte) {
				assert.Contains(t, string(body), `"reason":"quiz_not_passed"`)
			},
		},
		{
			name: "render failure",
			issue: func(ctx context.Context, student models.Principal, courseID string) (*models.Certificate, error) {
				return nil, errors.New("failed to render certificate: font missing")
			},
			expectedStatus: http.StatusInternalServerError,
			validate: func(t *testing.T, header http.Header, body []byte) {
				assert.NotContains(t, string(body), "font missing")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCertificateHandler(&mockCertificateService{issue: tt.issue}, testLogger())
			router := newTestRouter(func(r chi.Router) {
				h.RegisterRoutes(r, asPrincipal(testStudent))
			})

			w := doRequest(t, router, http.MethodGet, "/api/v1/certificates/c1", "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			tt.validate(t, w.Header(), w.Body.Bytes())
		})
	}
}
