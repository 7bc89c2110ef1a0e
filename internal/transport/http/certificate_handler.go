package http

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"ctg-quiz-service/internal/app"
	"ctg-quiz-service/internal/certificate"
	"ctg-quiz-service/internal/domain"
)

// CertificateHandler serves the printable certificate for a completed,
// passing session.
type CertificateHandler struct {
	service   *app.QuizService
	formatter *certificate.Formatter
	log       zerolog.Logger
}

func NewCertificateHandler(service *app.QuizService, formatter *certificate.Formatter, log zerolog.Logger) *CertificateHandler {
	return &CertificateHandler{service: service, formatter: formatter, log: log}
}

func (h *CertificateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	result, err := h.service.Result(sessionID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, "session not found", http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrSessionNotCompleted):
		http.Error(w, "quiz not completed", http.StatusConflict)
		return
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if !result.Passed {
		http.Error(w, "certificate available only for passing attempts", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.formatter.Render(w, result); err != nil {
		h.log.Error().Err(err).Str("session", sessionID).Msg("certificate render failed")
	}
}
