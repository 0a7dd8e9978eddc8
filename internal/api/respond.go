package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"hanzi/internal/domain"
	"hanzi/internal/repository"
	"hanzi/internal/service"
	"hanzi/internal/study"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	var verr validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrInvalidGrade),
		errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, service.ErrInvalidHSKLevel),
		errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrCharacterNotFound),
		errors.Is(err, study.ErrUnknownCard):
		return http.StatusNotFound
	case errors.Is(err, study.ErrInvalidState),
		errors.Is(err, study.ErrSessionComplete),
		errors.Is(err, study.ErrNotCurrentCard),
		errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its status. Internal errors are logged and hidden from the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondError(w, status, "internal error")
		return
	}
	respondError(w, status, err.Error())
}

// decode reads a JSON body into dst and validates it
func (s *Server) decode(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return s.validate.Struct(dst)
}
