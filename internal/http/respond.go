package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mariapr27/my-store-app/internal/repository"
	"github.com/mariapr27/my-store-app/internal/service"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data}); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIResponse{Success: false, Error: message}); err != nil {
		log.Printf("failed to encode error response: %v", err)
	}
}

// respondServiceError maps the service/repository error taxonomy onto
// HTTP statuses. Unknown errors are logged and hidden behind a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrTotalMismatch):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrIdentityRequired):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrLineNotFound),
		errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, service.ErrCartConflict):
		respondError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
