package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/bimakw/swap-quoter/internal/domain/entities"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// writeDomainError maps pricing errors to HTTP statuses. Arithmetic faults
// are internal errors and get logged. ErrNoRouteAvailable is matched before
// the input errors because it wraps every rejected route's reason.
func writeDomainError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	switch {
	case errors.Is(err, entities.ErrArithmetic):
		logger.Error().Err(err).Msg("arithmetic fault while pricing")
		writeError(w, http.StatusInternalServerError, "arithmetic_error", "internal pricing error")
	case errors.Is(err, entities.ErrNoRouteAvailable):
		writeError(w, http.StatusNotFound, "no_route", err.Error())
	case errors.Is(err, entities.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "invalid_amount", err.Error())
	case errors.Is(err, entities.ErrInvalidRoute):
		writeError(w, http.StatusBadRequest, "invalid_route", err.Error())
	case errors.Is(err, entities.ErrInsufficientLiquidity):
		writeError(w, http.StatusNotFound, "no_route", err.Error())
	default:
		logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
	}
}
