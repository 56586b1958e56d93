package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/satonic/payperview-api/internal/models"
)

// statusFor maps an error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientPayment):
		return http.StatusPaymentRequired
	case errors.Is(err, models.ErrOracleUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, models.ErrTransferFailure):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrReentrantCall):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
