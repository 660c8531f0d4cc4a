package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/api-sage/core-banking-ledger/src/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// statusForError maps the ledger's error taxonomy onto HTTP statuses.
// Anything unrecognized is a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidStateTransition),
		errors.Is(err, domain.ErrIllegalOperationForState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrVersionConflict),
		errors.Is(err, domain.ErrBalanceNotZero),
		errors.Is(err, domain.ErrHasTransactionHistory):
		return http.StatusConflict
	case errors.Is(err, domain.ErrResourceBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
