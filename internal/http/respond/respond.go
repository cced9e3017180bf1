// Package respond centralizes response writing: every error leaves the
// API as {"error": string} with a status derived from the domain
// sentinel that caused it.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rfmendes/contas/internal/account"
	"github.com/rfmendes/contas/internal/auth"
	"github.com/rfmendes/contas/internal/category"
	"github.com/rfmendes/contas/internal/ledger"
	"github.com/rfmendes/contas/internal/receipt"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

var badRequest = []error{
	ledger.ErrInvalidReference,
	ledger.ErrInvalidTransfer,
	ledger.ErrInvalidType,
	ledger.ErrInvalidAmount,
	account.ErrInvalidType,
	category.ErrExists,
	auth.ErrEmailTaken,
	auth.ErrInvalidCredentials,
	auth.ErrNotVerified,
	auth.ErrInvalidToken,
}

var notFound = []error{
	ledger.ErrNotFound,
	account.ErrNotFound,
	category.ErrNotFound,
	auth.ErrNotFound,
	receipt.ErrNotFound,
}

// FromError maps a domain error to its HTTP status. Unrecognized
// errors, atomicity failures included, surface as an opaque 500; by
// then the store has already rolled everything back.
func FromError(w http.ResponseWriter, err error) {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			Error(w, http.StatusBadRequest, target.Error())
			return
		}
	}

	for _, target := range notFound {
		if errors.Is(err, target) {
			Error(w, http.StatusNotFound, target.Error())
			return
		}
	}

	if errors.Is(err, ledger.ErrAccessDenied) {
		Error(w, http.StatusForbidden, ledger.ErrAccessDenied.Error())
		return
	}

	if errors.Is(err, account.ErrInUse) || errors.Is(err, category.ErrInUse) {
		Error(w, http.StatusConflict, err.Error())
		return
	}

	slog.Error("request failed", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}
