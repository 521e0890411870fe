package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

type listMeta struct {
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
	Total    int32 `json:"total"`
}

type listResponse struct {
	Items any      `json:"items"`
	Meta  listMeta `json:"meta"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

func respondList(w http.ResponseWriter, items any, page, pageSize, total int32) {
	respondJSON(w, http.StatusOK, listResponse{
		Items: items,
		Meta:  listMeta{Page: page, PageSize: pageSize, Total: total},
	})
}

// respondError maps domain errors onto HTTP status codes.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidSignature):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrWalletInactive):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrBelowMinimumDeposit),
		errors.Is(err, domain.ErrAboveMaximumDeposit),
		errors.Is(err, domain.ErrBelowMinimumWithdrawal),
		errors.Is(err, domain.ErrInvalidState):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrBankAccountNotVerified),
		errors.Is(err, domain.ErrTooManyActiveWithdrawals):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidEscrowState),
		errors.Is(err, domain.ErrAlreadyReleased),
		errors.Is(err, domain.ErrAlreadyCompleted),
		errors.Is(err, domain.ErrDuplicateBankAccount),
		errors.Is(err, domain.ErrBankAccountInUse):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrGatewayUnavailable):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		respondJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	respondJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
