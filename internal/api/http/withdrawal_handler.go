package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/service"
)

type WithdrawalHandler struct {
	withdrawalSvc service.WithdrawalService
}

func NewWithdrawalHandler(withdrawalSvc service.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalSvc: withdrawalSvc}
}

type requestWithdrawalRequest struct {
	Amount        int64 `json:"amount"`
	BankAccountID int64 `json:"bank_account_id"`
}

func (h *WithdrawalHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req requestWithdrawalRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	withdrawal, err := h.withdrawalSvc.Request(r.Context(), userIDFrom(r), req.Amount, req.BankAccountID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, withdrawal)
}

func (h *WithdrawalHandler) Get(w http.ResponseWriter, r *http.Request) {
	withdrawal, err := h.withdrawalSvc.Get(r.Context(), userIDFrom(r), mux.Vars(r)["reference"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, withdrawal)
}

func (h *WithdrawalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	withdrawal, err := h.withdrawalSvc.Cancel(r.Context(), userIDFrom(r), mux.Vars(r)["reference"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, withdrawal)
}

func (h *WithdrawalHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	withdrawals, total, err := h.withdrawalSvc.List(r.Context(), userIDFrom(r), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, withdrawals, page, pageSize, total)
}

// Admin operations below.

func (h *WithdrawalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	withdrawal, err := h.withdrawalSvc.Approve(r.Context(), userIDFrom(r), mux.Vars(r)["reference"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, withdrawal)
}

type rejectWithdrawalRequest struct {
	Reason string `json:"reason"`
}

func (h *WithdrawalHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectWithdrawalRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Reason == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "rejection reason is required"})
		return
	}

	withdrawal, err := h.withdrawalSvc.Reject(r.Context(), userIDFrom(r), mux.Vars(r)["reference"], req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, withdrawal)
}

func (h *WithdrawalHandler) MarkProcessing(w http.ResponseWriter, r *http.Request) {
	withdrawal, err := h.withdrawalSvc.MarkProcessing(r.Context(), userIDFrom(r), mux.Vars(r)["reference"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, withdrawal)
}

type completeWithdrawalRequest struct {
	BankReference string `json:"bank_reference"`
}

func (h *WithdrawalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeWithdrawalRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	withdrawal, err := h.withdrawalSvc.Complete(r.Context(), userIDFrom(r), mux.Vars(r)["reference"], req.BankReference)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, withdrawal)
}

func (h *WithdrawalHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := domain.WithdrawalStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.WithdrawalStatusPending
	}

	page, pageSize := pagination(r)
	withdrawals, total, err := h.withdrawalSvc.ListByStatus(r.Context(), status, page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, withdrawals, page, pageSize, total)
}
