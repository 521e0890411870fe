package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"consulthub-ledger/internal/service"
)

type DepositHandler struct {
	depositSvc service.DepositService
}

func NewDepositHandler(depositSvc service.DepositService) *DepositHandler {
	return &DepositHandler{depositSvc: depositSvc}
}

type initializeDepositRequest struct {
	Amount          int64  `json:"amount"`
	PaymentMethod   string `json:"payment_method"`
	EscrowReference string `json:"escrow_reference,omitempty"`
}

func (h *DepositHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	var req initializeDepositRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	deposit, err := h.depositSvc.Initialize(r.Context(), userIDFrom(r), req.Amount, req.PaymentMethod, req.EscrowReference)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, deposit)
}

func (h *DepositHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]
	deposit, err := h.depositSvc.GetStatus(r.Context(), userIDFrom(r), reference)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, deposit)
}

func (h *DepositHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	deposits, total, err := h.depositSvc.List(r.Context(), userIDFrom(r), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, deposits, page, pageSize, total)
}
