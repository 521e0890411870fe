package http

import (
	"net/http"

	"consulthub-ledger/internal/service"
)

type BankAccountHandler struct {
	bankAccountSvc service.BankAccountService
}

func NewBankAccountHandler(bankAccountSvc service.BankAccountService) *BankAccountHandler {
	return &BankAccountHandler{bankAccountSvc: bankAccountSvc}
}

type registerBankAccountRequest struct {
	IBAN       string `json:"iban"`
	HolderName string `json:"holder_name"`
	BankName   string `json:"bank_name,omitempty"`
}

func (h *BankAccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerBankAccountRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	account, err := h.bankAccountSvc.Register(r.Context(), userIDFrom(r), req.IBAN, req.HolderName, req.BankName)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, account)
}

func (h *BankAccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.bankAccountSvc.List(r.Context(), userIDFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, accounts)
}

func (h *BankAccountHandler) SetPrimary(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.bankAccountSvc.SetPrimary(r.Context(), userIDFrom(r), accountID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "primary"})
}

func (h *BankAccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.bankAccountSvc.Delete(r.Context(), userIDFrom(r), accountID); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Verify is admin-only: it attests the account details were checked against
// the payout rails.
func (h *BankAccountHandler) Verify(w http.ResponseWriter, r *http.Request) {
	accountID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.bankAccountSvc.Verify(r.Context(), userIDFrom(r), accountID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}
