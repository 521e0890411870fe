package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/service"
)

type WalletHandler struct {
	ledgerSvc service.LedgerService
}

func NewWalletHandler(ledgerSvc service.LedgerService) *WalletHandler {
	return &WalletHandler{ledgerSvc: ledgerSvc}
}

func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	wallet, err := h.ledgerSvc.GetWallet(r.Context(), userIDFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, wallet)
}

func (h *WalletHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.ledgerSvc.GetSummary(r.Context(), userIDFrom(r))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	txns, total, err := h.ledgerSvc.GetTransactions(r.Context(), userIDFrom(r), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, txns, page, pageSize, total)
}

func (h *WalletHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]
	txn, err := h.ledgerSvc.GetTransaction(r.Context(), userIDFrom(r), reference)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, txn)
}

func (h *WalletHandler) FreezeWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.ledgerSvc.FreezeWallet(r.Context(), userIDFrom(r), userID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "frozen"})
}

func (h *WalletHandler) UnfreezeWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.ledgerSvc.UnfreezeWallet(r.Context(), userIDFrom(r), userID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

// pagination reads page/page_size query parameters with sane bounds.
func pagination(r *http.Request) (int32, int32) {
	page := int32(1)
	pageSize := int32(20)
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = int32(n)
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			pageSize = int32(n)
		}
	}
	return page, pageSize
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, domain.ErrInvalidState)
	}
	return id, nil
}
