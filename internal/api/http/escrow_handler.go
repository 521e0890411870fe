package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"consulthub-ledger/internal/domain"
	"consulthub-ledger/internal/service"
)

type EscrowHandler struct {
	escrowSvc service.EscrowService
}

func NewEscrowHandler(escrowSvc service.EscrowService) *EscrowHandler {
	return &EscrowHandler{escrowSvc: escrowSvc}
}

type createEscrowRequest struct {
	ConsultantID int64 `json:"consultant_id"`
	ProjectID    int64 `json:"project_id"`
	Amount       int64 `json:"amount"`
}

func (h *EscrowHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEscrowRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	escrow, err := h.escrowSvc.Create(r.Context(), userIDFrom(r), req.ConsultantID, req.ProjectID, req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, escrow)
}

func (h *EscrowHandler) Fund(w http.ResponseWriter, r *http.Request) {
	escrowID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	escrow, err := h.escrowSvc.Fund(r.Context(), userIDFrom(r), escrowID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, escrow)
}

func (h *EscrowHandler) Get(w http.ResponseWriter, r *http.Request) {
	escrowID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	escrow, txns, err := h.escrowSvc.Get(r.Context(), escrowID)
	if err != nil {
		respondError(w, err)
		return
	}
	// Escrow details are visible only to the engaged parties.
	userID := userIDFrom(r)
	if escrow.ClientID != userID && escrow.ConsultantID != userID && !isAdmin(r) {
		respondError(w, domain.ErrNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"escrow":       escrow,
		"transactions": txns,
	})
}

func (h *EscrowHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["reference"]

	escrow, txns, err := h.escrowSvc.GetByReference(r.Context(), reference)
	if err != nil {
		respondError(w, err)
		return
	}
	userID := userIDFrom(r)
	if escrow.ClientID != userID && escrow.ConsultantID != userID && !isAdmin(r) {
		respondError(w, domain.ErrNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"escrow":       escrow,
		"transactions": txns,
	})
}

func (h *EscrowHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	escrowID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	escrow, err := h.escrowSvc.Cancel(r.Context(), userIDFrom(r), escrowID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, escrow)
}

func (h *EscrowHandler) Dispute(w http.ResponseWriter, r *http.Request) {
	escrowID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	escrow, err := h.escrowSvc.Dispute(r.Context(), userIDFrom(r), escrowID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, escrow)
}

func (h *EscrowHandler) ListAsClient(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	escrows, total, err := h.escrowSvc.ListForClient(r.Context(), userIDFrom(r), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, escrows, page, pageSize, total)
}

func (h *EscrowHandler) ListAsConsultant(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	escrows, total, err := h.escrowSvc.ListForConsultant(r.Context(), userIDFrom(r), page, pageSize)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, escrows, page, pageSize, total)
}

// Admin operations below. Hold, release and refund are deliberate platform
// decisions, not self-service actions.

func (h *EscrowHandler) Hold(w http.ResponseWriter, r *http.Request) {
	escrowID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	escrow, err := h.escrowSvc.Hold(r.Context(), escrowID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, escrow)
}

type releaseEscrowRequest struct {
	Note string `json:"note,omitempty"`
}

func (h *EscrowHandler) Release(w http.ResponseWriter, r *http.Request) {
	escrowID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req releaseEscrowRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	escrow, err := h.escrowSvc.Release(r.Context(), escrowID, req.Note)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, escrow)
}

type refundEscrowRequest struct {
	Reason string `json:"reason"`
}

func (h *EscrowHandler) Refund(w http.ResponseWriter, r *http.Request) {
	escrowID, err := pathID(r, "id")
	if err != nil {
		respondError(w, err)
		return
	}

	var req refundEscrowRequest
	if err := decodeBody(r, &req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Reason == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "refund reason is required"})
		return
	}

	escrow, err := h.escrowSvc.Refund(r.Context(), escrowID, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, escrow)
}

func isAdmin(r *http.Request) bool {
	claims := claimsFrom(r)
	return claims != nil && claims.IsAdmin()
}
