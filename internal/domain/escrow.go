package domain

import "time"

type EscrowStatus string

const (
	EscrowStatusPending   EscrowStatus = "PENDING"
	EscrowStatusFunded    EscrowStatus = "FUNDED"
	EscrowStatusHeld      EscrowStatus = "HELD"
	EscrowStatusReleased  EscrowStatus = "RELEASED"
	EscrowStatusRefunded  EscrowStatus = "REFUNDED"
	EscrowStatusDisputed  EscrowStatus = "DISPUTED"
	EscrowStatusCancelled EscrowStatus = "CANCELLED"
)

// Escrow holds client funds earmarked for one project engagement.
// ConsultantAmount = Amount - PlatformFee is fixed at creation and never
// renegotiated after funding. Released, refunded and cancelled are terminal.
type Escrow struct {
	ID               int64        `json:"id"`
	ReferenceNumber  string       `json:"reference_number"`
	ClientID         int64        `json:"client_id"`
	ConsultantID     int64        `json:"consultant_id"`
	ProjectID        int64        `json:"project_id"`
	Amount           int64        `json:"amount"`
	PlatformFee      int64        `json:"platform_fee"`
	ConsultantAmount int64        `json:"consultant_amount"`
	Currency         string       `json:"currency"`
	Status           EscrowStatus `json:"status"`
	Note             string       `json:"note,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	FundedAt         *time.Time   `json:"funded_at,omitempty"`
	ReleasedAt       *time.Time   `json:"released_at,omitempty"`
	RefundedAt       *time.Time   `json:"refunded_at,omitempty"`
}

// CanFund reports whether the escrow can transition to FUNDED.
func (e *Escrow) CanFund() bool {
	return e.Status == EscrowStatusPending
}

// CanHold reports whether the escrow can transition to HELD.
func (e *Escrow) CanHold() bool {
	return e.Status == EscrowStatusFunded || e.Status == EscrowStatusDisputed
}

// CanRelease reports whether funds may be released to the consultant.
// A disputed escrow is releasable only through dispute resolution, which
// re-enters via the same transition.
func (e *Escrow) CanRelease() bool {
	switch e.Status {
	case EscrowStatusFunded, EscrowStatusHeld, EscrowStatusDisputed:
		return true
	}
	return false
}

// CanRefund reports whether funds may be refunded to the client.
func (e *Escrow) CanRefund() bool {
	switch e.Status {
	case EscrowStatusFunded, EscrowStatusHeld, EscrowStatusDisputed:
		return true
	}
	return false
}

// CanDispute reports whether the dispute workflow may take over.
func (e *Escrow) CanDispute() bool {
	return e.Status == EscrowStatusFunded || e.Status == EscrowStatusHeld
}

// IsTerminal reports whether no further transitions are possible.
func (e *Escrow) IsTerminal() bool {
	switch e.Status {
	case EscrowStatusReleased, EscrowStatusRefunded, EscrowStatusCancelled:
		return true
	}
	return false
}
