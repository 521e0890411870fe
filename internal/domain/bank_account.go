package domain

import (
	"strings"
	"time"
)

// BankAccount is a payout destination. Only verified accounts may back a
// withdrawal; at most one account per user is primary.
type BankAccount struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	IBAN       string     `json:"iban"`
	HolderName string     `json:"holder_name"`
	BankName   string     `json:"bank_name,omitempty"`
	IsVerified bool       `json:"is_verified"`
	IsPrimary  bool       `json:"is_primary"`
	VerifiedBy *int64     `json:"verified_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

// NormalizeIBAN strips spaces and uppercases so that equality checks and
// the per-user uniqueness constraint see one canonical form.
func NormalizeIBAN(iban string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(iban), " ", ""))
}
