package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// All monetary amounts in the system are int64 minor units (halalas for
// SAR). Fees are computed in integer basis points so no floating point is
// ever involved.

const BasisPointDivisor = 10000

// CalculatePlatformFee returns the platform fee for an escrow amount at the
// given rate in basis points (250 = 2.5%). The fee is rounded down, so the
// consultant share is never under-credited by rounding, and is capped at
// the amount itself.
func CalculatePlatformFee(amount int64, feeBasisPoints int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("amount must not be negative, got %d", amount)
	}
	if feeBasisPoints < 0 || feeBasisPoints > BasisPointDivisor {
		return 0, fmt.Errorf("fee basis points must be between 0 and %d, got %d", BasisPointDivisor, feeBasisPoints)
	}

	fee := amount * feeBasisPoints / BasisPointDivisor
	if fee > amount {
		fee = amount
	}
	return fee, nil
}

// SplitEscrowAmount returns (platformFee, consultantAmount) for an escrow of
// the given amount. consultantAmount + platformFee == amount always holds.
func SplitEscrowAmount(amount int64, feeBasisPoints int64) (int64, int64, error) {
	fee, err := CalculatePlatformFee(amount, feeBasisPoints)
	if err != nil {
		return 0, 0, err
	}
	return fee, amount - fee, nil
}

// FormatAmount renders minor units as a decimal string, e.g. 20050 -> "200.50".
func FormatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, currency)
}

// NewReferenceNumber generates a unique, human-quotable reference such as
// "DEP-1A2B3C4D5E6F". The prefix identifies the entity kind.
func NewReferenceNumber(prefix string) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return fmt.Sprintf("%s-%s", prefix, id[:12])
}
