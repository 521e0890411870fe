package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePlatformFee(t *testing.T) {
	tests := []struct {
		name     string
		amount   int64
		feeBps   int64
		expected int64
	}{
		{"10% of 1000", 100000, 1000, 10000},
		{"2.5% of 200 SAR", 20000, 250, 500},
		{"zero fee rate", 100000, 0, 0},
		{"zero amount", 0, 1000, 0},
		{"rounds down", 999, 1000, 99}, // 99.9 -> 99
		{"full rate", 5000, 10000, 5000},
		{"one halala amount", 1, 250, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, err := CalculatePlatformFee(tt.amount, tt.feeBps)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, fee)
		})
	}

	t.Run("Negative amount", func(t *testing.T) {
		_, err := CalculatePlatformFee(-1, 1000)
		assert.Error(t, err)
	})

	t.Run("Rate above 100 percent", func(t *testing.T) {
		_, err := CalculatePlatformFee(1000, 10001)
		assert.Error(t, err)
	})
}

func TestSplitEscrowAmount(t *testing.T) {
	t.Run("Fee plus share equals amount", func(t *testing.T) {
		for _, amount := range []int64{1, 99, 100, 999, 100000, 123457} {
			fee, share, err := SplitEscrowAmount(amount, 250)
			assert.NoError(t, err)
			assert.Equal(t, amount, fee+share)
			assert.GreaterOrEqual(t, fee, int64(0))
			assert.GreaterOrEqual(t, share, int64(0))
		}
	})

	t.Run("1000.00 with 10 percent fee", func(t *testing.T) {
		fee, share, err := SplitEscrowAmount(100000, 1000)
		assert.NoError(t, err)
		assert.Equal(t, int64(10000), fee)
		assert.Equal(t, int64(90000), share)
	})
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "200.50 SAR", FormatAmount(20050, "SAR"))
	assert.Equal(t, "0.05 SAR", FormatAmount(5, "SAR"))
	assert.Equal(t, "-12.00 SAR", FormatAmount(-1200, "SAR"))
}

func TestNewReferenceNumber(t *testing.T) {
	ref := NewReferenceNumber("DEP")
	assert.True(t, strings.HasPrefix(ref, "DEP-"))
	assert.Len(t, ref, 16)
	assert.NotEqual(t, ref, NewReferenceNumber("DEP"))
}
