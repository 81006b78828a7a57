package limits

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestResolveTier_KnownLevels(t *testing.T) {
	tests := []struct {
		level        int
		dailyLimit   int64
		monthlyLimit int64
	}{
		{level: 0, dailyLimit: 1_000, monthlyLimit: 10_000},
		{level: 1, dailyLimit: 5_000, monthlyLimit: 50_000},
		{level: 2, dailyLimit: 25_000, monthlyLimit: 250_000},
		{level: 3, dailyLimit: 100_000, monthlyLimit: 1_000_000},
	}

	for _, tc := range tests {
		tier := ResolveTier(tc.level)

		require.Equal(t, tc.level, tier.Level)
		require.True(t, tier.DailyLimit.Equal(decimal.NewFromInt(tc.dailyLimit)))
		require.True(t, tier.MonthlyLimit.Equal(decimal.NewFromInt(tc.monthlyLimit)))
	}
}

func TestResolveTier_UnknownLevelFallsBackToTierZero(t *testing.T) {
	for _, level := range []int{-1, 4, 99} {
		tier := ResolveTier(level)

		require.Equal(t, 0, tier.Level)
		require.True(t, tier.DailyLimit.Equal(decimal.NewFromInt(1_000)))
		require.True(t, tier.MonthlyLimit.Equal(decimal.NewFromInt(10_000)))
	}
}

func TestTierTable_LimitsStrictlyIncrease(t *testing.T) {
	for level := 1; level <= 3; level++ {
		lower := ResolveTier(level - 1)
		higher := ResolveTier(level)

		require.True(t, higher.DailyLimit.GreaterThan(lower.DailyLimit))
		require.True(t, higher.MonthlyLimit.GreaterThan(lower.MonthlyLimit))
	}
}
