package limits

import (
	"github.com/shopspring/decimal"
)

// Tier couples a KYC level with the trading ceilings it grants.
type Tier struct {
	Level        int
	DailyLimit   decimal.Decimal
	MonthlyLimit decimal.Decimal
}

// The tier table is fixed product configuration, not data. Limits are
// strictly increasing in level.
var tierTable = map[int]Tier{
	0: {Level: 0, DailyLimit: decimal.NewFromInt(1_000), MonthlyLimit: decimal.NewFromInt(10_000)},
	1: {Level: 1, DailyLimit: decimal.NewFromInt(5_000), MonthlyLimit: decimal.NewFromInt(50_000)},
	2: {Level: 2, DailyLimit: decimal.NewFromInt(25_000), MonthlyLimit: decimal.NewFromInt(250_000)},
	3: {Level: 3, DailyLimit: decimal.NewFromInt(100_000), MonthlyLimit: decimal.NewFromInt(1_000_000)},
}

// ResolveTier maps a KYC level to its tier. Any level outside the known
// set degrades to the most restrictive tier instead of failing, callers
// may pass levels the table has never heard of.
func ResolveTier(level int) Tier {
	tier, ok := tierTable[level]
	if !ok {
		return tierTable[0]
	}

	return tier
}
