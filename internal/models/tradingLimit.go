package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradingLimit is the single per-user record tying a KYC level to the
// trading ceilings it grants. The volume accumulators track usage within
// the current UTC day/month window; the window-start columns mark which
// window each accumulator belongs to.
type TradingLimit struct {
	ID                   string          `db:"id"`
	UserID               string          `db:"user_id"`
	KYCLevel             int             `db:"kyc_level"`
	DailyLimit           decimal.Decimal `db:"daily_limit"`
	MonthlyLimit         decimal.Decimal `db:"monthly_limit"`
	CurrentDailyVolume   decimal.Decimal `db:"current_daily_volume"`
	CurrentMonthlyVolume decimal.Decimal `db:"current_monthly_volume"`
	DailyWindowStart     time.Time       `db:"daily_window_start"`
	MonthlyWindowStart   time.Time       `db:"monthly_window_start"`
	UpdatedAt            time.Time       `db:"updated_at"`
}
