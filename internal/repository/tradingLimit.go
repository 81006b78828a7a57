package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eloity/tradelimits/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type TradingLimitRepository interface {
	GetByUserID(userID string) (*models.TradingLimit, bool, error)
	InsertDefault(userID string, dailyLimit, monthlyLimit decimal.Decimal) (*models.TradingLimit, error)
	Upsert(userID string, kycLevel int, dailyLimit, monthlyLimit decimal.Decimal) error
	RecordVolume(userID string, amount decimal.Decimal) (bool, error)
}

type TradingLimitRepositoryImpl struct {
	db *sqlx.DB
}

func NewTradingLimitRepository(db *sqlx.DB) TradingLimitRepository {
	return &TradingLimitRepositoryImpl{db: db}
}

const tradingLimitColumns = `
	id,
	user_id,
	kyc_level,
	daily_limit,
	monthly_limit,
	current_daily_volume,
	current_monthly_volume,
	daily_window_start,
	monthly_window_start,
	updated_at
`

func (repo *TradingLimitRepositoryImpl) GetByUserID(userID string) (*models.TradingLimit, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var limit models.TradingLimit
	query := `SELECT ` + tradingLimitColumns + ` FROM trading_limits WHERE user_id = $1 LIMIT 1;`

	err := repo.db.GetContext(ctx, &limit, query, userID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	return &limit, true, nil
}

// InsertDefault creates the tier-0 row for a user. The insert ignores a
// conflicting existing row and re-reads it instead, so two concurrent
// first-time readers converge on the same record.
func (repo *TradingLimitRepositoryImpl) InsertDefault(userID string, dailyLimit, monthlyLimit decimal.Decimal) (*models.TradingLimit, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var limit models.TradingLimit
	query := `
		INSERT INTO trading_limits (user_id, kyc_level, daily_limit, monthly_limit)
		VALUES ($1, 0, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING ` + tradingLimitColumns + `;`

	err := repo.db.GetContext(ctx, &limit, query, userID, dailyLimit, monthlyLimit)

	if errors.Is(err, sql.ErrNoRows) {
		// Another caller created the row first, return theirs.
		existing, found, err := repo.GetByUserID(userID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, sql.ErrNoRows
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}

	return &limit, nil
}

// Upsert replaces the tier fields of the user's row, creating it when
// absent. The volume accumulators and their windows are left untouched.
func (repo *TradingLimitRepositoryImpl) Upsert(userID string, kycLevel int, dailyLimit, monthlyLimit decimal.Decimal) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		INSERT INTO trading_limits (user_id, kyc_level, daily_limit, monthly_limit, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE
		SET
			kyc_level = EXCLUDED.kyc_level,
			daily_limit = EXCLUDED.daily_limit,
			monthly_limit = EXCLUDED.monthly_limit,
			updated_at = now();`

	_, err := repo.db.ExecContext(ctx, query, userID, kycLevel, dailyLimit, monthlyLimit)
	if err != nil {
		return err
	}

	return nil
}

// RecordVolume adds a traded amount to both accumulators. An accumulator
// whose window has rolled over since the last trade is restarted at the
// amount rather than incremented. Windows are tracked in their own columns
// because updated_at also moves on tier changes.
func (repo *TradingLimitRepositoryImpl) RecordVolume(userID string, amount decimal.Decimal) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE trading_limits
		SET
			current_daily_volume = CASE
				WHEN daily_window_start = (now() AT TIME ZONE 'utc')::date
				THEN current_daily_volume + $2
				ELSE $2
			END,
			daily_window_start = (now() AT TIME ZONE 'utc')::date,
			current_monthly_volume = CASE
				WHEN monthly_window_start = (date_trunc('month', now() AT TIME ZONE 'utc'))::date
				THEN current_monthly_volume + $2
				ELSE $2
			END,
			monthly_window_start = (date_trunc('month', now() AT TIME ZONE 'utc'))::date
		WHERE user_id = $1;`

	result, err := repo.db.ExecContext(ctx, query, userID, amount)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
