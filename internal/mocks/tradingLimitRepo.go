package mocks

import (
	"fmt"
	"sync"
	"time"

	"github.com/eloity/tradelimits/internal/models"
	"github.com/shopspring/decimal"
)

// MockTradingLimitRepo is an in-memory stand-in for the Postgres
// repository. FailWith makes every call fail, for exercising the
// degraded paths.
type MockTradingLimitRepo struct {
	mu       sync.Mutex
	rows     map[string]*models.TradingLimit
	nextID   int
	FailWith error
}

func NewMockTradingLimitRepo() *MockTradingLimitRepo {
	return &MockTradingLimitRepo{
		rows: make(map[string]*models.TradingLimit),
	}
}

func (m *MockTradingLimitRepo) GetByUserID(userID string) (*models.TradingLimit, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return nil, false, m.FailWith
	}

	row, ok := m.rows[userID]
	if !ok {
		return nil, false, nil
	}

	copied := *row
	return &copied, true, nil
}

func (m *MockTradingLimitRepo) InsertDefault(userID string, dailyLimit, monthlyLimit decimal.Decimal) (*models.TradingLimit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return nil, m.FailWith
	}

	// conflict-ignore, an existing row wins
	if row, ok := m.rows[userID]; ok {
		copied := *row
		return &copied, nil
	}

	m.nextID++
	now := time.Now().UTC()
	row := &models.TradingLimit{
		ID:                   fmt.Sprintf("limit-%d", m.nextID),
		UserID:               userID,
		KYCLevel:             0,
		DailyLimit:           dailyLimit,
		MonthlyLimit:         monthlyLimit,
		CurrentDailyVolume:   decimal.Zero,
		CurrentMonthlyVolume: decimal.Zero,
		DailyWindowStart:     now.Truncate(24 * time.Hour),
		MonthlyWindowStart:   time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:            now,
	}
	m.rows[userID] = row

	copied := *row
	return &copied, nil
}

func (m *MockTradingLimitRepo) Upsert(userID string, kycLevel int, dailyLimit, monthlyLimit decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}

	now := time.Now().UTC()

	row, ok := m.rows[userID]
	if !ok {
		m.nextID++
		row = &models.TradingLimit{
			ID:                   fmt.Sprintf("limit-%d", m.nextID),
			UserID:               userID,
			CurrentDailyVolume:   decimal.Zero,
			CurrentMonthlyVolume: decimal.Zero,
			DailyWindowStart:     now.Truncate(24 * time.Hour),
			MonthlyWindowStart:   time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC),
		}
		m.rows[userID] = row
	}

	row.KYCLevel = kycLevel
	row.DailyLimit = dailyLimit
	row.MonthlyLimit = monthlyLimit
	row.UpdatedAt = now

	return nil
}

func (m *MockTradingLimitRepo) RecordVolume(userID string, amount decimal.Decimal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return false, m.FailWith
	}

	row, ok := m.rows[userID]
	if !ok {
		return false, nil
	}

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	if row.DailyWindowStart.Equal(today) {
		row.CurrentDailyVolume = row.CurrentDailyVolume.Add(amount)
	} else {
		row.CurrentDailyVolume = amount
	}
	row.DailyWindowStart = today

	if row.MonthlyWindowStart.Equal(thisMonth) {
		row.CurrentMonthlyVolume = row.CurrentMonthlyVolume.Add(amount)
	} else {
		row.CurrentMonthlyVolume = amount
	}
	row.MonthlyWindowStart = thisMonth

	return true, nil
}

// Seed installs a row directly, bypassing the repository operations.
func (m *MockTradingLimitRepo) Seed(row *models.TradingLimit) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *row
	m.rows[row.UserID] = &copied
}

// Count reports how many rows exist.
func (m *MockTradingLimitRepo) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.rows)
}
