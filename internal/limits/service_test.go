package limits

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/eloity/tradelimits/internal/mocks"
	"github.com/eloity/tradelimits/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestService(limitRepo *mocks.MockTradingLimitRepo, docRepo *mocks.MockKYCDocumentRepo, cache Cache) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(limitRepo, docRepo, cache, logger)
}

func TestGetUserTradingLimits_CreatesDefaultForNewUser(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	svc := newTestService(limitRepo, mocks.NewMockKYCDocumentRepo(), nil)

	limit := svc.GetUserTradingLimits("new-user")

	require.NotNil(t, limit)
	require.Equal(t, "new-user", limit.UserID)
	require.Equal(t, 0, limit.KYCLevel)
	require.True(t, limit.DailyLimit.Equal(decimal.NewFromInt(1_000)))
	require.True(t, limit.MonthlyLimit.Equal(decimal.NewFromInt(10_000)))
	require.True(t, limit.CurrentDailyVolume.IsZero())
	require.True(t, limit.CurrentMonthlyVolume.IsZero())

	// exactly one row was persisted
	require.Equal(t, 1, limitRepo.Count())
}

func TestGetUserTradingLimits_ReturnsExistingRowUnmodified(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	existing := &models.TradingLimit{
		ID:                   "limit-1",
		UserID:               "u1",
		KYCLevel:             2,
		DailyLimit:           decimal.NewFromInt(25_000),
		MonthlyLimit:         decimal.NewFromInt(250_000),
		CurrentDailyVolume:   decimal.NewFromInt(300),
		CurrentMonthlyVolume: decimal.NewFromInt(4_000),
	}
	limitRepo.Seed(existing)

	svc := newTestService(limitRepo, mocks.NewMockKYCDocumentRepo(), nil)

	limit := svc.GetUserTradingLimits("u1")

	require.NotNil(t, limit)
	require.Equal(t, existing.KYCLevel, limit.KYCLevel)
	require.True(t, limit.DailyLimit.Equal(existing.DailyLimit))
	require.True(t, limit.CurrentDailyVolume.Equal(existing.CurrentDailyVolume))
	require.True(t, limit.CurrentMonthlyVolume.Equal(existing.CurrentMonthlyVolume))
	require.Equal(t, 1, limitRepo.Count())
}

func TestGetUserTradingLimits_StoreErrorDoesNotCreateDefault(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	limitRepo.FailWith = errors.New("connection refused")

	svc := newTestService(limitRepo, mocks.NewMockKYCDocumentRepo(), nil)

	limit := svc.GetUserTradingLimits("u1")

	// a store failure must not be mistaken for a new user
	require.Nil(t, limit)

	limitRepo.FailWith = nil
	require.Equal(t, 0, limitRepo.Count())
}

func TestUpdateTradingLimits_PersistsTierValues(t *testing.T) {
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
		limitRepo := mocks.NewMockTradingLimitRepo()
		svc := newTestService(limitRepo, mocks.NewMockKYCDocumentRepo(), nil)

		ok := svc.UpdateTradingLimits("u1", tc.level)
		require.True(t, ok)

		limit, found, err := limitRepo.GetByUserID("u1")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, tc.level, limit.KYCLevel)
		require.True(t, limit.DailyLimit.Equal(decimal.NewFromInt(tc.dailyLimit)))
		require.True(t, limit.MonthlyLimit.Equal(decimal.NewFromInt(tc.monthlyLimit)))
	}
}

func TestUpdateTradingLimits_UnknownLevelPersistsTierZero(t *testing.T) {
	for _, level := range []int{-1, 4, 99} {
		limitRepo := mocks.NewMockTradingLimitRepo()
		svc := newTestService(limitRepo, mocks.NewMockKYCDocumentRepo(), nil)

		ok := svc.UpdateTradingLimits("u1", level)
		require.True(t, ok)

		limit, found, err := limitRepo.GetByUserID("u1")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, 0, limit.KYCLevel)
		require.True(t, limit.DailyLimit.Equal(decimal.NewFromInt(1_000)))
		require.True(t, limit.MonthlyLimit.Equal(decimal.NewFromInt(10_000)))
	}
}

func TestUpdateTradingLimits_DoesNotTouchVolumeAccumulators(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	limitRepo.Seed(&models.TradingLimit{
		ID:                   "limit-1",
		UserID:               "u1",
		KYCLevel:             1,
		DailyLimit:           decimal.NewFromInt(5_000),
		MonthlyLimit:         decimal.NewFromInt(50_000),
		CurrentDailyVolume:   decimal.NewFromInt(750),
		CurrentMonthlyVolume: decimal.NewFromInt(9_900),
	})

	svc := newTestService(limitRepo, mocks.NewMockKYCDocumentRepo(), nil)

	ok := svc.UpdateTradingLimits("u1", 3)
	require.True(t, ok)

	limit, _, err := limitRepo.GetByUserID("u1")
	require.NoError(t, err)
	require.Equal(t, 3, limit.KYCLevel)

	// an upgrade does not hand back spent headroom
	require.True(t, limit.CurrentDailyVolume.Equal(decimal.NewFromInt(750)))
	require.True(t, limit.CurrentMonthlyVolume.Equal(decimal.NewFromInt(9_900)))
}

func TestUpdateThenGet_ReturnsNewTier(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	svc := newTestService(limitRepo, mocks.NewMockKYCDocumentRepo(), nil)

	ok := svc.UpdateTradingLimits("u1", 2)
	require.True(t, ok)

	limit := svc.GetUserTradingLimits("u1")
	require.NotNil(t, limit)
	require.Equal(t, 2, limit.KYCLevel)
	require.True(t, limit.DailyLimit.Equal(decimal.NewFromInt(25_000)))
	require.True(t, limit.MonthlyLimit.Equal(decimal.NewFromInt(250_000)))
}

func TestUpdateTradingLimits_InvalidatesCachedRow(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	mockCache := mocks.NewMockCache()
	svc := newTestService(limitRepo, mocks.NewMockKYCDocumentRepo(), mockCache)

	limit := svc.GetUserTradingLimits("u1")
	require.NotNil(t, limit)
	require.True(t, mockCache.Has("trading_limits:u1"))

	ok := svc.UpdateTradingLimits("u1", 1)
	require.True(t, ok)
	require.False(t, mockCache.Has("trading_limits:u1"))

	refreshed := svc.GetUserTradingLimits("u1")
	require.NotNil(t, refreshed)
	require.Equal(t, 1, refreshed.KYCLevel)
}

func TestRecordTradeVolume_AccumulatesAndInitializesLazily(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	svc := newTestService(limitRepo, mocks.NewMockKYCDocumentRepo(), nil)

	ok := svc.RecordTradeVolume("u1", decimal.NewFromInt(200))
	require.True(t, ok)

	ok = svc.RecordTradeVolume("u1", decimal.NewFromInt(50))
	require.True(t, ok)

	limit, found, err := limitRepo.GetByUserID("u1")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, limit.CurrentDailyVolume.Equal(decimal.NewFromInt(250)))
	require.True(t, limit.CurrentMonthlyVolume.Equal(decimal.NewFromInt(250)))
}

func TestRecordTradeVolume_RejectsNonPositiveAmounts(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	svc := newTestService(limitRepo, mocks.NewMockKYCDocumentRepo(), nil)

	require.False(t, svc.RecordTradeVolume("u1", decimal.Zero))
	require.False(t, svc.RecordTradeVolume("u1", decimal.NewFromInt(-10)))
	require.Equal(t, 0, limitRepo.Count())
}

func TestCanTrade_WithinLimits(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	svc := newTestService(limitRepo, mocks.NewMockKYCDocumentRepo(), nil)

	allowed, reason := svc.CanTrade("u1", decimal.NewFromInt(999))
	require.True(t, allowed)
	require.Empty(t, reason)
}

func TestCanTrade_DailyLimitExceeded(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	svc := newTestService(limitRepo, mocks.NewMockKYCDocumentRepo(), nil)

	require.True(t, svc.RecordTradeVolume("u1", decimal.NewFromInt(900)))

	allowed, reason := svc.CanTrade("u1", decimal.NewFromInt(200))
	require.False(t, allowed)
	require.Contains(t, reason, "daily")
}

func TestCanTrade_MonthlyLimitExceeded(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	limitRepo.Seed(&models.TradingLimit{
		ID:                   "limit-1",
		UserID:               "u1",
		KYCLevel:             1,
		DailyLimit:           decimal.NewFromInt(5_000),
		MonthlyLimit:         decimal.NewFromInt(50_000),
		CurrentDailyVolume:   decimal.NewFromInt(100),
		CurrentMonthlyVolume: decimal.NewFromInt(49_950),
		DailyWindowStart:     todayUTC(),
		MonthlyWindowStart:   monthStartUTC(),
	})

	svc := newTestService(limitRepo, mocks.NewMockKYCDocumentRepo(), nil)

	allowed, reason := svc.CanTrade("u1", decimal.NewFromInt(100))
	require.False(t, allowed)
	require.Contains(t, reason, "monthly")
}

func TestEffectiveVolumes_StaleWindowsCountAsZero(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	limit := &models.TradingLimit{
		CurrentDailyVolume:   decimal.NewFromInt(800),
		CurrentMonthlyVolume: decimal.NewFromInt(6_000),
		DailyWindowStart:     time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
		MonthlyWindowStart:   time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC),
	}

	daily, monthly := EffectiveVolumes(limit, now)
	require.True(t, daily.IsZero())
	require.True(t, monthly.IsZero())
}

func TestEffectiveVolumes_CurrentWindowsAreCounted(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	limit := &models.TradingLimit{
		CurrentDailyVolume:   decimal.NewFromInt(800),
		CurrentMonthlyVolume: decimal.NewFromInt(6_000),
		DailyWindowStart:     time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		MonthlyWindowStart:   time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
	}

	daily, monthly := EffectiveVolumes(limit, now)
	require.True(t, daily.Equal(decimal.NewFromInt(800)))
	require.True(t, monthly.Equal(decimal.NewFromInt(6_000)))
}

func TestUploadKYCDocument_ReturnsPersistedRow(t *testing.T) {
	docRepo := mocks.NewMockKYCDocumentRepo()
	svc := newTestService(mocks.NewMockTradingLimitRepo(), docRepo, nil)

	document := svc.UploadKYCDocument(&models.KYCDocument{
		UserID:       "u1",
		DocumentType: "passport",
		DocumentURL:  "https://files.example.org/passport.png",
	})

	require.NotNil(t, document)
	require.NotEmpty(t, document.ID)
	require.False(t, document.CreatedAt.IsZero())
	require.Equal(t, "pending", document.VerificationStatus)
}

func TestUploadKYCDocument_NilOnStoreFailure(t *testing.T) {
	docRepo := mocks.NewMockKYCDocumentRepo()
	docRepo.FailWith = errors.New("connection refused")
	svc := newTestService(mocks.NewMockTradingLimitRepo(), docRepo, nil)

	document := svc.UploadKYCDocument(&models.KYCDocument{UserID: "u1", DocumentType: "passport"})
	require.Nil(t, document)
}

func TestGetUserKYCDocuments_NewestFirst(t *testing.T) {
	docRepo := mocks.NewMockKYCDocumentRepo()
	svc := newTestService(mocks.NewMockTradingLimitRepo(), docRepo, nil)

	for _, docType := range []string{"passport", "utility_bill", "bank_statement"} {
		inserted := svc.UploadKYCDocument(&models.KYCDocument{UserID: "u1", DocumentType: docType})
		require.NotNil(t, inserted)
	}

	documents := svc.GetUserKYCDocuments("u1")
	require.Len(t, documents, 3)
	require.Equal(t, "bank_statement", documents[0].DocumentType)
	require.Equal(t, "utility_bill", documents[1].DocumentType)
	require.Equal(t, "passport", documents[2].DocumentType)

	for i := 1; i < len(documents); i++ {
		require.False(t, documents[i].CreatedAt.After(documents[i-1].CreatedAt))
	}
}

func TestGetUserKYCDocuments_EmptySliceOnFailure(t *testing.T) {
	docRepo := mocks.NewMockKYCDocumentRepo()
	docRepo.FailWith = errors.New("connection refused")
	svc := newTestService(mocks.NewMockTradingLimitRepo(), docRepo, nil)

	documents := svc.GetUserKYCDocuments("u1")
	require.NotNil(t, documents)
	require.Empty(t, documents)
}

func todayUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func monthStartUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
