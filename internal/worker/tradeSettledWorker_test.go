package worker

import (
	"testing"

	"github.com/eloity/tradelimits/internal/mocks"
	"github.com/eloity/tradelimits/internal/stream"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRecordSettledTrade_AccumulatesVolume(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	wk := newTestWorker(limitRepo)

	ok := wk.RecordSettledTrade(&stream.TradeSettledEvent{
		UserID:  "u1",
		TradeID: "trade-1",
		Amount:  "150.50",
	})
	require.True(t, ok)

	limit, found, err := limitRepo.GetByUserID("u1")
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, limit.CurrentDailyVolume.Equal(decimal.RequireFromString("150.50")))
	require.True(t, limit.CurrentMonthlyVolume.Equal(decimal.RequireFromString("150.50")))
}

func TestRecordSettledTrade_RejectsMalformedAmount(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	wk := newTestWorker(limitRepo)

	ok := wk.RecordSettledTrade(&stream.TradeSettledEvent{
		UserID:  "u1",
		TradeID: "trade-1",
		Amount:  "not-a-number",
	})
	require.False(t, ok)
	require.Equal(t, 0, limitRepo.Count())
}

func TestRecordSettledTrade_RejectsNonPositiveAmount(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	wk := newTestWorker(limitRepo)

	ok := wk.RecordSettledTrade(&stream.TradeSettledEvent{
		UserID:  "u1",
		TradeID: "trade-1",
		Amount:  "-25",
	})
	require.False(t, ok)
	require.Equal(t, 0, limitRepo.Count())
}
