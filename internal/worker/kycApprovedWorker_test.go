package worker

import (
	"io"
	"log/slog"
	"testing"

	"github.com/eloity/tradelimits/internal/limits"
	"github.com/eloity/tradelimits/internal/mocks"
	"github.com/eloity/tradelimits/internal/stream"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestWorker(limitRepo *mocks.MockTradingLimitRepo) *Worker {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(&Worker{
		Limits: limits.New(limitRepo, mocks.NewMockKYCDocumentRepo(), nil, logger),
		Logger: logger,
	})
}

func TestApplyKYCApproval_MovesUserToGrantedTier(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	wk := newTestWorker(limitRepo)

	ok := wk.ApplyKYCApproval(&stream.KYCApprovedEvent{
		UserID:     "u1",
		KYCLevel:   3,
		DocumentID: "doc-1",
	})
	require.True(t, ok)

	limit, found, err := limitRepo.GetByUserID("u1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 3, limit.KYCLevel)
	require.True(t, limit.DailyLimit.Equal(decimal.NewFromInt(100_000)))
	require.True(t, limit.MonthlyLimit.Equal(decimal.NewFromInt(1_000_000)))
}

func TestApplyKYCApproval_RejectsEventWithoutUserID(t *testing.T) {
	limitRepo := mocks.NewMockTradingLimitRepo()
	wk := newTestWorker(limitRepo)

	ok := wk.ApplyKYCApproval(&stream.KYCApprovedEvent{
		KYCLevel:   2,
		DocumentID: "doc-1",
	})
	require.False(t, ok)
	require.Equal(t, 0, limitRepo.Count())
}
