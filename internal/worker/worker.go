package worker

import (
	"log/slog"

	"github.com/eloity/tradelimits/internal/limits"
	"github.com/eloity/tradelimits/internal/stream"
)

type Worker struct {
	KafkaStream *stream.KafkaStream
	Limits      *limits.Service
	Logger      *slog.Logger
}

const (
	// kycApprovedGroupID is used for workers that apply tier changes whenever
	// a reviewer grants a user a new KYC level
	kycApprovedGroupID = "kyc-approved-group"

	// tradeSettledGroupID is used for workers that fold settled trade amounts
	// into the volume accumulators
	tradeSettledGroupID = "trade-settled-group"
)

// Our workers typically need access to the limits service and kafka event stream
// worker-specific dependencies can be passed as argument to the worker
func New(wk *Worker) *Worker {
	return &Worker{
		KafkaStream: wk.KafkaStream,
		Limits:      wk.Limits,
		Logger:      wk.Logger,
	}
}
