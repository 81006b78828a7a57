package stream

import "time"

const (
	// KYCApprovedTopic carries review decisions that grant a user a new
	// KYC level. Produced by the document review endpoint, consumed by the
	// limits worker which applies the matching tier.
	KYCApprovedTopic = "kyc.approved"

	// LimitsUpdatedTopic announces that a user's trading limits changed,
	// for downstream consumers such as the trading engine's risk checks.
	LimitsUpdatedTopic = "limits.updated"

	// TradeSettledTopic carries settled trades from the trading engine.
	// The limits worker folds their amounts into the volume accumulators.
	TradeSettledTopic = "trade.settled"
)

type KYCApprovedEvent struct {
	UserID     string    `json:"user_id"`
	KYCLevel   int       `json:"kyc_level"`
	DocumentID string    `json:"document_id"`
	ApprovedAt time.Time `json:"approved_at"`
}

type LimitsUpdatedEvent struct {
	UserID    string    `json:"user_id"`
	KYCLevel  int       `json:"kyc_level"`
	AppliedAt time.Time `json:"applied_at"`
}

type TradeSettledEvent struct {
	UserID    string    `json:"user_id"`
	TradeID   string    `json:"trade_id"`
	Amount    string    `json:"amount"`
	SettledAt time.Time `json:"settled_at"`
}
