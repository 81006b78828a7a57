package worker

import (
	"encoding/json"
	"log"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/eloity/tradelimits/internal/stream"
	"github.com/shopspring/decimal"
)

// TradeSettledWorker folds settled trade amounts into the volume
// accumulators so limit checks see up-to-date usage.
func (wk *Worker) TradeSettledWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: tradeSettledGroupID,
		Topic:   stream.TradeSettledTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}

	for {
		event := consumer.Poll(100) // Poll every 100ms
		switch e := event.(type) {
		case *kafka.Message:
			var settled stream.TradeSettledEvent
			if err := json.Unmarshal(e.Value, &settled); err != nil {
				wk.Logger.Error("malformed trade.settled event", "error", err)
				continue
			}

			wk.RecordSettledTrade(&settled)
		case kafka.Error:
			log.Printf("Error: %v\n", e)
		default:
			// Handle other events if needed
		}
	}
}

func (wk *Worker) RecordSettledTrade(settled *stream.TradeSettledEvent) bool {
	amount, err := decimal.NewFromString(settled.Amount)
	if err != nil {
		wk.Logger.Error("trade.settled event with bad amount", "trade_id", settled.TradeID, "amount", settled.Amount)
		return false
	}

	return wk.Limits.RecordTradeVolume(settled.UserID, amount)
}
