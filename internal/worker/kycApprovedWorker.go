package worker

import (
	"encoding/json"
	"log"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/eloity/tradelimits/internal/stream"
)

// KYCApprovedWorker consumes review approvals and moves the user's
// trading limits to the granted tier. A successful tier change is
// announced on the limits.updated topic.
func (wk *Worker) KYCApprovedWorker() {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: kycApprovedGroupID,
		Topic:   stream.KYCApprovedTopic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}

	for {
		event := consumer.Poll(100) // Poll every 100ms
		switch e := event.(type) {
		case *kafka.Message:
			log.Printf("KYC approval received on %s: %s\n", e.TopicPartition, string(e.Value))

			var approval stream.KYCApprovedEvent
			if err := json.Unmarshal(e.Value, &approval); err != nil {
				wk.Logger.Error("malformed kyc.approved event", "error", err)
				continue
			}

			success := wk.ApplyKYCApproval(&approval)
			if success {
				wk.announceLimitsUpdated(&approval)
			}
		case kafka.Error:
			log.Printf("Error: %v\n", e)
		default:
			// Handle other events if needed
		}
	}
}

// ApplyKYCApproval applies the granted tier. Unknown levels are not
// rejected here, the tier table degrades them to tier 0.
func (wk *Worker) ApplyKYCApproval(approval *stream.KYCApprovedEvent) bool {
	if approval.UserID == "" {
		wk.Logger.Error("kyc.approved event without user id", "document_id", approval.DocumentID)
		return false
	}

	return wk.Limits.UpdateTradingLimits(approval.UserID, approval.KYCLevel)
}

func (wk *Worker) announceLimitsUpdated(approval *stream.KYCApprovedEvent) {
	event := &stream.LimitsUpdatedEvent{
		UserID:    approval.UserID,
		KYCLevel:  approval.KYCLevel,
		AppliedAt: time.Now().UTC(),
	}

	jsonMessage, err := json.Marshal(event)
	if err != nil {
		wk.Logger.Error("marshalling limits.updated event", "error", err)
		return
	}

	if err := wk.KafkaStream.ProduceMessage(stream.LimitsUpdatedTopic, string(jsonMessage)); err != nil {
		wk.Logger.Error("producing limits.updated event", "error", err)
	}
}
