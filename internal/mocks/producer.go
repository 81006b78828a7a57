package mocks

import (
	"sync"
)

type ProducedMessage struct {
	Topic   string
	Message string
}

// MockProducer records produced messages instead of talking to Kafka.
type MockProducer struct {
	mu       sync.Mutex
	Messages []ProducedMessage
	FailWith error
}

func (m *MockProducer) ProduceMessage(topic, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}

	m.Messages = append(m.Messages, ProducedMessage{Topic: topic, Message: message})
	return nil
}

func (m *MockProducer) Produced() []ProducedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]ProducedMessage(nil), m.Messages...)
}
