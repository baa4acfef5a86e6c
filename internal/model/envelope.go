package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const SchemaVersion = 1

// EventEnvelope is the wire wrapper around every domain event. Immutable once
// constructed: mutating a published envelope breaks the causality chain.
type EventEnvelope struct {
	EventID       uuid.UUID       `json:"eventId"`
	EventType     string          `json:"eventType"`
	SchemaVersion int             `json:"schemaVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlationId"`
	CausationID   string          `json:"causationId"`
	Subject       string          `json:"subject"`
	Data          json.RawMessage `json:"data"`
}

type EnvelopeOption func(e *EventEnvelope)

func WithCorrelationID(id string) EnvelopeOption {
	return func(e *EventEnvelope) {
		e.CorrelationID = id
	}
}

func WithCausationID(id string) EnvelopeOption {
	return func(e *EventEnvelope) {
		e.CausationID = id
	}
}

func NewEnvelope(eventType, producer, subject string, data any, opts ...EnvelopeOption) (*EventEnvelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event data: %w", err)
	}

	envelope := &EventEnvelope{
		EventID:       uuid.New(),
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		Subject:       subject,
		Data:          payload,
	}

	for _, opt := range opts {
		opt(envelope)
	}

	if envelope.CorrelationID == "" {
		envelope.CorrelationID = envelope.EventID.String()
	}

	return envelope, nil
}

func (e *EventEnvelope) Encode() ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	return payload, nil
}
