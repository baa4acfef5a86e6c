package model

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestNewEnvelopeDefaults(t *testing.T) {
	envelope, err := NewEnvelope(EventProspectCreated, "admissions-back", "prospect/"+uuid.NewString(), map[string]string{"email": "p@example.com"})
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}

	if envelope.EventID == uuid.Nil {
		t.Error("event id not assigned")
	}

	if envelope.SchemaVersion != SchemaVersion {
		t.Errorf("expected schema version %d, got %d", SchemaVersion, envelope.SchemaVersion)
	}

	if envelope.OccurredAt.IsZero() {
		t.Error("occurrence time not assigned")
	}

	if envelope.CorrelationID != envelope.EventID.String() {
		t.Errorf("fresh envelope must correlate to itself, got %q", envelope.CorrelationID)
	}
}

func TestNewEnvelopeCarriesCausality(t *testing.T) {
	parent, err := NewEnvelope(EventProspectCreated, "admissions-back", "prospect/"+uuid.NewString(), struct{}{})
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}

	child, err := NewEnvelope(
		EventStudentCreated,
		"admissions-back",
		"student/"+uuid.NewString(),
		struct{}{},
		WithCorrelationID(parent.CorrelationID),
		WithCausationID(parent.EventID.String()),
	)
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}

	if child.CorrelationID != parent.CorrelationID {
		t.Error("correlation id not propagated")
	}

	if child.CausationID != parent.EventID.String() {
		t.Error("causation id not set to the parent event")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	envelope, err := NewEnvelope(EventInstructorUpdated, "admissions-back", "instructor/"+uuid.NewString(), map[string]string{"status": "active"})
	if err != nil {
		t.Fatalf("NewEnvelope failed: %v", err)
	}

	payload, err := envelope.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded EventEnvelope
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if decoded.EventID != envelope.EventID || decoded.EventType != envelope.EventType || decoded.Subject != envelope.Subject {
		t.Errorf("round trip lost fields: %+v", decoded)
	}
}
