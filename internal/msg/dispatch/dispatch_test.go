package dispatch

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"admissions-back/internal/model"
)

type recordingConsumer struct {
	name  string
	err   error
	calls int
	log   *[]string
}

func (r *recordingConsumer) Name() string { return r.name }

func (r *recordingConsumer) Handle(_ context.Context, _ *model.EventEnvelope) error {
	r.calls++
	*r.log = append(*r.log, r.name)

	return r.err
}

func testEnvelope(t *testing.T) *model.EventEnvelope {
	t.Helper()

	envelope, err := model.NewEnvelope(model.EventProspectCreated, "test", "prospect/7c9e6679-7425-40de-944b-e07fc1f90ae7", struct{}{})
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}

	return envelope
}

func TestDispatchRunsConsumersInRegistrationOrder(t *testing.T) {
	var log []string

	d := NewDispatcher(zap.NewNop())
	d.Register(&recordingConsumer{name: "projector", log: &log})
	d.RegisterBestEffort(&recordingConsumer{name: "hub", log: &log})
	d.RegisterBestEffort(&recordingConsumer{name: "notifier", log: &log})

	if err := d.Dispatch(context.Background(), testEnvelope(t)); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	want := []string{"projector", "hub", "notifier"}
	for i, name := range want {
		if log[i] != name {
			t.Fatalf("order broken: expected %v, got %v", want, log)
		}
	}
}

func TestDispatchCriticalFailureAborts(t *testing.T) {
	var log []string

	boom := errors.New("projection write failed")
	after := &recordingConsumer{name: "hub", log: &log}

	d := NewDispatcher(zap.NewNop())
	d.Register(&recordingConsumer{name: "projector", err: boom, log: &log})
	d.RegisterBestEffort(after)

	err := d.Dispatch(context.Background(), testEnvelope(t))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped consumer error, got %v", err)
	}

	if after.calls != 0 {
		t.Fatal("consumers after a failed critical one must not run")
	}
}

func TestDispatchBestEffortFailureIsSwallowed(t *testing.T) {
	var log []string

	after := &recordingConsumer{name: "notifier", log: &log}

	d := NewDispatcher(zap.NewNop())
	d.RegisterBestEffort(&recordingConsumer{name: "hub", err: errors.New("client gone"), log: &log})
	d.RegisterBestEffort(after)

	if err := d.Dispatch(context.Background(), testEnvelope(t)); err != nil {
		t.Fatalf("best-effort failure must not surface, got %v", err)
	}

	if after.calls != 1 {
		t.Fatal("consumers after a failed best-effort one must still run")
	}
}
