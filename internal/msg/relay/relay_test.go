package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"admissions-back/internal/model"
	"admissions-back/internal/repository"
	"admissions-back/pkg/pushbus"
)

type fakeOutboxRepo struct {
	batch      []model.OutboxMessage
	published  []uuid.UUID
	deadLetter []model.OutboxMessage
	reasons    []string
}

func (f *fakeOutboxRepo) SelectUnpublishedBatch(_ context.Context, _ repository.RepoExtension, limit int) ([]model.OutboxMessage, error) {
	if limit < len(f.batch) {
		return f.batch[:limit], nil
	}

	return f.batch, nil
}

func (f *fakeOutboxRepo) MarkPublished(_ context.Context, _ repository.RepoExtension, eventID uuid.UUID) error {
	f.published = append(f.published, eventID)

	return nil
}

func (f *fakeOutboxRepo) MoveToDeadLetter(_ context.Context, message model.OutboxMessage, reason string) error {
	f.deadLetter = append(f.deadLetter, message)
	f.reasons = append(f.reasons, reason)

	return nil
}

type fakePublisher struct {
	topics   []string
	payloads [][]byte
	// failures[i] is returned on call i; nil past the end
	failures []error
	calls    int
}

func (f *fakePublisher) Publish(_ context.Context, topic string, _, payload []byte) error {
	defer func() { f.calls++ }()

	if f.calls < len(f.failures) && f.failures[f.calls] != nil {
		return f.failures[f.calls]
	}

	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, payload)

	return nil
}

func outboxMessage(eventType string) model.OutboxMessage {
	return model.OutboxMessage{
		EventID:   uuid.New(),
		EventType: eventType,
		Payload:   []byte(`{}`),
		CreatedAt: time.Now(),
	}
}

func testConfig() Config {
	return Config{
		Name:           "relay-test",
		PollInterval:   time.Millisecond,
		BatchSize:      10,
		PublishTimeout: time.Second,
		RetryBaseDelay: time.Millisecond,
		RetryMaxTries:  3,
		DeadLetter:     true,
	}
}

func TestCyclePublishesBatchInOrder(t *testing.T) {
	repo := &fakeOutboxRepo{
		batch: []model.OutboxMessage{
			outboxMessage(model.EventProspectCreated),
			outboxMessage(model.EventStudentCreated),
			outboxMessage(model.EventInstructorCreated),
		},
	}
	pub := &fakePublisher{}

	r := NewRelay(zap.NewNop(), testConfig(), pub, repo, nil)

	if err := r.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle failed: %v", err)
	}

	if len(repo.published) != 3 {
		t.Fatalf("expected 3 published records, got %d", len(repo.published))
	}

	wantTopics := []string{model.TopicProspects, model.TopicStudents, model.TopicInstructors}
	for i, topic := range wantTopics {
		if pub.topics[i] != topic {
			t.Errorf("message %d: expected topic %q, got %q", i, topic, pub.topics[i])
		}
	}

	for i, msg := range repo.batch {
		if repo.published[i] != msg.EventID {
			t.Errorf("publish order broken at %d: expected %s, got %s", i, msg.EventID, repo.published[i])
		}
	}
}

func TestCycleHonorsBatchSize(t *testing.T) {
	created := outboxMessage(model.EventProspectCreated)
	updated := outboxMessage(model.EventProspectUpdated)
	updatedAgain := outboxMessage(model.EventProspectUpdated)
	repo := &fakeOutboxRepo{batch: []model.OutboxMessage{created, updated, updatedAgain}}
	pub := &fakePublisher{}

	cfg := testConfig()
	cfg.BatchSize = 2

	r := NewRelay(zap.NewNop(), cfg, pub, repo, nil)

	if err := r.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle failed: %v", err)
	}

	// the oldest two go out, the third waits for the next cycle
	if len(repo.published) != 2 {
		t.Fatalf("expected 2 published records, got %d", len(repo.published))
	}

	if repo.published[0] != created.EventID || repo.published[1] != updated.EventID {
		t.Errorf("publish order broken: %v", repo.published)
	}
}

func TestCycleRetriesTransientFailure(t *testing.T) {
	repo := &fakeOutboxRepo{
		batch: []model.OutboxMessage{outboxMessage(model.EventProspectCreated)},
	}
	pub := &fakePublisher{
		failures: []error{
			pushbus.Temporary(errors.New("connection refused")),
			pushbus.Temporary(errors.New("connection refused")),
		},
	}

	r := NewRelay(zap.NewNop(), testConfig(), pub, repo, nil)

	if err := r.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle failed: %v", err)
	}

	if pub.calls != 3 {
		t.Fatalf("expected 3 publish attempts, got %d", pub.calls)
	}

	if len(repo.published) != 1 {
		t.Fatalf("expected record marked published after retry, got %d marks", len(repo.published))
	}
}

func TestCycleGivesUpAfterExhaustionAndKeepsRecord(t *testing.T) {
	first := outboxMessage(model.EventProspectCreated)
	second := outboxMessage(model.EventProspectUpdated)
	repo := &fakeOutboxRepo{batch: []model.OutboxMessage{first, second}}

	transient := pushbus.Temporary(errors.New("unavailable"))
	pub := &fakePublisher{failures: []error{transient, transient, transient}}

	r := NewRelay(zap.NewNop(), testConfig(), pub, repo, nil)

	if err := r.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle failed: %v", err)
	}

	// the failing head record stays unpublished and nothing behind it went out
	if len(repo.published) != 0 {
		t.Fatalf("expected no published records, got %d", len(repo.published))
	}

	if len(pub.topics) != 0 {
		t.Fatalf("expected no successful publishes, got %d", len(pub.topics))
	}
}

func TestCycleQuarantinesPermanentFailure(t *testing.T) {
	msg := outboxMessage(model.EventProspectCreated)
	repo := &fakeOutboxRepo{batch: []model.OutboxMessage{msg}}
	pub := &fakePublisher{failures: []error{errors.New("400 bad request")}}

	r := NewRelay(zap.NewNop(), testConfig(), pub, repo, nil)

	if err := r.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle failed: %v", err)
	}

	if len(repo.deadLetter) != 1 {
		t.Fatalf("expected 1 dead-lettered record, got %d", len(repo.deadLetter))
	}

	if repo.deadLetter[0].EventID != msg.EventID {
		t.Errorf("wrong record dead-lettered: %s", repo.deadLetter[0].EventID)
	}
}

func TestCycleQuarantinesUnroutableEvent(t *testing.T) {
	msg := outboxMessage("Admissions.UnknownHappened")
	repo := &fakeOutboxRepo{batch: []model.OutboxMessage{msg}}
	pub := &fakePublisher{}

	r := NewRelay(zap.NewNop(), testConfig(), pub, repo, nil)

	if err := r.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle failed: %v", err)
	}

	if pub.calls != 0 {
		t.Fatalf("unroutable record must not reach the publisher, got %d calls", pub.calls)
	}

	if len(repo.deadLetter) != 1 {
		t.Fatalf("expected 1 dead-lettered record, got %d", len(repo.deadLetter))
	}
}

func TestQuarantineWithoutDeadLetterMarksPublished(t *testing.T) {
	msg := outboxMessage(model.EventProspectCreated)
	repo := &fakeOutboxRepo{batch: []model.OutboxMessage{msg}}
	pub := &fakePublisher{failures: []error{errors.New("schema rejected")}}

	cfg := testConfig()
	cfg.DeadLetter = false

	r := NewRelay(zap.NewNop(), cfg, pub, repo, nil)

	if err := r.Cycle(context.Background()); err != nil {
		t.Fatalf("Cycle failed: %v", err)
	}

	if len(repo.deadLetter) != 0 {
		t.Fatalf("expected no dead-lettered records, got %d", len(repo.deadLetter))
	}

	if len(repo.published) != 1 || repo.published[0] != msg.EventID {
		t.Fatalf("expected record marked published, got %v", repo.published)
	}
}
