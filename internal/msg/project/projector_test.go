package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"admissions-back/internal/apperrors"
	"admissions-back/internal/model"
	"admissions-back/internal/repository"
)

type fakeInbox struct {
	// processed-at timestamps keyed by event id, the dedup ledger
	seen    map[uuid.UUID]time.Time
	records []model.InboxMessage
}

func newFakeInbox() *fakeInbox {
	return &fakeInbox{seen: make(map[uuid.UUID]time.Time)}
}

func (f *fakeInbox) ProcessOnce(
	ctx context.Context,
	record model.InboxMessage,
	mutate func(ctx context.Context, ext repository.RepoExtension) error,
) (bool, error) {
	if _, ok := f.seen[record.EventID]; ok {
		return false, nil
	}

	if err := mutate(ctx, nil); err != nil {
		return false, err
	}

	f.seen[record.EventID] = time.Now()
	f.records = append(f.records, record)

	return true, nil
}

func (f *fakeInbox) PurgeOlderThan(_ context.Context, _ repository.RepoExtension, window time.Duration) (int64, error) {
	cutoff := time.Now().Add(-window)

	var purged int64
	for eventID, processedAt := range f.seen {
		if processedAt.Before(cutoff) {
			delete(f.seen, eventID)
			purged++
		}
	}

	return purged, nil
}

type fakeProjectionRepo struct {
	rows map[uuid.UUID]*model.IdentityProjection
	// creation times as passed to Insert, keyed by row id
	createdAt map[uuid.UUID]time.Time
}

func newFakeProjectionRepo() *fakeProjectionRepo {
	return &fakeProjectionRepo{
		rows:      make(map[uuid.UUID]*model.IdentityProjection),
		createdAt: make(map[uuid.UUID]time.Time),
	}
}

func (f *fakeProjectionRepo) Insert(_ context.Context, _ repository.RepoExtension, p *model.IdentityProjection, createdAt time.Time) error {
	f.rows[p.ID] = p
	f.createdAt[p.ID] = createdAt

	return nil
}

func (f *fakeProjectionRepo) Update(_ context.Context, _ repository.RepoExtension, p *model.IdentityProjection) error {
	if _, ok := f.rows[p.ID]; !ok {
		return apperrors.ErrProjectionDoesNotExist
	}

	f.rows[p.ID] = p

	return nil
}

func (f *fakeProjectionRepo) Delete(_ context.Context, _ repository.RepoExtension, id uuid.UUID) error {
	delete(f.rows, id)

	return nil
}

func newProjector(inbox Inbox, repo ProjectionRepository) *Projector {
	return NewProjector(
		zap.NewNop(),
		Config{Name: "projector-test", DedupWindow: time.Hour, PurgeInterval: time.Hour},
		inbox,
		repo,
		nil,
	)
}

func prospectEnvelope(t *testing.T, eventType string, id uuid.UUID) *model.EventEnvelope {
	t.Helper()

	payload := model.IdentityFields{
		ID:        id,
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Email:     gofakeit.Email(),
		Phone:     gofakeit.Phone(),
		Status:    "new",
	}

	envelope, err := model.NewEnvelope(eventType, "admissions-back", model.Subject(model.KindProspect, id), payload)
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}

	return envelope
}

func TestHandleCreatedInsertsProjection(t *testing.T) {
	inbox := newFakeInbox()
	repo := newFakeProjectionRepo()
	p := newProjector(inbox, repo)

	id := uuid.New()
	envelope := prospectEnvelope(t, model.EventProspectCreated, id)

	if err := p.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	row, ok := repo.rows[id]
	if !ok {
		t.Fatal("projection row not created")
	}

	if row.Kind != model.KindProspect {
		t.Errorf("expected kind %q, got %q", model.KindProspect, row.Kind)
	}

	if row.DisplayName == "" || row.Email == "" {
		t.Errorf("extracted columns empty: %+v", row)
	}

	if string(row.Document) != string(envelope.Data) {
		t.Error("document must carry the raw event payload")
	}
}

func TestHandleDuplicateDeliverySkipped(t *testing.T) {
	inbox := newFakeInbox()
	repo := newFakeProjectionRepo()
	p := newProjector(inbox, repo)

	envelope := prospectEnvelope(t, model.EventProspectCreated, uuid.New())

	if err := p.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("first Handle failed: %v", err)
	}

	if err := p.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("duplicate Handle failed: %v", err)
	}

	if len(inbox.records) != 1 {
		t.Fatalf("expected 1 inbox record, got %d", len(inbox.records))
	}
}

func TestRedeliveryAfterPurgeIsNewWork(t *testing.T) {
	inbox := newFakeInbox()
	repo := newFakeProjectionRepo()
	p := newProjector(inbox, repo)

	stale := prospectEnvelope(t, model.EventProspectCreated, uuid.New())
	fresh := prospectEnvelope(t, model.EventProspectCreated, uuid.New())

	if err := p.Handle(context.Background(), stale); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if err := p.Handle(context.Background(), fresh); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	// the first record ages past the dedup window, the second stays inside it
	inbox.seen[stale.EventID] = time.Now().Add(-2 * time.Hour)

	purged, err := inbox.PurgeOlderThan(context.Background(), nil, time.Hour)
	if err != nil {
		t.Fatalf("PurgeOlderThan failed: %v", err)
	}

	if purged != 1 {
		t.Fatalf("expected 1 purged record, got %d", purged)
	}

	if _, ok := inbox.seen[fresh.EventID]; !ok {
		t.Fatal("purge must not touch records inside the dedup window")
	}

	// the in-window record still deduplicates
	if err := p.Handle(context.Background(), fresh); err != nil {
		t.Fatalf("redelivery of in-window record failed: %v", err)
	}

	if len(inbox.records) != 2 {
		t.Fatalf("in-window redelivery must be a no-op, got %d applied records", len(inbox.records))
	}

	// the purged record's redelivery is applied again
	if err := p.Handle(context.Background(), stale); err != nil {
		t.Fatalf("redelivery of purged record failed: %v", err)
	}

	if len(inbox.records) != 3 {
		t.Fatalf("redelivery after purge must be reapplied, got %d applied records", len(inbox.records))
	}
}

func TestHandleOutOfOrderUpdateSynthesizesRow(t *testing.T) {
	inbox := newFakeInbox()
	repo := newFakeProjectionRepo()
	p := newProjector(inbox, repo)

	id := uuid.New()
	envelope := prospectEnvelope(t, model.EventProspectUpdated, id)

	if err := p.Handle(context.Background(), envelope); err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	if _, ok := repo.rows[id]; !ok {
		t.Fatal("update without prior create must synthesize the row")
	}

	if !repo.createdAt[id].Equal(envelope.OccurredAt) {
		t.Errorf("synthesized row must take the event occurrence time, got %v", repo.createdAt[id])
	}
}

func TestHandleDeletedRemovesRow(t *testing.T) {
	inbox := newFakeInbox()
	repo := newFakeProjectionRepo()
	p := newProjector(inbox, repo)

	id := uuid.New()

	if err := p.Handle(context.Background(), prospectEnvelope(t, model.EventProspectCreated, id)); err != nil {
		t.Fatalf("create Handle failed: %v", err)
	}

	deleted, err := model.NewEnvelope(
		model.EventProspectDeleted,
		"admissions-back",
		model.Subject(model.KindProspect, id),
		map[string]string{"id": id.String()},
	)
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}

	if err := p.Handle(context.Background(), deleted); err != nil {
		t.Fatalf("delete Handle failed: %v", err)
	}

	if _, ok := repo.rows[id]; ok {
		t.Fatal("projection row must be gone after delete")
	}
}

func TestHandleMalformedSubject(t *testing.T) {
	p := newProjector(newFakeInbox(), newFakeProjectionRepo())

	envelope, err := model.NewEnvelope(model.EventProspectCreated, "admissions-back", "not-a-subject", struct{}{})
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}

	err = p.Handle(context.Background(), envelope)
	if !errors.Is(err, apperrors.ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent, got %v", err)
	}
}

func TestHandleSubjectPayloadIDMismatch(t *testing.T) {
	p := newProjector(newFakeInbox(), newFakeProjectionRepo())

	envelope := prospectEnvelope(t, model.EventProspectCreated, uuid.New())
	envelope.Subject = model.Subject(model.KindProspect, uuid.New())

	err := p.Handle(context.Background(), envelope)
	if !errors.Is(err, apperrors.ErrMalformedEvent) {
		t.Fatalf("expected ErrMalformedEvent, got %v", err)
	}
}
