package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"admissions-back/internal/model"
)

type fakeDispatcher struct {
	envelopes []*model.EventEnvelope
	err       error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, envelope *model.EventEnvelope) error {
	if f.err != nil {
		return f.err
	}

	f.envelopes = append(f.envelopes, envelope)

	return nil
}

func webhookRouter(dispatcher Dispatcher) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewWebhookHandler(zap.NewNop(), "120", dispatcher)

	router := gin.New()
	router.POST("/events", h.Receive)
	router.OPTIONS("/events", h.Preflight)

	return router
}

func postEvents(t *testing.T, router *gin.Engine, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func encodedEnvelope(t *testing.T) []byte {
	t.Helper()

	envelope, err := model.NewEnvelope(
		model.EventProspectCreated,
		"test-producer",
		"prospect/6f1b0a46-61ef-4b5e-8f4e-0a4a1f2f3b4c",
		map[string]string{"email": "p@example.com"},
	)
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}

	payload, err := envelope.Encode()
	if err != nil {
		t.Fatalf("failed to encode envelope: %v", err)
	}

	return payload
}

func TestReceiveDispatchesArray(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	router := webhookRouter(dispatcher)

	body := append(append([]byte("["), encodedEnvelope(t)...), ']')

	w := postEvents(t, router, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if len(dispatcher.envelopes) != 1 {
		t.Fatalf("expected 1 dispatched event, got %d", len(dispatcher.envelopes))
	}

	if dispatcher.envelopes[0].EventType != model.EventProspectCreated {
		t.Errorf("wrong event type dispatched: %s", dispatcher.envelopes[0].EventType)
	}
}

func TestReceiveDispatchesBareObject(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	router := webhookRouter(dispatcher)

	w := postEvents(t, router, encodedEnvelope(t))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if len(dispatcher.envelopes) != 1 {
		t.Fatalf("expected 1 dispatched event, got %d", len(dispatcher.envelopes))
	}
}

func TestReceiveAnswersValidationHandshake(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	router := webhookRouter(dispatcher)

	body := []byte(`[{
		"eventType": "Admissions.SubscriptionValidationEvent",
		"data": {"validationCode": "abc-123"}
	}]`)

	w := postEvents(t, router, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp model.ValidationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.ValidationResponse != "abc-123" {
		t.Errorf("expected validation code echoed back, got %q", resp.ValidationResponse)
	}

	if len(dispatcher.envelopes) != 0 {
		t.Errorf("validation events must not be dispatched, got %d", len(dispatcher.envelopes))
	}
}

func TestReceiveSynthesizesMinimalEvent(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	router := webhookRouter(dispatcher)

	body := []byte(`{
		"eventType": "Admissions.ProspectCreated",
		"data": {"id": "7c9e6679-7425-40de-944b-e07fc1f90ae7", "email": "p@example.com"}
	}`)

	w := postEvents(t, router, body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if len(dispatcher.envelopes) != 1 {
		t.Fatalf("expected 1 dispatched event, got %d", len(dispatcher.envelopes))
	}

	got := dispatcher.envelopes[0]
	if got.EventID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("event id not synthesized")
	}

	if got.Subject != "prospect/7c9e6679-7425-40de-944b-e07fc1f90ae7" {
		t.Errorf("subject not derived from payload, got %q", got.Subject)
	}

	if got.OccurredAt.IsZero() {
		t.Error("occurrence time not synthesized")
	}
}

func TestReceiveRejectsMinimalEventWithoutSubjectOrID(t *testing.T) {
	router := webhookRouter(&fakeDispatcher{})

	w := postEvents(t, router, []byte(`{"eventType": "Admissions.ProspectCreated", "data": {}}`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestReceiveRejectsEventWithoutType(t *testing.T) {
	router := webhookRouter(&fakeDispatcher{})

	w := postEvents(t, router, []byte(`[{"data": {}}]`))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestReceiveRejectsEmptyBody(t *testing.T) {
	router := webhookRouter(&fakeDispatcher{})

	w := postEvents(t, router, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestReceiveReportsDispatchFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("projection write failed")}
	router := webhookRouter(dispatcher)

	w := postEvents(t, router, encodedEnvelope(t))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 so the substrate redelivers, got %d", w.Code)
	}
}

func TestPreflightEchoesOriginAndRate(t *testing.T) {
	router := webhookRouter(&fakeDispatcher{})

	req := httptest.NewRequest(http.MethodOptions, "/events", nil)
	req.Header.Set(WebhookRequestOriginHeader, "bus.internal")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	if got := w.Header().Get(WebhookAllowedOriginHeader); got != "bus.internal" {
		t.Errorf("expected origin echoed back, got %q", got)
	}

	if got := w.Header().Get(WebhookAllowedRateHeader); got != "120" {
		t.Errorf("expected allowed rate advertised, got %q", got)
	}
}
