package pushbus

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPublishPostsSingleElementArray(t *testing.T) {
	var (
		gotPath string
		gotKey  string
		gotBody []byte
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Bus-Key")
		gotBody, _ = io.ReadAll(r.Body)

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pub, err := New(&Config{Endpoint: srv.URL, Key: "secret"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := pub.Publish(context.Background(), "admissions-prospects", nil, []byte(`{"eventType":"x"}`)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if gotPath != "/topics/admissions-prospects/events" {
		t.Errorf("wrong path: %s", gotPath)
	}

	if gotKey != "secret" {
		t.Errorf("access key not sent, got %q", gotKey)
	}

	if string(gotBody) != `[{"eventType":"x"}]` {
		t.Errorf("payload not wrapped in an array: %s", gotBody)
	}
}

func TestPublishServerErrorIsTemporary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	pub, err := New(&Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = pub.Publish(context.Background(), "t", nil, []byte(`{}`))
	if err == nil {
		t.Fatal("expected error")
	}

	if !IsTemporary(err) {
		t.Fatalf("5xx must be retryable, got %v", err)
	}
}

func TestPublishClientErrorIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	pub, err := New(&Config{Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = pub.Publish(context.Background(), "t", nil, []byte(`{}`))
	if err == nil {
		t.Fatal("expected error")
	}

	if IsTemporary(err) {
		t.Fatalf("4xx must not be retried, got %v", err)
	}
}

func TestPublishTimeoutIsTemporary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pub, err := New(&Config{Endpoint: srv.URL, Timeout: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = pub.Publish(context.Background(), "t", nil, []byte(`{}`))
	if err == nil {
		t.Fatal("expected timeout error")
	}

	if !IsTemporary(err) {
		t.Fatalf("deadline hit must be retryable, got %v", err)
	}
}

func TestNewRequiresEndpoint(t *testing.T) {
	if _, err := New(&Config{}); err == nil {
		t.Fatal("expected error for missing endpoint")
	}
}

func TestIsTemporaryClassification(t *testing.T) {
	if IsTemporary(errors.New("plain")) {
		t.Error("plain errors are permanent")
	}

	if !IsTemporary(Temporary(errors.New("wrapped"))) {
		t.Error("wrapped errors are temporary")
	}

	if !IsTemporary(context.DeadlineExceeded) {
		t.Error("deadline exceeded is temporary")
	}

	if Temporary(nil) != nil {
		t.Error("Temporary(nil) must stay nil")
	}
}
