package stream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestNextDelayDoublesUpToMax(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Second

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{10, time.Second},
	}

	for _, c := range cases {
		if got := nextDelay(c.attempt, base, max); got != c.want {
			t.Errorf("attempt %d: expected %v, got %v", c.attempt, c.want, got)
		}
	}
}

func TestClosePolicyClassification(t *testing.T) {
	policyErr := &websocket.CloseError{Code: websocket.ClosePolicyViolation}
	if closePolicy(policyErr) != closePolicyReject {
		t.Error("policy violation close must back off hard")
	}

	fatalErr := &websocket.CloseError{Code: websocket.CloseInternalServerErr}
	if closePolicy(fatalErr) != closeFatal {
		t.Error("internal error close must be fatal")
	}

	if closePolicy(errors.New("read tcp: connection reset")) != closeOrdinary {
		t.Error("transport errors reconnect normally")
	}
}

func TestRunDeliversEventsAndStopsOnCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"eventType":"Admissions.ProspectCreated"}`)); err != nil {
			return
		}

		// keep the connection open until the client leaves
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	client := New(Config{URL: "ws" + strings.TrimPrefix(srv.URL, "http")})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	select {
	case payload := <-client.Events():
		if !strings.Contains(string(payload), "ProspectCreated") {
			t.Errorf("unexpected payload: %s", payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run must return nil on cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	// events channel closes when Run returns
	if _, ok := <-client.Events(); ok {
		t.Fatal("events channel must be closed")
	}
}

func TestRunGivesUpAfterConnectBudget(t *testing.T) {
	client := New(Config{
		URL:         "ws://127.0.0.1:1", // nothing listens here
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
		MaxAttempts: 3,
	})

	err := client.Run(context.Background())
	if err == nil {
		t.Fatal("expected error after exhausting connect attempts")
	}
}

func TestSubscribeSurvivesWithoutConnection(t *testing.T) {
	client := New(Config{URL: "ws://unused"})

	if err := client.Subscribe("Admissions.ProspectCreated"); err != nil {
		t.Fatalf("Subscribe before connect must only record the set, got %v", err)
	}

	if len(client.subs) != 1 {
		t.Fatalf("subscription set not recorded: %v", client.subs)
	}
}
