package hub

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"admissions-back/internal/apperrors"
	"admissions-back/internal/model"
)

func testHubConfig() Config {
	return Config{
		MaxConnections: 4,
		SendBuffer:     8,
		WriteTimeout:   time.Second,
		PingInterval:   time.Minute,
		PongWait:       time.Minute,
	}
}

// dialTestConn returns both ends of a live websocket connection.
func dialTestConn(t *testing.T) (serverConn, clientConn *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	conns := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)

			return
		}

		conns <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	clientConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = clientConn.Close() })

	select {
	case serverConn = <-conns:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for server side of the connection")
	}

	return serverConn, clientConn
}

func envelopeOf(t *testing.T, eventType string) *model.EventEnvelope {
	t.Helper()

	envelope, err := model.NewEnvelope(eventType, "test", "prospect/4be0643f-1d98-573b-97cd-ca98a65347dd", struct{}{})
	if err != nil {
		t.Fatalf("failed to build envelope: %v", err)
	}

	return envelope
}

func TestBroadcastReachesSubscribedClient(t *testing.T) {
	h := NewHub(zap.NewNop(), testHubConfig())

	serverConn, _ := dialTestConn(t)

	client, err := h.Register(serverConn, "alice")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	h.Broadcast(envelopeOf(t, model.EventProspectCreated))

	select {
	case <-client.send:
	case <-time.After(time.Second):
		t.Fatal("subscribed client did not receive the broadcast")
	}
}

func TestBroadcastSkipsUnsubscribedClient(t *testing.T) {
	h := NewHub(zap.NewNop(), testHubConfig())

	serverConn, _ := dialTestConn(t)

	client, err := h.Register(serverConn, "bob")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	client.apply(model.StreamCommand{
		Action:     model.StreamActionUnsubscribe,
		EventTypes: []string{model.EventStudentCreated},
	})

	h.Broadcast(envelopeOf(t, model.EventStudentCreated))

	select {
	case <-client.send:
		t.Fatal("unsubscribed client received the broadcast")
	case <-time.After(50 * time.Millisecond):
	}

	// other event types still flow
	h.Broadcast(envelopeOf(t, model.EventProspectCreated))

	select {
	case <-client.send:
	case <-time.After(time.Second):
		t.Fatal("client lost its remaining subscriptions")
	}
}

func TestResubscribeRestoresDelivery(t *testing.T) {
	h := NewHub(zap.NewNop(), testHubConfig())

	serverConn, _ := dialTestConn(t)

	client, err := h.Register(serverConn, "carol")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	client.apply(model.StreamCommand{
		Action:     model.StreamActionUnsubscribe,
		EventTypes: []string{model.EventProspectDeleted},
	})
	client.apply(model.StreamCommand{
		Action:     model.StreamActionSubscribe,
		EventTypes: []string{model.EventProspectDeleted},
	})

	h.Broadcast(envelopeOf(t, model.EventProspectDeleted))

	select {
	case <-client.send:
	case <-time.After(time.Second):
		t.Fatal("resubscribed client did not receive the broadcast")
	}
}

func TestRegisterRefusesWhenFull(t *testing.T) {
	cfg := testHubConfig()
	cfg.MaxConnections = 1

	h := NewHub(zap.NewNop(), cfg)

	serverConn, _ := dialTestConn(t)
	if _, err := h.Register(serverConn, "first"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	extraConn, _ := dialTestConn(t)

	_, err := h.Register(extraConn, "second")
	if err != apperrors.ErrHubFull {
		t.Fatalf("expected ErrHubFull, got %v", err)
	}

	if h.Count() != 1 {
		t.Fatalf("expected 1 registered client, got %d", h.Count())
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	cfg := testHubConfig()
	cfg.SendBuffer = 1

	h := NewHub(zap.NewNop(), cfg)

	serverConn, clientConn := dialTestConn(t)

	if _, err := h.Register(serverConn, "slow"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// nobody drains client.send: the second broadcast overflows the buffer
	h.Broadcast(envelopeOf(t, model.EventProspectCreated))
	h.Broadcast(envelopeOf(t, model.EventProspectUpdated))

	if h.Count() != 0 {
		t.Fatalf("expected slow client dropped, %d still registered", h.Count())
	}

	// the drop must look like a policy rejection, not a server fault, so the
	// client backs off and reconnects instead of giving up for good
	_ = clientConn.SetReadDeadline(time.Now().Add(time.Second))

	_, _, err := clientConn.ReadMessage()

	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		t.Fatalf("expected a close frame, got %v", err)
	}

	if closeErr.Code != websocket.ClosePolicyViolation {
		t.Fatalf("expected close code %d, got %d", websocket.ClosePolicyViolation, closeErr.Code)
	}
}

func TestCloseDisconnectsAndRefusesRegistration(t *testing.T) {
	h := NewHub(zap.NewNop(), testHubConfig())

	serverConn, _ := dialTestConn(t)
	if _, err := h.Register(serverConn, "dave"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	h.Close()

	if h.Count() != 0 {
		t.Fatalf("expected empty hub after Close, got %d", h.Count())
	}

	lateConn, _ := dialTestConn(t)

	if _, err := h.Register(lateConn, "late"); err != apperrors.ErrHubClosed {
		t.Fatalf("expected ErrHubClosed, got %v", err)
	}
}
