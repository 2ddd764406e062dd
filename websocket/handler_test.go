package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestRelay(t *testing.T) (*ClientManager, string) {
	t.Helper()
	m := NewClientManager()
	h := NewHandler(m)
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(srv.Close)
	return m, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForCount(t *testing.T, m *ClientManager, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if m.Count() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("registry count = %d, want %d", m.Count(), want)
}

func TestFanOutToAllSubscribers(t *testing.T) {
	m, url := newTestRelay(t)

	conns := []*websocket.Conn{dial(t, url), dial(t, url), dial(t, url)}
	waitForCount(t, m, 3)

	payload := `{"mac":"A1B2C3D4E5F6","n":4,"values":[100,200,300,400]}`
	for _, sub := range m.Snapshot() {
		if err := sub.Send([]byte(payload)); err != nil {
			t.Fatalf("Send to %s: %v", sub.SessionID(), err)
		}
	}

	for i, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("subscriber %d read: %v", i, err)
		}
		if string(msg) != payload {
			t.Errorf("subscriber %d got %s, want %s", i, msg, payload)
		}
	}
}

func TestDisconnectedSubscriberIsRemoved(t *testing.T) {
	m, url := newTestRelay(t)

	stay := dial(t, url)
	leave := dial(t, url)
	waitForCount(t, m, 2)

	leave.Close()
	waitForCount(t, m, 1)

	payload := []byte(`{"mac":"AABBCCDDEEFF","n":1,"values":[1]}`)
	for _, sub := range m.Snapshot() {
		if err := sub.Send(payload); err != nil {
			t.Fatalf("Send: %v", err)
		}
	}

	stay.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, msg, err := stay.ReadMessage(); err != nil || string(msg) != string(payload) {
		t.Errorf("remaining subscriber read (%s, %v)", msg, err)
	}
}

func TestDropClosesThePeer(t *testing.T) {
	m, url := newTestRelay(t)

	conn := dial(t, url)
	waitForCount(t, m, 1)

	id := m.Snapshot()[0].SessionID()
	m.Drop(id)

	if got := m.Count(); got != 0 {
		t.Errorf("Count() after Drop = %d, want 0", got)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := conn.ReadMessage()
	if _, ok := err.(*websocket.CloseError); !ok {
		t.Errorf("peer read after Drop = %v, want close error", err)
	}
}

func TestCloseAllConnections(t *testing.T) {
	m, url := newTestRelay(t)

	conns := []*websocket.Conn{dial(t, url), dial(t, url)}
	waitForCount(t, m, 2)

	m.CloseAllConnections("server shutting down")

	if got := m.Count(); got != 0 {
		t.Errorf("Count() after CloseAllConnections = %d, want 0", got)
	}
	for i, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, _, err := conn.ReadMessage()
		if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
			t.Errorf("subscriber %d read = %v, want going-away close", i, err)
		}
	}
}
