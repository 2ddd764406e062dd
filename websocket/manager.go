package websocket

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/espstream/touchrelay/relay"
)

// ClientManager is the registry of live subscriber sessions. The upgrade
// handler adds, the disconnect path and the broadcaster's prune remove; the
// sync.Map keeps both sides safe without a registry-wide lock.
type ClientManager struct {
	clients sync.Map
	wg      sync.WaitGroup
}

func NewClientManager() *ClientManager {
	return &ClientManager{}
}

func (m *ClientManager) Add(session *ClientSession) {
	m.clients.Store(session.SessionID(), session)
}

// Remove deletes the session from the registry without touching the
// connection. Used by the handler after the read pump has already observed
// the peer gone.
func (m *ClientManager) Remove(id string) {
	m.clients.Delete(id)
}

// Drop closes the session and removes it. Used by the broadcaster when a
// member fails to accept a delivery.
func (m *ClientManager) Drop(id string) {
	if v, ok := m.clients.LoadAndDelete(id); ok {
		v.(*ClientSession).Close(websocket.ClosePolicyViolation, "subscriber too slow")
	}
}

// Snapshot returns the current membership. Mutations after the snapshot is
// taken affect later deliveries, not the one in flight.
func (m *ClientManager) Snapshot() []relay.Subscriber {
	var subs []relay.Subscriber
	m.clients.Range(func(_, v interface{}) bool {
		subs = append(subs, v.(*ClientSession))
		return true
	})
	return subs
}

// Count reports the number of registered sessions.
func (m *ClientManager) Count() int {
	n := 0
	m.clients.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func (m *ClientManager) AddPending() {
	m.wg.Add(1)
}

func (m *ClientManager) DonePending() {
	m.wg.Done()
}

// WaitForCompletion blocks until all in-flight session goroutines have
// finished.
func (m *ClientManager) WaitForCompletion() {
	m.wg.Wait()
}

// CloseAllConnections closes every session with a going-away frame and
// empties the registry. Called once during shutdown.
func (m *ClientManager) CloseAllConnections(reason string) {
	m.clients.Range(func(key, v interface{}) bool {
		session := v.(*ClientSession)

		log.Printf("closing subscriber %s: %s", session.SessionID(), reason)
		session.Close(websocket.CloseGoingAway, reason)
		m.clients.Delete(key)

		return true
	})
}
