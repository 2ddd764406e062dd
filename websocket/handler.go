package websocket

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler accepts subscriber connections and manages their lifecycle.
// Subscribers are anonymous: there is no authentication and no per-device
// filtering on this side, the display layer filters what it shows.
type Handler struct {
	manager *ClientManager
}

func NewHandler(manager *ClientManager) *Handler {
	return &Handler{manager: manager}
}

// HandleWebSocket upgrades the request, registers the session, and blocks
// until the peer disconnects.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed: %v", err)
		return
	}

	session := NewClientSession(uuid.New().String(), conn)
	h.manager.Add(session)
	log.Printf("subscriber %s connected from %s", session.SessionID(), r.RemoteAddr)

	h.manager.AddPending()
	go func() {
		defer h.manager.DonePending()
		session.WritePump()
	}()

	session.ReadPump()

	log.Printf("subscriber %s disconnected", session.SessionID())
	session.Close(websocket.CloseNormalClosure, "")
	h.manager.Remove(session.SessionID())
}
