package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	pingInterval   = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 5 * time.Second
	outboundBuffer = 64
)

var (
	// ErrSessionClosed is returned by Send once the session is torn down.
	ErrSessionClosed = errors.New("session closed")

	// ErrSubscriberStalled is returned by Send when the outbound queue is
	// full. The peer has fallen too far behind the stream to be worth
	// keeping; the caller is expected to drop it.
	ErrSubscriberStalled = errors.New("subscriber outbound queue full")
)

// ClientSession is one subscriber connection. Outbound messages are queued
// on a bounded channel and drained by the session's write pump, so a slow
// peer never stalls the broadcaster or its sibling subscribers.
type ClientSession struct {
	id       string
	conn     *websocket.Conn
	outbound chan []byte
	closed   chan struct{}
	once     sync.Once
}

func NewClientSession(id string, conn *websocket.Conn) *ClientSession {
	return &ClientSession{
		id:       id,
		conn:     conn,
		outbound: make(chan []byte, outboundBuffer),
		closed:   make(chan struct{}),
	}
}

// SessionID returns the session's identity, used only for registry keys and
// log lines.
func (s *ClientSession) SessionID() string {
	return s.id
}

// Send queues one message for delivery. It never blocks: a closed session
// returns ErrSessionClosed, a full queue ErrSubscriberStalled.
func (s *ClientSession) Send(payload []byte) error {
	select {
	case <-s.closed:
		return ErrSessionClosed
	default:
	}

	select {
	case s.outbound <- payload:
		return nil
	default:
		return ErrSubscriberStalled
	}
}

// WritePump drains the outbound queue onto the connection and keeps the
// peer alive with periodic pings. It exits when the session closes or a
// write fails. Must run in its own goroutine, exactly once per session.
func (s *ClientSession) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closed:
			return
		case payload := <-s.outbound:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("write to %s failed: %v", s.id, err)
				s.Close(websocket.CloseInternalServerErr, "write failed")
				return
			}
		case <-ticker.C:
			s.conn.WriteControl(
				websocket.PingMessage,
				nil,
				time.Now().Add(writeWait),
			)
		}
	}
}

// ReadPump consumes and discards inbound frames until the peer goes away.
// Subscribers have nothing to say to the relay; reading is only how
// disconnects and pongs are noticed. Blocks until the connection dies.
func (s *ClientSession) ReadPump() {
	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Close sends a close frame and tears the connection down. Safe to call
// more than once; only the first call does anything.
func (s *ClientSession) Close(code int, text string) {
	s.once.Do(func() {
		close(s.closed)
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, text),
			time.Now().Add(writeWait),
		)
		s.conn.Close()
	})
}
