// Package server wires the subscriber endpoint and the static dashboard
// onto one HTTP listener.
package server

import (
	"context"
	_ "embed"
	"log"
	"net/http"
	"time"

	"github.com/espstream/touchrelay/broker"
	"github.com/espstream/touchrelay/websocket"
)

//go:embed index.html
var indexPage []byte

// Server wraps the HTTP server carrying the /ws subscriber endpoint and the
// dashboard page at /.
type Server struct {
	httpServer *http.Server
}

// NewServer builds the server for the given listen address.
func NewServer(addr string, wsHandler http.HandlerFunc) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexPage)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start runs the listener. It only returns on a fatal listen error.
func (s *Server) Start() {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

// Shutdown tears the service down in order: stop accepting upgrades, close
// every subscriber with a going-away frame, wait out in-flight session
// goroutines, then close the mirror broker.
func (s *Server) Shutdown(clientManager *websocket.ClientManager, mirror broker.MessageBroker) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	log.Println("shutting down HTTP server...")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("closing subscriber connections...")
	clientManager.CloseAllConnections("server shutting down")

	done := make(chan struct{})
	go func() {
		clientManager.WaitForCompletion()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Println("shutdown timeout exceeded, forcing exit")
	}

	if mirror != nil {
		if err := mirror.Close(); err != nil {
			log.Printf("mirror broker close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
