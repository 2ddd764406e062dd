// Command tap subscribes to a running relay and prints every message to
// stdout, one JSON object per line. It reconnects with exponential backoff
// when the relay goes away, the same way the dashboard page does.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

func main() {
	url := flag.String("url", "ws://localhost:8000/ws", "relay WebSocket URL")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	for ctx.Err() == nil {
		if err := tap(ctx, *url); err != nil {
			log.Printf("connection lost: %v", err)
		}
	}
}

// tap dials the relay, retrying with backoff until connected, then streams
// messages until the connection drops or ctx is cancelled.
func tap(ctx context.Context, url string) error {
	var conn *websocket.Conn

	dial := func() error {
		c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}

	backoffStrategy := backoff.WithContext(
		backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(time.Second),
			backoff.WithMaxInterval(30*time.Second),
		),
		ctx,
	)

	if err := backoff.RetryNotify(dial, backoffStrategy, func(err error, d time.Duration) {
		log.Printf("dial %s failed: %v (retrying in %s)", url, err, d)
	}); err != nil {
		return err
	}
	defer conn.Close()

	log.Printf("connected to %s", url)

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(msg))
	}
}
