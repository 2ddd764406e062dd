// Package ingest owns the blocking read loop against the serial source and
// feeds validated readings into the relay bridge.
package ingest

import (
	"bytes"
	"context"
	"os"
	"time"

	"github.com/espstream/touchrelay/protocol"
	"github.com/espstream/touchrelay/relay"
)

const maxPending = 64 * 1024 // cap on unterminated-line buildup from a noisy source

// Worker reads newline-delimited frames from the serial source and pushes
// every parseable Reading onto the bridge, in arrival order. One worker
// exists per process, on its own goroutine, and it is not restartable: an
// open failure is reported once through the bridge and the worker ends.
type Worker struct {
	device      string
	baud        int
	readTimeout time.Duration
	open        OpenFunc
	bridge      *relay.Bridge
}

func NewWorker(device string, baud int, readTimeout time.Duration, open OpenFunc, bridge *relay.Bridge) *Worker {
	return &Worker{
		device:      device,
		baud:        baud,
		readTimeout: readTimeout,
		open:        open,
		bridge:      bridge,
	}
}

// Run opens the source and streams until ctx is cancelled or the source
// dies. The source handle is always released before Run returns. There is
// no automatic reconnect; the operator restarts the process.
func (w *Worker) Run(ctx context.Context) {
	src, err := w.open(w.device, w.baud, w.readTimeout)
	if err != nil {
		log.Printf("cannot open %s: %v", w.device, err)
		w.bridge.Fail(err)
		return
	}
	defer src.Close()

	log.Printf("streaming from %s at %d baud", w.device, w.baud)

	buf := make([]byte, 4096)
	var pending []byte
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := src.Read(buf)
		if n > 0 {
			pending = w.consume(append(pending, buf[:n]...))
		}
		if err != nil {
			if os.IsTimeout(err) {
				// No bytes within the read timeout. Steady state
				// between touches; keep polling.
				continue
			}
			// Closed out from under us, or the device vanished.
			log.Printf("source %s gone: %v", w.device, err)
			return
		}
		if len(pending) > maxPending {
			pending = pending[:0]
		}
	}
}

// consume splits off every complete line in pending, parses each, and
// enqueues the readings. Unparseable lines are dropped silently; the serial
// stream also carries boot chatter that is not protocol. Returns the
// remaining partial line.
func (w *Worker) consume(pending []byte) []byte {
	for {
		i := bytes.IndexByte(pending, '\n')
		if i < 0 {
			return pending
		}
		line := pending[:i]
		pending = pending[i+1:]
		if r := protocol.Parse(line); r != nil {
			w.bridge.Put(r)
		}
	}
}
