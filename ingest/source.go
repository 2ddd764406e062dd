package ingest

import (
	"fmt"
	"io"
	"time"

	serial "github.com/allbin/go-serial"
)

// Source is the byte stream the worker reads frames from. Reads are
// expected to be timeout-bounded; a timeout surfaces as (0, nil) or a
// timeout error, never as a permanent failure.
type Source interface {
	io.ReadCloser
}

// OpenFunc opens a Source for the given device and baud rate. Tests swap in
// an in-memory source here.
type OpenFunc func(device string, baud int, readTimeout time.Duration) (Source, error)

// OpenSerial opens the real serial device. 8N1, no flow control; the
// firmware streams plain ASCII lines.
func OpenSerial(device string, baud int, readTimeout time.Duration) (Source, error) {
	port, err := serial.Open(device,
		serial.WithBaudRate(baud),
		serial.WithReadTimeout(readTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	return port, nil
}
