// Package protocol decodes the firmware's line protocol and defines the
// message shapes delivered to subscribers.
//
// Each frame is one newline-terminated CSV line:
//
//	touch,<mac12>,<id3>,<seq>,<ms>,<n>,v1,v2,...,vn
package protocol

import (
	"bytes"
	"strconv"
)

var frameTag = []byte("touch,")

// Reading is one decoded sample set from a single frame. Values always holds
// exactly N entries; a frame that cannot satisfy that is rejected whole.
type Reading struct {
	DeviceID string
	N        int
	Values   []int
}

// Parse decodes a single frame. It returns nil for anything that is not a
// complete, well-formed touch frame: wrong tag, too few fields, a
// non-numeric channel count, or fewer numeric values than the count
// declares. No partial Reading is ever produced.
func Parse(line []byte) *Reading {
	line = bytes.TrimSpace(line)
	if !bytes.HasPrefix(line, frameTag) {
		return nil
	}
	fields := bytes.Split(line, []byte(","))
	if len(fields) < 7 {
		return nil
	}

	// Field 1 is the device MAC. The firmware emits it as 12 hex chars;
	// the relay only uppercases and passes it through. Fields 2-4 (short
	// id, sequence, millis) are positional filler here.
	deviceID := string(bytes.ToUpper(fields[1]))

	n, err := strconv.Atoi(string(fields[5]))
	if err != nil || n < 0 {
		return nil
	}
	if len(fields) < 6+n {
		return nil
	}

	values := make([]int, 0, n)
	for _, f := range fields[6 : 6+n] {
		v, err := strconv.Atoi(string(f))
		if err != nil {
			return nil
		}
		values = append(values, v)
	}

	return &Reading{DeviceID: deviceID, N: n, Values: values}
}
