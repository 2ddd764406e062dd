package relay

import (
	"context"
	"encoding/json"

	"github.com/espstream/touchrelay/broker"
	"github.com/espstream/touchrelay/protocol"
)

// Subscriber is one registered outbound connection as the broadcaster sees
// it. Send must not block: a subscriber that cannot accept the payload
// returns an error and is dropped.
type Subscriber interface {
	SessionID() string
	Send(payload []byte) error
}

// Registry is the set of live subscribers. Snapshot returns the current
// membership; Drop disconnects and removes one member.
type Registry interface {
	Snapshot() []Subscriber
	Drop(id string)
}

// Broadcaster is the sole consumer of the bridge. Each event is serialized
// once and handed to every current registry member; members that fail to
// accept it are pruned. One instance runs per process.
type Broadcaster struct {
	bridge  *Bridge
	clients Registry
	mirror  broker.MessageBroker // nil when mirroring is disabled
}

func NewBroadcaster(bridge *Bridge, clients Registry, mirror broker.MessageBroker) *Broadcaster {
	return &Broadcaster{bridge: bridge, clients: clients, mirror: mirror}
}

// Run loops until ctx is cancelled. A delivery failure removes only the
// failing subscriber; it is never an error of the loop itself.
func (b *Broadcaster) Run(ctx context.Context) {
	for {
		ev, err := b.bridge.Get(ctx)
		if err != nil {
			return
		}
		b.deliver(ctx, encode(ev))
	}
}

func encode(ev Event) []byte {
	var payload []byte
	if ev.Err != nil {
		payload, _ = json.Marshal(protocol.ErrorMessage{Error: ev.Err.Error()})
	} else {
		payload, _ = json.Marshal(ev.Reading.Message())
	}
	return payload
}

func (b *Broadcaster) deliver(ctx context.Context, payload []byte) {
	for _, sub := range b.clients.Snapshot() {
		if err := sub.Send(payload); err != nil {
			log.Printf("dropping subscriber %s: %v", sub.SessionID(), err)
			b.clients.Drop(sub.SessionID())
		}
	}

	if b.mirror != nil {
		if err := b.mirror.Publish(ctx, payload); err != nil {
			log.Printf("mirror publish failed: %v", err)
		}
	}
}
