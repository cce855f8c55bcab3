package events

import (
	"sync/atomic"
	"time"
)

// Bus :
// Stamps every emitted event with a monotonic `causal_sequence` and
// hands it to the SubscriptionHub for fan-out (§4.3). The bus never
// re-reads world state: it trusts the recipient set already baked
// into the `Filter` it is handed.
type Bus struct {
	sequence int64
	hub      *Hub
	journal  *Journal
}

// NewBus :
func NewBus(hub *Hub) *Bus {
	return &Bus{hub: hub}
}

// SetJournal :
// Attaches the optional persisted event journal. A nil or never-set
// journal leaves `Emit` exactly as it was before the journal existed.
func (b *Bus) SetJournal(j *Journal) {
	b.journal = j
}

// Emit :
// Stamps and routes one event. Returns the stamped event so the
// caller can, for instance, log its sequence number.
func (b *Bus) Emit(name string, payload any, summary string, filter Filter) Event {
	ev := Event{
		Name:      name,
		Payload:   payload,
		Summary:   summary,
		Sequence:  atomic.AddInt64(&b.sequence, 1),
		Timestamp: time.Now().UTC(),
		Filter:    filter,
	}
	recipients, adminOnly := filter.Resolve()
	b.hub.deliver(ev, recipients, adminOnly)
	if b.journal != nil {
		b.journal.Record(ev)
	}
	return ev
}
