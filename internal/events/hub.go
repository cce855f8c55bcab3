package events

import "sync"

// outboundBuffer :
// The default size of a subscription's outbound channel, mirrored
// from the netrek-web transport's 256-entry per-client send buffer —
// generous enough that a momentary slow writer never blocks event
// emission under lock.
const outboundBuffer = 256

// Subscription :
// Per-client delivery state (§4.4): a FIFO outbound queue, a `paused`
// flag (events still enqueue but are not flushed while set) and an
// `alive` flag (false after transport close; further delivery is
// dropped). `lastSequence` backs the dedup contract: the hub refuses
// to accept an event whose sequence is not strictly greater than the
// last one accepted for this subscriber.
type Subscription struct {
	id       string
	admin    bool
	outbound chan Event

	mu           sync.Mutex
	paused       bool
	alive        bool
	lastSequence int64
	pending      []Event
}

// ID :
func (s *Subscription) ID() string { return s.id }

// Outbound :
// The channel a transport's write pump drains to push frames to the
// wire, mirroring the netrek-web `Client.send` channel.
func (s *Subscription) Outbound() <-chan Event { return s.outbound }

func (s *Subscription) deliver(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.alive || ev.Sequence <= s.lastSequence {
		return
	}
	s.lastSequence = ev.Sequence

	if s.paused {
		s.pending = append(s.pending, ev)
		return
	}

	select {
	case s.outbound <- ev:
	default:
		// Transport momentarily can't keep up; hold it the same way a
		// paused subscriber would rather than drop it, preserving the
		// at-least-once contract.
		s.pending = append(s.pending, ev)
	}
}

// Pause :
func (s *Subscription) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume :
// Flushes every event accumulated while paused, in emission order,
// then clears the pause flag (§8 S6).
func (s *Subscription) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	for i, ev := range s.pending {
		select {
		case s.outbound <- ev:
		default:
			// Outbound is still backed up; leave the remainder queued
			// and let the next Resume/flush attempt drain it.
			s.pending = s.pending[i:]
			return
		}
	}
	s.pending = nil
}

// Close :
// Marks the subscription dead; further deliveries are silently
// dropped, matching the teacher's transport closing a client's send
// channel on disconnect.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alive = false
}

// Hub :
// The registry of live subscriptions (§4.4). One subscription exists
// per connected client; a character may hold more than one (e.g. a
// human UI and an admin tool) if the transport layer allows it.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

// NewHub :
func NewHub() *Hub {
	return &Hub{subs: make(map[string]*Subscription)}
}

// Register :
// Creates and stores a subscription for `characterID` (or an empty
// string for an admin-only tooling connection). `admin` marks the
// connection as additionally receiving `AdminOnly` events.
func (h *Hub) Register(subscriptionID, characterID string, admin bool) *Subscription {
	sub := &Subscription{
		id:       characterID,
		admin:    admin,
		outbound: make(chan Event, outboundBuffer),
		alive:    true,
	}
	h.mu.Lock()
	h.subs[subscriptionID] = sub
	h.mu.Unlock()
	return sub
}

// Unregister :
// Closes and removes a subscription, e.g. on transport disconnect.
func (h *Hub) Unregister(subscriptionID string) {
	h.mu.Lock()
	sub, ok := h.subs[subscriptionID]
	delete(h.subs, subscriptionID)
	h.mu.Unlock()
	if ok {
		sub.Close()
	}
}

// Get :
func (h *Hub) Get(subscriptionID string) (*Subscription, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sub, ok := h.subs[subscriptionID]
	return sub, ok
}

func (h *Hub) deliver(ev Event, recipients []string, adminOnly bool) {
	wanted := make(map[string]struct{}, len(recipients))
	for _, id := range recipients {
		wanted[id] = struct{}{}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if adminOnly {
			if sub.admin {
				sub.deliver(ev)
			}
			continue
		}
		if _, ok := wanted[sub.id]; ok {
			sub.deliver(ev)
		}
	}
}
