package dispatch

import "spacecore/internal/events"

// EventQuery :
// Implements §4.8 `event_query`: replays journaled events at or after
// `sinceSequence` from the optional persisted backing. Returns an
// empty slice, not an error, when no database was configured for this
// deployment — the journal is a replay convenience, not the primary
// delivery path (that is the live subscription hub).
func (d *Dispatcher) EventQuery(actorID string, sinceSequence int64, limit int) ([]events.JournaledEvent, error) {
	if err := d.allow(actorID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	rows, err := d.journal.Query(sinceSequence, limit)
	if err != nil {
		return nil, newFault(503, "journal_unavailable", err.Error())
	}
	return rows, nil
}

// PauseEventDelivery :
// Implements §4.8 `pause_event_delivery`.
func (d *Dispatcher) PauseEventDelivery(subscriptionID string) error {
	sub, ok := d.hub.Get(subscriptionID)
	if !ok {
		return newFault(404, "not_found", "subscription not found")
	}
	sub.Pause()
	return nil
}

// ResumeEventDelivery :
// Implements §4.8 `resume_event_delivery`.
func (d *Dispatcher) ResumeEventDelivery(subscriptionID string) error {
	sub, ok := d.hub.Get(subscriptionID)
	if !ok {
		return newFault(404, "not_found", "subscription not found")
	}
	sub.Resume()
	return nil
}

// SubscribeMyMessages :
// Implements §4.8 `subscribe_my_messages`: registers a new outbound
// event subscription for the caller.
func (d *Dispatcher) SubscribeMyMessages(subscriptionID, characterID string, admin bool) *events.Subscription {
	return d.hub.Register(subscriptionID, characterID, admin)
}

// Subscription :
// Looks up a previously registered subscription by ID, for a
// transport's write pump to drain. Not itself a §4.8 command.
func (d *Dispatcher) Subscription(subscriptionID string) (*events.Subscription, bool) {
	return d.hub.Get(subscriptionID)
}

// Unsubscribe :
// Tears down a connection's subscription on transport disconnect.
func (d *Dispatcher) Unsubscribe(subscriptionID string) {
	d.hub.Unregister(subscriptionID)
}

// TestReset :
// Implements §4.8 `test_reset`: wipes the in-memory world back to its
// seeded sector topology. Restricted to admin secret holders since it
// is destructive to every character's state. Known limitation: combat
// and corporation managers keep their own in-memory registries
// (`combat.Manager`'s encounter-by-sector index, nothing persistent in
// `corp.Manager`) which are not separately cleared by this call — a
// reset performed mid-encounter leaves a dangling encounter pointed at
// characters the world repository no longer remembers. Deployments
// that rely on `test_reset` between test runs should avoid resetting
// while any encounter is live.
func (d *Dispatcher) TestReset(secret string) error {
	if err := d.authorizeAdmin(secret); err != nil {
		return err
	}
	d.world.Reset()
	return nil
}
