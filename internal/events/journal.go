package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"spacecore/pkg/db"
	"spacecore/pkg/logger"
)

// JournaledEvent :
// One row of the persisted event journal, as returned by `event_query`.
type JournaledEvent struct {
	Sequence   int64
	Name       string
	Summary    string
	Payload    json.RawMessage
	RecordedAt time.Time
}

// Journal :
// Persists a best-effort copy of every emitted event to the optional
// database backing (§6 "Persisted state layout"). Recording happens
// after the in-memory hub has already fanned the event out; a
// journal failure never blocks or rolls back delivery, mirroring the
// teacher's `pkg/db.DB` which degrades to a no-op rather than failing
// hard when the pool is down.
type Journal struct {
	db  *db.DB
	log logger.Logger
}

// NewJournal :
func NewJournal(database *db.DB, log logger.Logger) *Journal {
	return &Journal{db: database, log: log}
}

// Record :
func (j *Journal) Record(ev Event) {
	if j == nil || j.db == nil || !j.db.Enabled() {
		return
	}
	body, err := json.Marshal(ev.Payload)
	if err != nil {
		j.log.Trace(logger.Warning, "journal", fmt.Sprintf("failed to marshal event %q: %v", ev.Name, err))
		return
	}
	_, err = j.db.Exec(context.Background(),
		`INSERT INTO event_journal (sequence, name, summary, payload, recorded_at) VALUES ($1, $2, $3, $4, $5)`,
		ev.Sequence, ev.Name, ev.Summary, body, ev.Timestamp)
	if err != nil {
		j.log.Trace(logger.Warning, "journal", fmt.Sprintf("failed to persist event %q: %v", ev.Name, err))
	}
}

// Query :
// Returns journaled events at or after `sinceSequence`, oldest first,
// for §4.8 `event_query`. Returns an empty slice (not an error) when
// no database backing is configured, since the journal is an optional
// replay aid rather than the event fabric's primary delivery path.
func (j *Journal) Query(sinceSequence int64, limit int) ([]JournaledEvent, error) {
	if j == nil || j.db == nil || !j.db.Enabled() {
		return nil, nil
	}
	rows, err := j.db.Query(context.Background(),
		`SELECT sequence, name, summary, payload, recorded_at FROM event_journal WHERE sequence >= $1 ORDER BY sequence ASC LIMIT $2`,
		sinceSequence, limit)
	if err != nil {
		return nil, fmt.Errorf("query event journal: %w", err)
	}
	defer rows.Close()

	var out []JournaledEvent
	for rows.Next() {
		var je JournaledEvent
		var payload []byte
		if err := rows.Scan(&je.Sequence, &je.Name, &je.Summary, &payload, &je.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan journaled event: %w", err)
		}
		je.Payload = json.RawMessage(payload)
		out = append(out, je)
	}
	return out, rows.Err()
}
