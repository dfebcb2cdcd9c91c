package queries

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// StoredEvent is a row from the events audit table. Data is kept as raw
// JSON; its shape depends on the event type.
type StoredEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Severity  string          `json:"severity"`
	QueueID   *string         `json:"queue_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	TraceID   *string         `json:"trace_id,omitempty"`
}

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, type, severity, queue_id, timestamp, message, data, trace_id`

func (r *EventRepository) ListByQueue(ctx context.Context, queueID string, from, to time.Time, limit int) ([]*StoredEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE queue_id = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp DESC
		LIMIT $4`

	rows, err := r.db.QueryContext(ctx, query, queueID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListRecentByUserID returns the latest events across all queues the user owns.
func (r *EventRepository) ListRecentByUserID(ctx context.Context, userID, limit int) ([]*StoredEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT e.id, e.type, e.severity, e.queue_id, e.timestamp, e.message, e.data, e.trace_id
		FROM events e
		JOIN queues q ON q.id = e.queue_id
		WHERE q.user_id = $1
		ORDER BY e.timestamp DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectEvents(rows)
}

func collectEvents(rows *sql.Rows) ([]*StoredEvent, error) {
	var events []*StoredEvent
	for rows.Next() {
		var e StoredEvent
		var data []byte
		err := rows.Scan(
			&e.ID,
			&e.Type,
			&e.Severity,
			&e.QueueID,
			&e.Timestamp,
			&e.Message,
			&data,
			&e.TraceID,
		)
		if err != nil {
			return nil, err
		}
		e.Data = data
		events = append(events, &e)
	}
	return events, rows.Err()
}
