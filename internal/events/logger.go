package events

import (
	"context"
	"encoding/json"

	"github.com/callwise/staffing/internal/logger"
	"github.com/callwise/staffing/pkg/database"
	"github.com/callwise/staffing/pkg/models"
)

// EventLogger drains the event stream into the structured log and records
// each event in the audit table.
type EventLogger struct {
	db        *database.DB
	eventChan <-chan *models.Event
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewEventLogger(db *database.DB, eventChan <-chan *models.Event) *EventLogger {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventLogger{
		db:        db,
		eventChan: eventChan,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (l *EventLogger) Start() {
	go l.run()
}

func (l *EventLogger) Stop() {
	l.cancel()
}

func (l *EventLogger) run() {
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.eventChan:
			if !ok {
				return
			}
			l.processEvent(event)
		}
	}
}

func (l *EventLogger) processEvent(event *models.Event) {
	entry := logger.WithFields(map[string]interface{}{
		"event_type": event.Type,
		"queue_id":   event.QueueID,
		"severity":   event.Severity,
		"trace_id":   event.TraceID,
	})

	switch event.Severity {
	case models.SeverityCritical:
		entry.Error(event.Message)
	case models.SeverityWarning:
		entry.Warn(event.Message)
	default:
		entry.Info(event.Message)
	}

	l.persistEvent(event)
}

func (l *EventLogger) persistEvent(event *models.Event) {
	if l.db == nil {
		return
	}

	var data []byte
	if event.Data != nil {
		var err error
		data, err = json.Marshal(event.Data)
		if err != nil {
			logger.Errorf("Failed to marshal event data: %v", err)
			data = nil
		}
	}

	// queue_id column is a nullable UUID; ad-hoc events carry none.
	var queueID interface{}
	if event.QueueID != "" {
		queueID = event.QueueID
	}

	query := `
		INSERT INTO events (id, type, severity, queue_id, timestamp, message, data, trace_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := l.db.ExecContext(l.ctx, query,
		event.ID,
		event.Type,
		event.Severity,
		queueID,
		event.Timestamp,
		event.Message,
		data,
		event.TraceID,
	)
	if err != nil {
		logger.Errorf("Failed to persist event: %v", err)
	}
}
