package models

import (
	"encoding/json"
	"time"
)

type QueueStatus string

const (
	QueueStatusActive   QueueStatus = "active"
	QueueStatusArchived QueueStatus = "archived"
)

// QueueConfig carries the default planning targets for a queue. Requests may
// override them per plan.
type QueueConfig struct {
	ServiceLevelGoal float64 `json:"service_level_goal,omitempty"`
	AnswerWaitTime   float64 `json:"answer_wait_time,omitempty"`
	MaxAvgWait       float64 `json:"max_avg_wait,omitempty"`
}

// Queue is a persisted staffing scenario: one call queue with its answer-time
// objectives.
type Queue struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Status    QueueStatus  `json:"status"`
	Config    *QueueConfig `json:"config,omitempty"`
	UserID    *int         `json:"user_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func NewQueue(name string) *Queue {
	now := time.Now()
	return &Queue{
		ID:        NewUUID(),
		Name:      name,
		Status:    QueueStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (q *Queue) IsActive() bool {
	return q.Status == QueueStatusActive
}

func (q *Queue) ConfigJSON() ([]byte, error) {
	if q.Config == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(q.Config)
}

func (q *Queue) ParseConfig(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	q.Config = &QueueConfig{}
	return json.Unmarshal(data, q.Config)
}

// Targets merges the queue defaults with fallback values for anything unset.
func (q *Queue) Targets(fallback Targets) Targets {
	t := fallback
	if q.Config == nil {
		return t
	}
	if q.Config.ServiceLevelGoal > 0 {
		t.ServiceLevelGoal = q.Config.ServiceLevelGoal
	}
	if q.Config.AnswerWaitTime > 0 {
		t.AnswerWaitTime = q.Config.AnswerWaitTime
	}
	if q.Config.MaxAvgWait > 0 {
		t.MaxAvgWait = q.Config.MaxAvgWait
	}
	return t
}
