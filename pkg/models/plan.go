package models

import "time"

// StaffingPlan is the result of solving one workload against its targets:
// the minimum staffing for each objective plus the predicted performance at
// the recommended level.
type StaffingPlan struct {
	ID        string    `json:"id"`
	QueueID   string    `json:"queue_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Workload Workload `json:"workload"`
	Targets  Targets  `json:"targets"`

	Intensity        float64 `json:"intensity"`          // offered load, Erlangs
	AgentsForSL      int     `json:"agents_for_sl"`      // minimum agents meeting the service level goal
	AgentsForASA     int     `json:"agents_for_asa"`     // minimum agents meeting the average wait target
	RecommendedCount int     `json:"recommended_agents"` // max of the two minimums

	// Predicted performance at RecommendedCount.
	ServiceLevel    float64 `json:"service_level"`
	AvgWaitTime     float64 `json:"avg_wait_time"` // seconds
	Occupancy       float64 `json:"occupancy"`
	QueueingProb    float64 `json:"queueing_probability"`
	OccupancyAlert  bool    `json:"occupancy_alert"`
}

// MeetsTargets reports whether the recommended staffing satisfies both
// answer-time objectives.
func (p *StaffingPlan) MeetsTargets() bool {
	return p.ServiceLevel >= p.Targets.ServiceLevelGoal && p.AvgWaitTime <= p.Targets.MaxAvgWait
}
