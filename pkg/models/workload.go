package models

// Workload describes the offered call volume for one reporting interval.
// AvgHandleTime and IntervalLength are in seconds.
type Workload struct {
	ArrivalRate    float64 `json:"arrival_rate"`    // calls per interval
	AvgHandleTime  float64 `json:"avg_handle_time"` // seconds
	IntervalLength float64 `json:"interval_length"` // seconds
}

// Targets holds the answer-time objectives a staffing plan is solved for.
// AnswerWaitTime and MaxAvgWait are in seconds.
type Targets struct {
	ServiceLevelGoal float64 `json:"service_level_goal"` // fraction in [0,1]
	AnswerWaitTime   float64 `json:"answer_wait_time"`   // seconds
	MaxAvgWait       float64 `json:"max_avg_wait"`       // seconds
}
