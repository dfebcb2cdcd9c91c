package planner

import (
	"time"

	"github.com/callwise/staffing/internal/erlang"
	"github.com/callwise/staffing/internal/events"
	"github.com/callwise/staffing/internal/logger"
	"github.com/callwise/staffing/pkg/models"
)

type Config struct {
	ServiceLevelGoal float64
	AnswerWaitTime   float64
	MaxAvgWait       float64
	OccupancyAlert   float64
}

// Planner solves workloads for minimum staffing. It is stateless apart from
// its defaults; Plan is safe to call concurrently.
type Planner struct {
	config    Config
	publisher *events.Publisher
}

func New(cfg Config) *Planner {
	if cfg.ServiceLevelGoal == 0 {
		cfg.ServiceLevelGoal = 0.8
	}
	if cfg.AnswerWaitTime == 0 {
		cfg.AnswerWaitTime = 20.0
	}
	if cfg.MaxAvgWait == 0 {
		cfg.MaxAvgWait = 30.0
	}
	if cfg.OccupancyAlert == 0 {
		cfg.OccupancyAlert = 0.9
	}

	return &Planner{config: cfg}
}

// WithPublisher attaches an event publisher; plans and occupancy alerts are
// then announced on the bus.
func (p *Planner) WithPublisher(pub *events.Publisher) *Planner {
	p.publisher = pub
	return p
}

// Defaults returns the targets used when a request leaves them unset.
func (p *Planner) Defaults() models.Targets {
	return models.Targets{
		ServiceLevelGoal: p.config.ServiceLevelGoal,
		AnswerWaitTime:   p.config.AnswerWaitTime,
		MaxAvgWait:       p.config.MaxAvgWait,
	}
}

// Plan computes the minimum staffing for a workload: the smallest agent
// count meeting the service level goal, the smallest meeting the average
// wait target, and the predicted performance at the larger of the two.
// Unset (zero) target fields fall back to the planner defaults.
func (p *Planner) Plan(queueID string, workload models.Workload, targets models.Targets) (*models.StaffingPlan, error) {
	plan, err := p.plan(queueID, workload, targets)
	if err != nil && p.publisher != nil && queueID != "" {
		p.publisher.Error(queueID, "staffing plan computation failed", err)
	}
	return plan, err
}

func (p *Planner) plan(queueID string, workload models.Workload, targets models.Targets) (*models.StaffingPlan, error) {
	targets = p.fillTargets(targets)

	if p.publisher != nil && queueID != "" {
		p.publisher.WorkloadReceived(queueID, &workload)
	}

	intensity, err := erlang.Intensity(workload.ArrivalRate, workload.AvgHandleTime, workload.IntervalLength)
	if err != nil {
		return nil, err
	}

	agentsSL, err := erlang.AgentsForServiceLevel(
		workload.ArrivalRate, workload.AvgHandleTime, workload.IntervalLength,
		targets.AnswerWaitTime, targets.ServiceLevelGoal,
	)
	if err != nil {
		return nil, err
	}

	agentsASA, err := erlang.AgentsForASA(
		workload.ArrivalRate, workload.AvgHandleTime, workload.IntervalLength,
		targets.MaxAvgWait,
	)
	if err != nil {
		return nil, err
	}

	recommended := agentsSL
	if agentsASA > recommended {
		recommended = agentsASA
	}

	sl, err := erlang.ServiceLevel(recommended,
		workload.ArrivalRate, workload.AvgHandleTime, workload.IntervalLength,
		targets.AnswerWaitTime,
	)
	if err != nil {
		return nil, err
	}

	asa, err := erlang.AvgWaitTime(recommended,
		workload.ArrivalRate, workload.AvgHandleTime, workload.IntervalLength,
	)
	if err != nil {
		return nil, err
	}

	occ, err := erlang.Occupancy(recommended, intensity)
	if err != nil {
		return nil, err
	}

	queueingProb, err := erlang.ErlangC(recommended, intensity)
	if err != nil {
		return nil, err
	}

	plan := &models.StaffingPlan{
		ID:               models.NewUUID(),
		QueueID:          queueID,
		Timestamp:        time.Now(),
		Workload:         workload,
		Targets:          targets,
		Intensity:        intensity,
		AgentsForSL:      agentsSL,
		AgentsForASA:     agentsASA,
		RecommendedCount: recommended,
		ServiceLevel:     sl,
		AvgWaitTime:      asa,
		Occupancy:        occ,
		QueueingProb:     queueingProb,
		OccupancyAlert:   occ > p.config.OccupancyAlert,
	}

	logger.WithQueue(queueID).Debugf(
		"Plan: intensity=%.2f agents=%d sl=%.3f asa=%.1fs occ=%.3f",
		intensity, recommended, sl, asa, occ,
	)

	// Ad-hoc computations carry no queue; only queue-bound plans are announced.
	if p.publisher != nil && queueID != "" {
		p.publisher.PlanComputed(queueID, plan)
		if plan.OccupancyAlert {
			p.publisher.Alert(queueID, models.SeverityWarning,
				"Recommended staffing runs above the occupancy threshold",
				map[string]interface{}{
					"occupancy": occ,
					"threshold": p.config.OccupancyAlert,
				})
		}
	}

	return plan, nil
}

func (p *Planner) fillTargets(t models.Targets) models.Targets {
	if t.ServiceLevelGoal == 0 {
		t.ServiceLevelGoal = p.config.ServiceLevelGoal
	}
	if t.AnswerWaitTime == 0 {
		t.AnswerWaitTime = p.config.AnswerWaitTime
	}
	if t.MaxAvgWait == 0 {
		t.MaxAvgWait = p.config.MaxAvgWait
	}
	return t
}
