package queries

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/callwise/staffing/pkg/models"
)

var ErrPlanNotFound = errors.New("staffing plan not found")

type PlanRepository struct {
	db *sql.DB
}

func NewPlanRepository(db *sql.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

const planColumns = `
	id, queue_id, timestamp,
	arrival_rate, avg_handle_time, interval_length,
	service_level_goal, answer_wait_time, max_avg_wait,
	intensity, agents_for_sl, agents_for_asa, recommended_agents,
	service_level, avg_wait_time, occupancy, queueing_probability, occupancy_alert`

func (r *PlanRepository) Insert(ctx context.Context, plan *models.StaffingPlan) error {
	query := `
		INSERT INTO staffing_plans (` + planColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.db.ExecContext(ctx, query,
		plan.ID,
		plan.QueueID,
		plan.Timestamp,
		plan.Workload.ArrivalRate,
		plan.Workload.AvgHandleTime,
		plan.Workload.IntervalLength,
		plan.Targets.ServiceLevelGoal,
		plan.Targets.AnswerWaitTime,
		plan.Targets.MaxAvgWait,
		plan.Intensity,
		plan.AgentsForSL,
		plan.AgentsForASA,
		plan.RecommendedCount,
		plan.ServiceLevel,
		plan.AvgWaitTime,
		plan.Occupancy,
		plan.QueueingProb,
		plan.OccupancyAlert,
	)
	return err
}

func (r *PlanRepository) ListByQueue(ctx context.Context, queueID string, from, to time.Time, limit int) ([]*models.StaffingPlan, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + planColumns + `
		FROM staffing_plans
		WHERE queue_id = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp DESC
		LIMIT $4`

	rows, err := r.db.QueryContext(ctx, query, queueID, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*models.StaffingPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	return plans, rows.Err()
}

func (r *PlanRepository) Latest(ctx context.Context, queueID string) (*models.StaffingPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM staffing_plans
		WHERE queue_id = $1
		ORDER BY timestamp DESC
		LIMIT 1`

	plan, err := scanPlan(r.db.QueryRowContext(ctx, query, queueID))
	if err == sql.ErrNoRows {
		return nil, ErrPlanNotFound
	}
	return plan, err
}

func scanPlan(row rowScanner) (*models.StaffingPlan, error) {
	var plan models.StaffingPlan

	err := row.Scan(
		&plan.ID,
		&plan.QueueID,
		&plan.Timestamp,
		&plan.Workload.ArrivalRate,
		&plan.Workload.AvgHandleTime,
		&plan.Workload.IntervalLength,
		&plan.Targets.ServiceLevelGoal,
		&plan.Targets.AnswerWaitTime,
		&plan.Targets.MaxAvgWait,
		&plan.Intensity,
		&plan.AgentsForSL,
		&plan.AgentsForASA,
		&plan.RecommendedCount,
		&plan.ServiceLevel,
		&plan.AvgWaitTime,
		&plan.Occupancy,
		&plan.QueueingProb,
		&plan.OccupancyAlert,
	)
	if err != nil {
		return nil, err
	}

	return &plan, nil
}
