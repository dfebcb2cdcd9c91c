package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callwise/staffing/internal/erlang"
	"github.com/callwise/staffing/internal/events"
	"github.com/callwise/staffing/pkg/models"
)

func testWorkload() models.Workload {
	return models.Workload{
		ArrivalRate:    200,
		AvgHandleTime:  180,
		IntervalLength: 1800,
	}
}

func TestPlan(t *testing.T) {
	p := New(Config{})

	plan, err := p.Plan("q1", testWorkload(), models.Targets{
		ServiceLevelGoal: 0.8,
		AnswerWaitTime:   20,
		MaxAvgWait:       30,
	})
	require.NoError(t, err)

	assert.InDelta(t, 20.0, plan.Intensity, 1e-9)
	assert.Greater(t, plan.AgentsForSL, 20)
	assert.Greater(t, plan.AgentsForASA, 20)
	assert.GreaterOrEqual(t, plan.RecommendedCount, plan.AgentsForSL)
	assert.GreaterOrEqual(t, plan.RecommendedCount, plan.AgentsForASA)

	assert.GreaterOrEqual(t, plan.ServiceLevel, 0.8)
	assert.LessOrEqual(t, plan.AvgWaitTime, 30.0)
	assert.True(t, plan.MeetsTargets())

	assert.Greater(t, plan.Occupancy, 0.0)
	assert.Less(t, plan.Occupancy, 1.0)
	assert.Greater(t, plan.QueueingProb, 0.0)
	assert.Less(t, plan.QueueingProb, 1.0)
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, "q1", plan.QueueID)
}

func TestPlan_DefaultTargets(t *testing.T) {
	p := New(Config{ServiceLevelGoal: 0.9, AnswerWaitTime: 15, MaxAvgWait: 10})

	plan, err := p.Plan("q1", testWorkload(), models.Targets{})
	require.NoError(t, err)

	assert.Equal(t, 0.9, plan.Targets.ServiceLevelGoal)
	assert.Equal(t, 15.0, plan.Targets.AnswerWaitTime)
	assert.Equal(t, 10.0, plan.Targets.MaxAvgWait)
	assert.GreaterOrEqual(t, plan.ServiceLevel, 0.9)
}

func TestPlan_TighterGoalNeedsMoreAgents(t *testing.T) {
	p := New(Config{})
	w := testWorkload()

	relaxed, err := p.Plan("q1", w, models.Targets{ServiceLevelGoal: 0.7, AnswerWaitTime: 30, MaxAvgWait: 60})
	require.NoError(t, err)

	strict, err := p.Plan("q1", w, models.Targets{ServiceLevelGoal: 0.95, AnswerWaitTime: 10, MaxAvgWait: 5})
	require.NoError(t, err)

	assert.Greater(t, strict.RecommendedCount, relaxed.RecommendedCount)
}

func TestPlan_InvalidWorkload(t *testing.T) {
	p := New(Config{})

	_, err := p.Plan("q1", models.Workload{ArrivalRate: 0, AvgHandleTime: 180, IntervalLength: 1800}, models.Targets{})
	assert.ErrorIs(t, err, erlang.ErrInvalidInput)
}

func TestPlan_UnreachableGoal(t *testing.T) {
	p := New(Config{})

	_, err := p.Plan("q1", testWorkload(), models.Targets{ServiceLevelGoal: 1.0, AnswerWaitTime: 20, MaxAvgWait: 30})
	assert.ErrorIs(t, err, erlang.ErrSearchExhausted)
}

func TestPlan_OccupancyAlertEvent(t *testing.T) {
	bus := events.NewEventBus(10)
	alerts := bus.Subscribe(models.EventTypeAlert)
	plans := bus.Subscribe(models.EventTypePlanComputed)

	// A threshold low enough that any sane recommendation trips it.
	p := New(Config{OccupancyAlert: 0.1}).WithPublisher(events.NewPublisher(bus))

	plan, err := p.Plan("q1", testWorkload(), models.Targets{})
	require.NoError(t, err)
	assert.True(t, plan.OccupancyAlert)

	planEvent := <-plans
	assert.Equal(t, models.EventTypePlanComputed, planEvent.Type)
	assert.Equal(t, "q1", planEvent.QueueID)
	assert.Equal(t, models.SeverityWarning, planEvent.Severity)

	alertEvent := <-alerts
	assert.Equal(t, models.EventTypeAlert, alertEvent.Type)
	assert.Equal(t, models.SeverityWarning, alertEvent.Severity)
}
