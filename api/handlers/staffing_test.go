package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callwise/staffing/internal/planner"
)

func newStaffingRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := NewStaffingHandler(planner.New(planner.Config{}), nil, nil, nil, nil)

	r := gin.New()
	r.POST("/staffing/metrics", h.ComputeMetrics)
	r.POST("/staffing/requirements", h.ComputeRequirements)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestComputeMetrics(t *testing.T) {
	r := newStaffingRouter(t)

	w := postJSON(t, r, "/staffing/metrics", gin.H{
		"agents":           25,
		"arrival_rate":     200,
		"avg_handle_time":  180,
		"interval_length":  1800,
		"answer_wait_time": 20,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp metricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 25, resp.Agents)
	assert.InDelta(t, 20.0, resp.Intensity, 1e-9)
	assert.InDelta(t, 0.8, resp.Occupancy, 1e-9)
	assert.Greater(t, resp.ServiceLevel, 0.8)
	assert.LessOrEqual(t, resp.ServiceLevel, 1.0)
	assert.Greater(t, resp.QueueingProb, resp.BlockingProb)
	assert.Greater(t, resp.AvgWaitTime, 0.0)
}

func TestComputeMetricsZeroWaitTime(t *testing.T) {
	r := newStaffingRouter(t)

	w := postJSON(t, r, "/staffing/metrics", gin.H{
		"agents":           25,
		"arrival_rate":     200,
		"avg_handle_time":  180,
		"interval_length":  1800,
		"answer_wait_time": 0,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp metricsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// An explicit zero wait target asks for the immediate-answer
	// probability, exactly 1 - C. It must not be swapped for the default
	// 20s target, which would report a higher level (~0.88 here).
	assert.InDelta(t, 1-resp.QueueingProb, resp.ServiceLevel, 1e-12)
	assert.Less(t, resp.ServiceLevel, 0.8)
}

func TestComputeMetricsValidation(t *testing.T) {
	r := newStaffingRouter(t)

	tests := []struct {
		name   string
		body   gin.H
		status int
	}{
		{
			name:   "missing fields",
			body:   gin.H{"agents": 25},
			status: http.StatusBadRequest,
		},
		{
			name: "negative arrival rate",
			body: gin.H{
				"agents":          25,
				"arrival_rate":    -5,
				"avg_handle_time": 180,
				"interval_length": 1800,
			},
			status: http.StatusBadRequest,
		},
		{
			name: "overloaded queue",
			body: gin.H{
				"agents":          10,
				"arrival_rate":    200,
				"avg_handle_time": 180,
				"interval_length": 1800,
			},
			status: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, r, "/staffing/metrics", tt.body)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestComputeRequirements(t *testing.T) {
	r := newStaffingRouter(t)

	w := postJSON(t, r, "/staffing/requirements", gin.H{
		"arrival_rate":    200,
		"avg_handle_time": 180,
		"interval_length": 1800,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Intensity        float64 `json:"intensity"`
		AgentsForSL      int     `json:"agents_for_sl"`
		AgentsForASA     int     `json:"agents_for_asa"`
		RecommendedCount int     `json:"recommended_agents"`
		ServiceLevel     float64 `json:"service_level"`
		Targets          struct {
			ServiceLevelGoal float64 `json:"service_level_goal"`
		} `json:"targets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.InDelta(t, 20.0, resp.Intensity, 1e-9)
	assert.Equal(t, 24, resp.AgentsForSL)
	assert.GreaterOrEqual(t, resp.RecommendedCount, resp.AgentsForSL)
	assert.GreaterOrEqual(t, resp.RecommendedCount, resp.AgentsForASA)
	assert.GreaterOrEqual(t, resp.ServiceLevel, 0.8)
	assert.InDelta(t, 0.8, resp.Targets.ServiceLevelGoal, 1e-9)
}

func TestComputeRequirementsCustomTargets(t *testing.T) {
	r := newStaffingRouter(t)

	strict := postJSON(t, r, "/staffing/requirements", gin.H{
		"arrival_rate":    200,
		"avg_handle_time": 180,
		"interval_length": 1800,
		"targets": gin.H{
			"service_level_goal": 0.95,
			"answer_wait_time":   10,
			"max_avg_wait":       5,
		},
	})
	require.Equal(t, http.StatusOK, strict.Code)

	relaxed := postJSON(t, r, "/staffing/requirements", gin.H{
		"arrival_rate":    200,
		"avg_handle_time": 180,
		"interval_length": 1800,
		"targets": gin.H{
			"service_level_goal": 0.7,
			"answer_wait_time":   30,
			"max_avg_wait":       60,
		},
	})
	require.Equal(t, http.StatusOK, relaxed.Code)

	var strictResp, relaxedResp struct {
		RecommendedCount int `json:"recommended_agents"`
	}
	require.NoError(t, json.Unmarshal(strict.Body.Bytes(), &strictResp))
	require.NoError(t, json.Unmarshal(relaxed.Body.Bytes(), &relaxedResp))

	assert.Greater(t, strictResp.RecommendedCount, relaxedResp.RecommendedCount)
}

func TestComputeRequirementsUnreachableGoal(t *testing.T) {
	r := newStaffingRouter(t)

	w := postJSON(t, r, "/staffing/requirements", gin.H{
		"arrival_rate":    200,
		"avg_handle_time": 180,
		"interval_length": 1800,
		"targets":         gin.H{"service_level_goal": 1.0},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
