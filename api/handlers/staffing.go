package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/callwise/staffing/internal/erlang"
	"github.com/callwise/staffing/internal/planner"
	"github.com/callwise/staffing/pkg/config"
	"github.com/callwise/staffing/pkg/database/queries"
	"github.com/callwise/staffing/pkg/models"
)

type StaffingHandler struct {
	planner   *planner.Planner
	planRepo  *queries.PlanRepository
	queueRepo *queries.QueueRepository
	eventRepo *queries.EventRepository
	config    *config.APIConfig
}

func NewStaffingHandler(pl *planner.Planner, planRepo *queries.PlanRepository, queueRepo *queries.QueueRepository, eventRepo *queries.EventRepository, cfg *config.APIConfig) *StaffingHandler {
	return &StaffingHandler{
		planner:   pl,
		planRepo:  planRepo,
		queueRepo: queueRepo,
		eventRepo: eventRepo,
		config:    cfg,
	}
}

type metricsRequest struct {
	Agents         int      `json:"agents" binding:"required"`
	ArrivalRate    float64  `json:"arrival_rate" binding:"required"`
	AvgHandleTime  float64  `json:"avg_handle_time" binding:"required"`
	IntervalLength float64  `json:"interval_length" binding:"required"`
	AnswerWaitTime *float64 `json:"answer_wait_time"` // zero means immediate answer; nil falls back to the default
}

type metricsResponse struct {
	Agents       int     `json:"agents"`
	Intensity    float64 `json:"intensity"`
	BlockingProb float64 `json:"blocking_probability"`
	QueueingProb float64 `json:"queueing_probability"`
	ServiceLevel float64 `json:"service_level"`
	AvgWaitTime  float64 `json:"avg_wait_time"`
	Occupancy    float64 `json:"occupancy"`
}

// ComputeMetrics evaluates the queueing model for a fixed agent count.
// It is stateless: nothing is persisted and no queue is involved.
func (h *StaffingHandler) ComputeMetrics(c *gin.Context) {
	var req metricsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	waitTime := h.planner.Defaults().AnswerWaitTime
	if req.AnswerWaitTime != nil {
		waitTime = *req.AnswerWaitTime
	}

	intensity, err := erlang.Intensity(req.ArrivalRate, req.AvgHandleTime, req.IntervalLength)
	if err != nil {
		respondErlangError(c, err)
		return
	}

	blocking, err := erlang.ErlangB(req.Agents, intensity)
	if err != nil {
		respondErlangError(c, err)
		return
	}

	queueing, err := erlang.ErlangC(req.Agents, intensity)
	if err != nil {
		respondErlangError(c, err)
		return
	}

	sl, err := erlang.ServiceLevel(req.Agents, req.ArrivalRate, req.AvgHandleTime, req.IntervalLength, waitTime)
	if err != nil {
		respondErlangError(c, err)
		return
	}

	asa, err := erlang.AvgWaitTime(req.Agents, req.ArrivalRate, req.AvgHandleTime, req.IntervalLength)
	if err != nil {
		respondErlangError(c, err)
		return
	}

	occ, err := erlang.Occupancy(req.Agents, intensity)
	if err != nil {
		respondErlangError(c, err)
		return
	}

	c.JSON(http.StatusOK, metricsResponse{
		Agents:       req.Agents,
		Intensity:    intensity,
		BlockingProb: blocking,
		QueueingProb: queueing,
		ServiceLevel: sl,
		AvgWaitTime:  asa,
		Occupancy:    occ,
	})
}

type requirementsRequest struct {
	ArrivalRate    float64        `json:"arrival_rate" binding:"required"`
	AvgHandleTime  float64        `json:"avg_handle_time" binding:"required"`
	IntervalLength float64        `json:"interval_length" binding:"required"`
	Targets        models.Targets `json:"targets"`
}

// ComputeRequirements returns the minimum staffing for each answer-time
// objective. Unset targets fall back to the planner defaults.
func (h *StaffingHandler) ComputeRequirements(c *gin.Context) {
	var req requirementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	workload := models.Workload{
		ArrivalRate:    req.ArrivalRate,
		AvgHandleTime:  req.AvgHandleTime,
		IntervalLength: req.IntervalLength,
	}

	plan, err := h.planner.Plan("", workload, req.Targets)
	if err != nil {
		respondErlangError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

type planRequest struct {
	ArrivalRate    float64 `json:"arrival_rate" binding:"required"`
	AvgHandleTime  float64 `json:"avg_handle_time" binding:"required"`
	IntervalLength float64 `json:"interval_length" binding:"required"`
}

// CreatePlan solves a workload against the queue's configured targets and
// records the resulting plan.
func (h *StaffingHandler) CreatePlan(c *gin.Context) {
	queue, ok := h.verifyQueueOwnership(c)
	if !ok {
		return
	}

	if !queue.IsActive() {
		c.JSON(http.StatusConflict, gin.H{"error": "queue is archived"})
		return
	}

	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	workload := models.Workload{
		ArrivalRate:    req.ArrivalRate,
		AvgHandleTime:  req.AvgHandleTime,
		IntervalLength: req.IntervalLength,
	}

	plan, err := h.planner.Plan(queue.ID, workload, queue.Targets(h.planner.Defaults()))
	if err != nil {
		respondErlangError(c, err)
		return
	}

	if err := h.planRepo.Insert(c.Request.Context(), plan); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store staffing plan"})
		return
	}

	c.JSON(http.StatusCreated, plan)
}

func (h *StaffingHandler) GetPlans(c *gin.Context) {
	queue, ok := h.verifyQueueOwnership(c)
	if !ok {
		return
	}

	from, to := h.parseTimeRange(c)
	limit := h.parseLimit(c, h.getDefaultLimit())

	plans, err := h.planRepo.ListByQueue(c.Request.Context(), queue.ID, from, to, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch staffing plans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queue_id": queue.ID,
		"from":     from,
		"to":       to,
		"data":     plans,
		"count":    len(plans),
	})
}

func (h *StaffingHandler) GetLatestPlan(c *gin.Context) {
	queue, ok := h.verifyQueueOwnership(c)
	if !ok {
		return
	}

	plan, err := h.planRepo.Latest(c.Request.Context(), queue.ID)
	if err != nil {
		if err == queries.ErrPlanNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "no staffing plan found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch staffing plan"})
		return
	}

	c.JSON(http.StatusOK, plan)
}

func (h *StaffingHandler) GetEvents(c *gin.Context) {
	queue, ok := h.verifyQueueOwnership(c)
	if !ok {
		return
	}

	from, to := h.parseTimeRange(c)
	limit := h.parseLimit(c, 50)

	events, err := h.eventRepo.ListByQueue(c.Request.Context(), queue.ID, from, to, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queue_id": queue.ID,
		"from":     from,
		"to":       to,
		"data":     events,
		"count":    len(events),
	})
}

func (h *StaffingHandler) GetRecentEvents(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	limit := h.parseLimit(c, 20)

	events, err := h.eventRepo.ListRecentByUserID(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recent events"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  events,
		"count": len(events),
	})
}

// verifyQueueOwnership loads the queue from the path parameter and checks
// that the authenticated user owns it.
func (h *StaffingHandler) verifyQueueOwnership(c *gin.Context) (*models.Queue, bool) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return nil, false
	}

	queue, err := h.queueRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if err == queries.ErrQueueNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "queue not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify queue ownership"})
		return nil, false
	}

	if queue.UserID == nil || *queue.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return nil, false
	}

	return queue, true
}

func (h *StaffingHandler) getDefaultLimit() int {
	if h.config != nil && h.config.DefaultLimit > 0 {
		return h.config.DefaultLimit
	}
	return 100
}

func (h *StaffingHandler) getMaxLimit() int {
	if h.config != nil && h.config.MaxLimit > 0 {
		return h.config.MaxLimit
	}
	return 1000
}

func (h *StaffingHandler) parseTimeRange(c *gin.Context) (time.Time, time.Time) {
	to := time.Now()
	from := to.Add(-24 * time.Hour)

	if fromStr := c.Query("from"); fromStr != "" {
		if parsed, err := time.Parse(time.RFC3339, fromStr); err == nil {
			from = parsed
		}
	}

	if toStr := c.Query("to"); toStr != "" {
		if parsed, err := time.Parse(time.RFC3339, toStr); err == nil {
			to = parsed
		}
	}

	return from, to
}

func (h *StaffingHandler) parseLimit(c *gin.Context, defaultLimit int) int {
	maxLimit := h.getMaxLimit()
	limit := defaultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
			if limit > maxLimit {
				limit = maxLimit
			}
		}
	}
	return limit
}

// respondErlangError maps queueing-model errors to HTTP statuses: bad
// parameters are the client's fault, an overloaded or unsolvable workload
// is a valid request the model cannot satisfy.
func respondErlangError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, erlang.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, erlang.ErrUnstable), errors.Is(err, erlang.ErrSearchExhausted):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "staffing computation failed"})
	}
}
