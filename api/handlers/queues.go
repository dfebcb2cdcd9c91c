package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/callwise/staffing/api/middleware"
	"github.com/callwise/staffing/internal/events"
	"github.com/callwise/staffing/pkg/database/queries"
	"github.com/callwise/staffing/pkg/models"
	"github.com/callwise/staffing/pkg/validation"
	"github.com/gin-gonic/gin"
)

type QueueHandler struct {
	queueRepo *queries.QueueRepository
	publisher *events.Publisher
}

func NewQueueHandler(queueRepo *queries.QueueRepository, publisher *events.Publisher) *QueueHandler {
	return &QueueHandler{
		queueRepo: queueRepo,
		publisher: publisher,
	}
}

type CreateQueueRequest struct {
	Name   string              `json:"name" binding:"required,min=1,max=100"`
	Config *models.QueueConfig `json:"config"`
}

type UpdateQueueRequest struct {
	Name   string              `json:"name" binding:"omitempty,min=1,max=100"`
	Status string              `json:"status" binding:"omitempty,oneof=active archived"`
	Config *models.QueueConfig `json:"config"`
}

// getUserID extracts the authenticated user's ID from the context
func getUserID(c *gin.Context) (int, bool) {
	if uid, exists := c.Get("user_id"); exists {
		if id, ok := uid.(int); ok {
			return id, true
		}
	}
	return 0, false
}

func (h *QueueHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	queues, err := h.queueRepo.GetByUserID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch queues"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"queues": queues,
		"count":  len(queues),
	})
}

func (h *QueueHandler) Create(c *gin.Context) {
	var req CreateQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validation.ValidateQueueName(req.Name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Config != nil {
		if err := validateQueueConfig(req.Config); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	queue := models.NewQueue(validation.SanitizeString(req.Name))
	queue.Config = req.Config
	queue.UserID = &userID

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.queueRepo.Create(ctx, queue); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create queue"})
		return
	}

	if h.publisher != nil {
		h.publisher.WithTraceID(middleware.GetTraceID(c)).QueueCreated(queue)
	}

	c.JSON(http.StatusCreated, queue)
}

func (h *QueueHandler) Get(c *gin.Context) {
	queue, ok := h.ownedQueue(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, queue)
}

func (h *QueueHandler) Update(c *gin.Context) {
	queue, ok := h.ownedQueue(c)
	if !ok {
		return
	}

	var req UpdateQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		if err := validation.ValidateQueueName(req.Name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		queue.Name = validation.SanitizeString(req.Name)
	}
	if req.Status != "" {
		queue.Status = models.QueueStatus(req.Status)
	}
	if req.Config != nil {
		if err := validateQueueConfig(req.Config); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		queue.Config = req.Config
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.queueRepo.Update(ctx, queue); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update queue"})
		return
	}

	if h.publisher != nil {
		h.publisher.WithTraceID(middleware.GetTraceID(c)).QueueUpdated(queue)
	}

	c.JSON(http.StatusOK, queue)
}

func (h *QueueHandler) Delete(c *gin.Context) {
	queue, ok := h.ownedQueue(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.queueRepo.Delete(ctx, queue.ID); err != nil {
		if err == queries.ErrQueueNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "queue not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete queue"})
		return
	}

	if h.publisher != nil {
		h.publisher.WithTraceID(middleware.GetTraceID(c)).QueueDeleted(queue.ID)
	}

	c.Status(http.StatusNoContent)
}

func validateQueueConfig(cfg *models.QueueConfig) error {
	if cfg.ServiceLevelGoal < 0 || cfg.ServiceLevelGoal > 1 {
		return errors.New("service_level_goal must be between 0 and 1")
	}
	if cfg.AnswerWaitTime < 0 {
		return errors.New("answer_wait_time must be non-negative")
	}
	if cfg.MaxAvgWait < 0 {
		return errors.New("max_avg_wait must be non-negative")
	}
	return nil
}

// ownedQueue loads the queue from the path parameter and enforces ownership.
// On failure it writes the error response and returns ok=false.
func (h *QueueHandler) ownedQueue(c *gin.Context) (*models.Queue, bool) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return nil, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	queue, err := h.queueRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == queries.ErrQueueNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "queue not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch queue"})
		return nil, false
	}

	if queue.UserID == nil || *queue.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return nil, false
	}

	return queue, true
}
