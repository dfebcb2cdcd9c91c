package events

import (
	"fmt"

	"github.com/callwise/staffing/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) WorkloadReceived(queueID string, workload *models.Workload) {
	event := models.NewEvent(models.EventTypeWorkloadReceived, queueID, "Workload received").
		WithData(workload)
	p.publish(event)
}

func (p *Publisher) PlanComputed(queueID string, plan *models.StaffingPlan) {
	msg := fmt.Sprintf("Staffing plan computed: %d agents", plan.RecommendedCount)
	event := models.NewEvent(models.EventTypePlanComputed, queueID, msg).
		WithData(plan)

	if plan.OccupancyAlert {
		event.WithSeverity(models.SeverityWarning)
	}

	p.publish(event)
}

func (p *Publisher) QueueCreated(queue *models.Queue) {
	event := models.NewEvent(models.EventTypeQueueCreated, queue.ID, "Queue created").
		WithData(queue)
	p.publish(event)
}

func (p *Publisher) QueueUpdated(queue *models.Queue) {
	event := models.NewEvent(models.EventTypeQueueUpdated, queue.ID, "Queue updated").
		WithData(queue)
	p.publish(event)
}

func (p *Publisher) QueueDeleted(queueID string) {
	p.publish(models.NewEvent(models.EventTypeQueueDeleted, queueID, "Queue deleted"))
}

func (p *Publisher) Alert(queueID string, severity models.EventSeverity, message string, data interface{}) {
	event := models.NewEvent(models.EventTypeAlert, queueID, message).
		WithSeverity(severity).
		WithData(data)
	p.publish(event)
}

func (p *Publisher) Error(queueID string, message string, err error) {
	event := models.NewEvent(models.EventTypeError, queueID, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
