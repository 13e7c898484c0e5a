package service

import (
	"context"
	"fmt"
	"time"

	"florist-service/internal/models"
	"florist-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Workflow enforces the order lifecycle: PENDING -> ASSIGNED -> COMPLETED,
// with an admin-only return to PENDING. It exclusively owns transitions of
// status, assigned florist and the two timestamps; all writes go through the
// gateway's compare-and-swap so concurrent callers against the same order
// resolve to exactly one winner.
type Workflow struct {
	gateway OrderGateway
	events  EventSink
	claims  Claimer
	logger  *zap.Logger
	now     func() time.Time
}

// NewWorkflow creates the workflow engine. claims may be nil; the claim fast
// path is an optimization, not a correctness requirement.
func NewWorkflow(gateway OrderGateway, events EventSink, claims Claimer) *Workflow {
	return &Workflow{
		gateway: gateway,
		events:  events,
		claims:  claims,
		logger:  util.GetLogger(),
		now:     time.Now,
	}
}

// AssignToSelf performs the PENDING -> ASSIGNED transition for a florist
// claiming an unassigned order. Exactly one of two concurrent callers wins;
// the loser gets Conflict.
func (w *Workflow) AssignToSelf(ctx context.Context, orderID, floristID string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Workflow.AssignToSelf")
	defer span.End()

	if w.claims != nil {
		claimed, err := w.claims.ClaimOrder(ctx, orderID, floristID)
		if err != nil {
			w.logger.Warn("Claim fast path unavailable, relying on CAS",
				zap.String("order_id", orderID), zap.Error(err))
		} else if !claimed {
			util.AssignmentConflictsTotal.WithLabelValues("claim_held").Inc()
			return nil, fmt.Errorf("order %s already claimed: %w", orderID, models.ErrConflict)
		}
	}

	order, err := w.gateway.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusPending {
		w.releaseClaim(ctx, orderID)
		util.AssignmentConflictsTotal.WithLabelValues("not_pending").Inc()
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.Status, models.ErrConflict)
	}

	assignedAt := w.now()
	expected := order.Version
	order.Status = models.OrderStatusAssigned
	order.AssignedFloristID = &floristID
	order.AssignedAt = &assignedAt

	if err := w.gateway.CompareAndSwapOrder(ctx, order, expected); err != nil {
		w.releaseClaim(ctx, orderID)
		util.AssignmentConflictsTotal.WithLabelValues("lost_race").Inc()
		return nil, err
	}

	util.OrdersSelfAssignedTotal.Inc()
	w.logger.Info("Order self-assigned",
		zap.String("order_id", orderID),
		zap.String("florist_id", floristID))

	w.publishAssigned(ctx, order, "", true)
	return order, nil
}

// Assign lets an admin assign a pending order or reassign an assigned one.
// Reassigning to the florist already holding the order restarts the timer
// rather than failing. COMPLETED is terminal.
func (w *Workflow) Assign(ctx context.Context, orderID, floristID string, actor models.User) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Workflow.Assign")
	defer span.End()

	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("assign requires admin role: %w", models.ErrForbidden)
	}

	order, err := w.gateway.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == models.OrderStatusCompleted {
		return nil, fmt.Errorf("order %s is completed: %w", orderID, models.ErrConflict)
	}

	previous := ""
	if order.AssignedFloristID != nil {
		previous = *order.AssignedFloristID
	}

	assignedAt := w.now()
	expected := order.Version
	order.Status = models.OrderStatusAssigned
	order.AssignedFloristID = &floristID
	order.AssignedAt = &assignedAt

	if err := w.gateway.CompareAndSwapOrder(ctx, order, expected); err != nil {
		util.AssignmentConflictsTotal.WithLabelValues("lost_race").Inc()
		return nil, err
	}

	util.OrdersAssignedTotal.Inc()
	w.logger.Info("Order assigned",
		zap.String("order_id", orderID),
		zap.String("florist_id", floristID),
		zap.String("previous_florist_id", previous),
		zap.String("admin_id", actor.ID))

	w.publishAssigned(ctx, order, previous, false)
	return order, nil
}

// Unassign returns an assigned order to PENDING. Admin only.
func (w *Workflow) Unassign(ctx context.Context, orderID string, actor models.User) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Workflow.Unassign")
	defer span.End()

	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("unassign requires admin role: %w", models.ErrForbidden)
	}

	order, err := w.gateway.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusAssigned {
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.Status, models.ErrConflict)
	}

	previous := *order.AssignedFloristID
	expected := order.Version
	order.Status = models.OrderStatusPending
	order.AssignedFloristID = nil
	order.AssignedAt = nil

	if err := w.gateway.CompareAndSwapOrder(ctx, order, expected); err != nil {
		return nil, err
	}

	w.releaseClaim(ctx, orderID)
	util.OrdersUnassignedTotal.Inc()
	w.logger.Info("Order unassigned",
		zap.String("order_id", orderID),
		zap.String("previous_florist_id", previous),
		zap.String("admin_id", actor.ID))

	if w.events != nil {
		event := &models.OrderUnassignedEvent{
			BaseEvent:         newBaseEvent(models.EventTypeOrderUnassigned, w.now()),
			OrderID:           order.ID,
			StoreID:           order.StoreID,
			PreviousFloristID: previous,
		}
		if err := w.events.PublishOrderUnassigned(ctx, event); err != nil {
			w.logger.Error("Failed to publish OrderUnassigned event", zap.Error(err))
		}
	}
	return order, nil
}

// Complete performs the ASSIGNED -> COMPLETED transition. A florist may only
// complete an order they hold; an admin may complete on the assignee's
// behalf. A clock reading earlier than the assignment time fails instead of
// being clamped.
func (w *Workflow) Complete(ctx context.Context, orderID string, actor models.User) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Workflow.Complete")
	defer span.End()

	order, err := w.gateway.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusAssigned {
		return nil, fmt.Errorf("order %s is %s: %w", orderID, order.Status, models.ErrConflict)
	}

	if actor.Role != models.RoleAdmin && *order.AssignedFloristID != actor.ID {
		return nil, fmt.Errorf("order %s is held by another florist: %w", orderID, models.ErrForbidden)
	}

	completedAt := w.now()
	if completedAt.Before(*order.AssignedAt) {
		return nil, fmt.Errorf("clock reports completion %s before assignment %s: %w",
			completedAt.Format(time.RFC3339), order.AssignedAt.Format(time.RFC3339), models.ErrConflict)
	}

	expected := order.Version
	order.Status = models.OrderStatusCompleted
	order.CompletedAt = &completedAt

	if err := w.gateway.CompareAndSwapOrder(ctx, order, expected); err != nil {
		return nil, err
	}

	minutes := completedAt.Sub(*order.AssignedAt).Minutes()
	util.OrdersCompletedTotal.Inc()
	util.CompletionMinutes.Observe(minutes)
	w.logger.Info("Order completed",
		zap.String("order_id", orderID),
		zap.String("florist_id", *order.AssignedFloristID),
		zap.Float64("minutes", minutes))

	if w.events != nil {
		event := &models.OrderCompletedEvent{
			BaseEvent:   newBaseEvent(models.EventTypeOrderCompleted, completedAt),
			OrderID:     order.ID,
			StoreID:     order.StoreID,
			FloristID:   *order.AssignedFloristID,
			AssignedAt:  *order.AssignedAt,
			CompletedAt: completedAt,
		}
		if err := w.events.PublishOrderCompleted(ctx, event); err != nil {
			w.logger.Error("Failed to publish OrderCompleted event", zap.Error(err))
		}
	}
	return order, nil
}

// UpdateRemarks replaces the order's remarks. Admin only; no status effect,
// so applying the same text twice is observably the same as once.
func (w *Workflow) UpdateRemarks(ctx context.Context, orderID, remarks string, actor models.User) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "Workflow.UpdateRemarks")
	defer span.End()

	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("remarks update requires admin role: %w", models.ErrForbidden)
	}

	order, err := w.gateway.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	expected := order.Version
	order.Remarks = remarks

	if err := w.gateway.CompareAndSwapOrder(ctx, order, expected); err != nil {
		return nil, err
	}

	w.logger.Info("Order remarks updated",
		zap.String("order_id", orderID),
		zap.String("admin_id", actor.ID))

	if w.events != nil {
		event := &models.RemarksUpdatedEvent{
			BaseEvent: newBaseEvent(models.EventTypeRemarksUpdated, w.now()),
			OrderID:   order.ID,
			Remarks:   remarks,
		}
		if err := w.events.PublishRemarksUpdated(ctx, event); err != nil {
			w.logger.Error("Failed to publish RemarksUpdated event", zap.Error(err))
		}
	}
	return order, nil
}

// GetOrder retrieves one order with inherited labels resolved.
func (w *Workflow) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return w.gateway.GetOrderByID(ctx, orderID)
}

func (w *Workflow) publishAssigned(ctx context.Context, order *models.Order, previous string, self bool) {
	if w.events == nil {
		return
	}
	eventType := models.EventTypeOrderAssigned
	if self {
		eventType = models.EventTypeOrderSelfAssigned
	}
	event := &models.OrderAssignedEvent{
		BaseEvent:         newBaseEvent(eventType, w.now()),
		OrderID:           order.ID,
		StoreID:           order.StoreID,
		FloristID:         *order.AssignedFloristID,
		PreviousFloristID: previous,
		AssignedAt:        *order.AssignedAt,
		SelfAssigned:      self,
	}
	if err := w.events.PublishOrderAssigned(ctx, event); err != nil {
		w.logger.Error("Failed to publish OrderAssigned event", zap.Error(err))
	}
}

func (w *Workflow) releaseClaim(ctx context.Context, orderID string) {
	if w.claims == nil {
		return
	}
	if err := w.claims.ReleaseClaim(ctx, orderID); err != nil {
		w.logger.Warn("Failed to release claim", zap.String("order_id", orderID), zap.Error(err))
	}
}

func newBaseEvent(eventType string, ts time.Time) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: ts,
	}
}
