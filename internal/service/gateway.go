package service

import (
	"context"
	"time"

	"florist-service/internal/models"
)

// OrderGateway is the narrow persistence surface the workflow engine needs.
// *store.Store satisfies it; tests use an in-memory fake. The engine itself
// holds no process-wide mutable state.
type OrderGateway interface {
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	FetchOrders(ctx context.Context, date string, storeIDs []string) ([]models.Order, error)
	// CompareAndSwapOrder must reject the write with models.ErrConflict when
	// the stored version no longer matches expectedVersion.
	CompareAndSwapOrder(ctx context.Context, order *models.Order, expectedVersion int64) error
}

// AnalyticsGateway supplies the completed-order snapshot and florist roster.
type AnalyticsGateway interface {
	FetchCompletedOrders(ctx context.Context, start, end time.Time, storeIDs []string) ([]models.Order, error)
	FetchFlorists(ctx context.Context) ([]models.User, error)
}

// LabelGateway is the persistence surface of the label registry.
type LabelGateway interface {
	FetchLabels(ctx context.Context) ([]models.ProductLabel, error)
	FetchLabelsByCategory(ctx context.Context, category string) ([]models.ProductLabel, error)
	UpsertLabel(ctx context.Context, label *models.ProductLabel) error
}

// EventSink receives workflow transition events. broker.EventPublisher
// satisfies it; publishing is best-effort and never blocks a transition.
type EventSink interface {
	PublishOrderAssigned(ctx context.Context, event *models.OrderAssignedEvent) error
	PublishOrderUnassigned(ctx context.Context, event *models.OrderUnassignedEvent) error
	PublishOrderCompleted(ctx context.Context, event *models.OrderCompletedEvent) error
	PublishRemarksUpdated(ctx context.Context, event *models.RemarksUpdatedEvent) error
}

// Claimer is the optional Redis fast path guarding self-assignment races.
// The database compare-and-swap stays authoritative; a Claimer outage only
// removes the short-circuit.
type Claimer interface {
	ClaimOrder(ctx context.Context, orderID, floristID string) (bool, error)
	ReleaseClaim(ctx context.Context, orderID string) error
}
