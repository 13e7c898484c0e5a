package models

import "time"

// Event types
const (
	EventTypeOrderAssigned     = "ORDER_ASSIGNED"
	EventTypeOrderSelfAssigned = "ORDER_SELF_ASSIGNED"
	EventTypeOrderUnassigned   = "ORDER_UNASSIGNED"
	EventTypeOrderCompleted    = "ORDER_COMPLETED"
	EventTypeRemarksUpdated    = "ORDER_REMARKS_UPDATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderAssignedEvent published when an order is assigned or reassigned.
// PreviousFloristID is empty for a fresh assignment.
type OrderAssignedEvent struct {
	BaseEvent
	OrderID           string    `json:"order_id"`
	StoreID           string    `json:"store_id"`
	FloristID         string    `json:"florist_id"`
	PreviousFloristID string    `json:"previous_florist_id,omitempty"`
	AssignedAt        time.Time `json:"assigned_at"`
	SelfAssigned      bool      `json:"self_assigned"`
}

// OrderUnassignedEvent published when an admin returns an order to pending.
type OrderUnassignedEvent struct {
	BaseEvent
	OrderID           string `json:"order_id"`
	StoreID           string `json:"store_id"`
	PreviousFloristID string `json:"previous_florist_id"`
}

// OrderCompletedEvent published when an order is completed. Carries enough
// for analytics to derive completion latency without a store read.
type OrderCompletedEvent struct {
	BaseEvent
	OrderID     string    `json:"order_id"`
	StoreID     string    `json:"store_id"`
	FloristID   string    `json:"florist_id"`
	AssignedAt  time.Time `json:"assigned_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// RemarksUpdatedEvent published when an admin edits order remarks.
type RemarksUpdatedEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Remarks string `json:"remarks"`
}
