package models

import "time"

// RetailStore represents a physical store that orders originate from.
// Reference data only; never mutated by this service.
type RetailStore struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Product represents a catalog item referenced by orders. Its difficulty and
// product-type labels are inherited by orders at read time.
type Product struct {
	ID                 int64     `db:"id" json:"id"`
	StoreID            string    `db:"store_id" json:"store_id"`
	Name               string    `db:"name" json:"name"`
	DifficultyLabelID  *int64    `db:"difficulty_label_id" json:"difficulty_label_id,omitempty"`
	ProductTypeLabelID *int64    `db:"product_type_label_id" json:"product_type_label_id,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// ProductLabel is an admin-managed tag carrying a sort priority.
// Lower priority means higher precedence.
type ProductLabel struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category"`
	Priority int    `db:"priority" json:"priority"`
	Color    string `db:"color" json:"color"`
}

// Order is one unit of fulfillment work for a delivery date.
// DifficultyLabel and ProductTypeLabel are resolved from the product at read
// time and never stored on the order row.
type Order struct {
	ID                string     `db:"id" json:"id"`
	StoreID           string     `db:"store_id" json:"store_id"`
	ProductID         int64      `db:"product_id" json:"product_id"`
	ProductName       string     `db:"product_name" json:"product_name"`
	Variant           string     `db:"variant" json:"variant"`
	Timeslot          string     `db:"timeslot" json:"timeslot"`
	Remarks           string     `db:"remarks" json:"remarks"`
	Customizations    string     `db:"customizations" json:"customizations"`
	DeliveryDate      string     `db:"delivery_date" json:"delivery_date"`
	Status            string     `db:"status" json:"status"`
	AssignedFloristID *string    `db:"assigned_florist_id" json:"assigned_florist_id,omitempty"`
	AssignedAt        *time.Time `db:"assigned_at" json:"assigned_at,omitempty"`
	CompletedAt       *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	Version           int64      `db:"version" json:"version"`
	DifficultyLabel   string     `db:"difficulty_label" json:"difficulty_label,omitempty"`
	ProductTypeLabel  string     `db:"product_type_label" json:"product_type_label,omitempty"`
}

// User is read-only reference data from the identity provider.
type User struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Role string `db:"role" json:"role"`
}

// FloristStats is derived per analytics query, never persisted.
// AverageCompletionMinutes is nil when the florist completed nothing in the
// window; zero would imply instantaneous completion.
type FloristStats struct {
	FloristID                string `json:"florist_id"`
	FloristName              string `json:"florist_name"`
	CompletedCount           int    `json:"completed_count"`
	AverageCompletionMinutes *int64 `json:"average_completion_minutes"`
}

// Order statuses
const (
	OrderStatusPending   = "PENDING"
	OrderStatusAssigned  = "ASSIGNED"
	OrderStatusCompleted = "COMPLETED"
)

// User roles
const (
	RoleAdmin   = "ADMIN"
	RoleFlorist = "FLORIST"
)

// Label categories
const (
	LabelCategoryDifficulty  = "difficulty"
	LabelCategoryProductType = "product_type"
	LabelCategoryCustom      = "custom"
)

// ValidLabelCategory reports whether c is one of the recognized categories.
func ValidLabelCategory(c string) bool {
	switch c {
	case LabelCategoryDifficulty, LabelCategoryProductType, LabelCategoryCustom:
		return true
	}
	return false
}

// ProcessedEvent for worker idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
