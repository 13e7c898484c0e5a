package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"florist-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// orderColumns resolves the product's difficulty and product-type labels at
// read time; labels are never denormalized onto the order row.
const orderColumns = `
	o.id, o.store_id, o.product_id, o.product_name, o.variant, o.timeslot,
	o.remarks, o.customizations, o.delivery_date, o.status,
	o.assigned_florist_id, o.assigned_at, o.completed_at, o.version,
	COALESCE(dl.name, '') AS difficulty_label,
	COALESCE(tl.name, '') AS product_type_label`

const orderJoins = `
	FROM orders o
	LEFT JOIN products p ON p.id = o.product_id
	LEFT JOIN product_labels dl ON dl.id = p.difficulty_label_id
	LEFT JOIN product_labels tl ON tl.id = p.product_type_label_id`

// GetOrderByID retrieves one order with inherited labels resolved.
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	query := "SELECT" + orderColumns + orderJoins + " WHERE o.id = $1"
	err := s.db.GetContext(ctx, &order, query, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, unavailable("get order", err)
	}
	return &order, nil
}

// FetchOrders retrieves all orders for a delivery date, optionally limited to
// a set of stores.
func (s *Store) FetchOrders(ctx context.Context, date string, storeIDs []string) ([]models.Order, error) {
	query := "SELECT" + orderColumns + orderJoins + " WHERE o.delivery_date = ?"
	args := []interface{}{date}

	if len(storeIDs) > 0 {
		var err error
		query, args, err = sqlx.In(query+" AND o.store_id IN (?)", date, storeIDs)
		if err != nil {
			return nil, err
		}
	}
	query = s.db.Rebind(query + " ORDER BY o.id")

	var orders []models.Order
	if err := s.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, unavailable("fetch orders", err)
	}
	return orders, nil
}

// FetchCompletedOrders retrieves orders completed inside [start, end),
// optionally limited to a set of stores. Feeds the analytics aggregator.
func (s *Store) FetchCompletedOrders(ctx context.Context, start, end time.Time, storeIDs []string) ([]models.Order, error) {
	query := "SELECT" + orderColumns + orderJoins +
		" WHERE o.status = ? AND o.completed_at >= ? AND o.completed_at < ?"
	args := []interface{}{models.OrderStatusCompleted, start, end}

	if len(storeIDs) > 0 {
		var err error
		query, args, err = sqlx.In(query+" AND o.store_id IN (?)",
			models.OrderStatusCompleted, start, end, storeIDs)
		if err != nil {
			return nil, err
		}
	}
	query = s.db.Rebind(query + " ORDER BY o.completed_at")

	var orders []models.Order
	if err := s.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, unavailable("fetch completed orders", err)
	}
	return orders, nil
}

// CompareAndSwapOrder writes the order's workflow fields only if the stored
// version still matches expectedVersion. Zero rows affected means another
// writer got there first; orders are never deleted, so that is always a lost
// race, not a missing row. On success the order's Version is advanced to the
// stored value.
func (s *Store) CompareAndSwapOrder(ctx context.Context, order *models.Order, expectedVersion int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1,
		    assigned_florist_id = $2,
		    assigned_at = $3,
		    completed_at = $4,
		    remarks = $5,
		    version = version + 1
		WHERE id = $6 AND version = $7`,
		order.Status, order.AssignedFloristID, order.AssignedAt,
		order.CompletedAt, order.Remarks, order.ID, expectedVersion)
	if err != nil {
		return unavailable("write order", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return unavailable("write order", err)
	}
	if rows == 0 {
		return fmt.Errorf("order %s changed since read: %w", order.ID, models.ErrConflict)
	}

	order.Version = expectedVersion + 1
	return nil
}

// UpsertOrder inserts or replaces an order by id. Used by catalog ingestion;
// workflow fields go through CompareAndSwapOrder only.
func (s *Store) UpsertOrder(ctx context.Context, order *models.Order) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, store_id, product_id, product_name, variant,
			timeslot, remarks, customizations, delivery_date, status, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
		ON CONFLICT (id) DO UPDATE
		SET store_id = EXCLUDED.store_id,
		    product_id = EXCLUDED.product_id,
		    product_name = EXCLUDED.product_name,
		    variant = EXCLUDED.variant,
		    timeslot = EXCLUDED.timeslot,
		    customizations = EXCLUDED.customizations,
		    delivery_date = EXCLUDED.delivery_date`,
		order.ID, order.StoreID, order.ProductID, order.ProductName, order.Variant,
		order.Timeslot, order.Remarks, order.Customizations, order.DeliveryDate,
		models.OrderStatusPending)
	if err != nil {
		return unavailable("upsert order", err)
	}
	return nil
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	if err != nil {
		return false, unavailable("check processed event", err)
	}
	return exists, nil
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	if err != nil {
		return unavailable("mark processed event", err)
	}
	return nil
}
