package store

import (
	"context"

	"florist-service/internal/models"
)

// FetchLabels retrieves every label row, for registry snapshots.
func (s *Store) FetchLabels(ctx context.Context) ([]models.ProductLabel, error) {
	var rows []models.ProductLabel
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM product_labels ORDER BY category, priority, name")
	if err != nil {
		return nil, unavailable("fetch labels", err)
	}
	return rows, nil
}

// FetchLabelsByCategory retrieves the labels of one category.
func (s *Store) FetchLabelsByCategory(ctx context.Context, category string) ([]models.ProductLabel, error) {
	var rows []models.ProductLabel
	err := s.db.SelectContext(ctx, &rows,
		"SELECT * FROM product_labels WHERE category = $1 ORDER BY priority, name", category)
	if err != nil {
		return nil, unavailable("fetch labels by category", err)
	}
	return rows, nil
}

// UpsertLabel inserts a label, or replaces it when label.ID is already taken.
// A zero ID inserts a fresh row and fills in the generated id.
func (s *Store) UpsertLabel(ctx context.Context, label *models.ProductLabel) error {
	if label.ID == 0 {
		err := s.db.GetContext(ctx, &label.ID, `
			INSERT INTO product_labels (name, category, priority, color)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			label.Name, label.Category, label.Priority, label.Color)
		if err != nil {
			return unavailable("insert label", err)
		}
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO product_labels (id, name, category, priority, color)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    category = EXCLUDED.category,
		    priority = EXCLUDED.priority,
		    color = EXCLUDED.color`,
		label.ID, label.Name, label.Category, label.Priority, label.Color)
	if err != nil {
		return unavailable("upsert label", err)
	}
	return nil
}
