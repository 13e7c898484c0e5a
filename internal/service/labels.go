package service

import (
	"context"
	"fmt"
	"strings"

	"florist-service/internal/models"
	"florist-service/internal/util"

	"go.uber.org/zap"
)

// LabelService owns label definitions and their priorities.
type LabelService struct {
	gateway LabelGateway
	logger  *zap.Logger
}

// NewLabelService creates a new label service.
func NewLabelService(gateway LabelGateway) *LabelService {
	return &LabelService{
		gateway: gateway,
		logger:  util.GetLogger(),
	}
}

// Upsert inserts or replaces a label by id after validating the definition.
func (s *LabelService) Upsert(ctx context.Context, label *models.ProductLabel, actor models.User) error {
	ctx, span := util.StartSpan(ctx, "LabelService.Upsert")
	defer span.End()

	if actor.Role != models.RoleAdmin {
		return fmt.Errorf("label management requires admin role: %w", models.ErrForbidden)
	}

	label.Name = strings.TrimSpace(label.Name)
	if label.Name == "" {
		return fmt.Errorf("label name is required: %w", models.ErrInvalidArgument)
	}
	if !models.ValidLabelCategory(label.Category) {
		return fmt.Errorf("unknown label category %q: %w", label.Category, models.ErrInvalidArgument)
	}
	if label.Priority < 0 {
		return fmt.Errorf("label priority must be non-negative, got %d: %w",
			label.Priority, models.ErrInvalidArgument)
	}

	if err := s.gateway.UpsertLabel(ctx, label); err != nil {
		return err
	}

	util.LabelsUpsertedTotal.Inc()
	s.logger.Info("Label upserted",
		zap.Int64("label_id", label.ID),
		zap.String("category", label.Category),
		zap.Int("priority", label.Priority))
	return nil
}

// ListByCategory returns the labels of one category.
func (s *LabelService) ListByCategory(ctx context.Context, category string) ([]models.ProductLabel, error) {
	if !models.ValidLabelCategory(category) {
		return nil, fmt.Errorf("unknown label category %q: %w", category, models.ErrInvalidArgument)
	}
	return s.gateway.FetchLabelsByCategory(ctx, category)
}

// List returns every label.
func (s *LabelService) List(ctx context.Context) ([]models.ProductLabel, error) {
	return s.gateway.FetchLabels(ctx)
}
