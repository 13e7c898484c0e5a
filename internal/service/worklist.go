package service

import (
	"context"
	"time"

	"florist-service/internal/labels"
	"florist-service/internal/models"
	"florist-service/internal/ranking"
	"florist-service/internal/util"

	"go.uber.org/zap"
)

// WorklistService produces the filtered, ranked order sequence for a user.
// Ranking itself is pure; this service only materializes the snapshot it runs
// on (orders for the date plus a label registry).
type WorklistService struct {
	gateway OrderGateway
	labels  LabelGateway
	logger  *zap.Logger
}

// NewWorklistService creates a new worklist service.
func NewWorklistService(gateway OrderGateway, labelGateway LabelGateway) *WorklistService {
	return &WorklistService{
		gateway: gateway,
		labels:  labelGateway,
		logger:  util.GetLogger(),
	}
}

// Worklist fetches the date's orders and ranks them for the requesting user.
func (s *WorklistService) Worklist(ctx context.Context, user models.User, date string, f ranking.Filters) ([]models.Order, error) {
	ctx, span := util.StartSpan(ctx, "WorklistService.Worklist")
	defer span.End()

	start := time.Now()
	defer func() {
		util.WorklistRequestDuration.Observe(time.Since(start).Seconds())
	}()

	orders, err := s.gateway.FetchOrders(ctx, date, f.StoreIDs)
	if err != nil {
		return nil, err
	}

	rows, err := s.labels.FetchLabels(ctx)
	if err != nil {
		return nil, err
	}

	ranked := ranking.Rank(orders, user, f, labels.NewRegistry(rows))
	s.logger.Debug("Worklist built",
		zap.String("user_id", user.ID),
		zap.String("date", date),
		zap.Int("total", len(orders)),
		zap.Int("returned", len(ranked)))
	return ranked, nil
}
