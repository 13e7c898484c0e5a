package service

import (
	"context"
	"time"

	"florist-service/internal/analytics"
	"florist-service/internal/models"
	"florist-service/internal/util"

	"go.uber.org/zap"
)

// AnalyticsService resolves a timeframe against the operating timezone,
// materializes the completed-order snapshot and hands it to the pure
// aggregator.
type AnalyticsService struct {
	gateway  AnalyticsGateway
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalyticsService creates a new analytics service. loc is the configured
// operating timezone; week and month boundaries are computed in it.
func NewAnalyticsService(gateway AnalyticsGateway, loc *time.Location) *AnalyticsService {
	return &AnalyticsService{
		gateway:  gateway,
		location: loc,
		logger:   util.GetLogger(),
		now:      time.Now,
	}
}

// Stats computes per-florist completion stats for the named timeframe.
func (s *AnalyticsService) Stats(ctx context.Context, timeframe string, storeIDs []string) ([]models.FloristStats, error) {
	ctx, span := util.StartSpan(ctx, "AnalyticsService.Stats")
	defer span.End()

	window, err := analytics.WindowFor(timeframe, s.now(), s.location)
	if err != nil {
		return nil, err
	}

	orders, err := s.gateway.FetchCompletedOrders(ctx, window.Start, window.End, storeIDs)
	if err != nil {
		return nil, err
	}

	florists, err := s.gateway.FetchFlorists(ctx)
	if err != nil {
		return nil, err
	}

	stats := analytics.ComputeStats(orders, florists, window, storeIDs)
	s.logger.Debug("Analytics computed",
		zap.String("timeframe", timeframe),
		zap.Int("completed_orders", len(orders)),
		zap.Int("florists", len(stats)))
	return stats, nil
}
