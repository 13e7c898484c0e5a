package worker

import (
	"context"
	"time"

	"florist-service/internal/broker"
	"florist-service/internal/models"
	"florist-service/internal/redisclient"
	"florist-service/internal/store"
	"florist-service/internal/util"

	"go.uber.org/zap"
)

// CompletionProjector consumes workflow events and projects completions into
// the Redis daily counters backing live dashboards. Processing is idempotent:
// a redelivered event is recognized through the processed_events table and
// dropped.
type CompletionProjector struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	redis        *redisclient.Client
	location     *time.Location
	logger       *zap.Logger
}

// NewCompletionProjector creates a new completion projector.
func NewCompletionProjector(
	consumer *broker.Consumer,
	st *store.Store,
	redis *redisclient.Client,
	loc *time.Location,
) *CompletionProjector {
	p := &CompletionProjector{
		consumer: consumer,
		store:    st,
		redis:    redis,
		location: loc,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderCompleted(p.handleCompleted)
	p.eventHandler = eventHandler

	return p
}

// Start starts the projector
func (p *CompletionProjector) Start(ctx context.Context) error {
	p.logger.Info("Starting completion projector")
	return p.consumer.StartConsuming(ctx, p.eventHandler.HandleMessage)
}

// Stop stops the projector
func (p *CompletionProjector) Stop() error {
	p.logger.Info("Stopping completion projector")
	return p.consumer.Close()
}

func (p *CompletionProjector) handleCompleted(ctx context.Context, event *models.OrderCompletedEvent) error {
	processed, err := p.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		p.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	day := event.CompletedAt.In(p.location).Format("2006-01-02")
	if err := p.redis.IncrCompletion(ctx, event.FloristID, day); err != nil {
		p.logger.Error("Failed to bump completion counter",
			zap.String("florist_id", event.FloristID),
			zap.String("day", day),
			zap.Error(err))
		return err
	}

	util.CompletionEventsProjected.Inc()

	if err := p.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		p.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	p.logger.Info("Completion projected",
		zap.String("order_id", event.OrderID),
		zap.String("florist_id", event.FloristID),
		zap.String("day", day))
	return nil
}
