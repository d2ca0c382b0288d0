package event

import (
	"context"

	"github.com/nikolayk812/canteen-order/internal/domain"
	"github.com/nikolayk812/canteen-order/internal/port"
	"go.uber.org/zap"
)

// LogPublisher is used when no broker is configured.
type LogPublisher struct {
	logger *zap.Logger
}

var _ port.OrderEventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishOrderEvent(_ context.Context, event domain.OrderEvent) error {
	p.logger.Debug("order event",
		zap.String("type", event.Type),
		zap.Stringer("order_id", event.OrderID),
		zap.Stringer("from", event.PreviousStatus),
		zap.Stringer("to", event.CurrentStatus),
	)
	return nil
}
