package events

import (
	"context"

	"github.com/api-sage/core-banking-ledger/src/internal/domain"
	"github.com/api-sage/core-banking-ledger/src/internal/logger"
)

// LogPublisher writes domain events to the application log. It stands in for
// the external audit/metrics consumer; the ledger only ever sees the
// EventPublisher port.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(_ context.Context, event domain.Event) error {
	logger.Info("domain event published", logger.Fields{
		"kind":  event.EventKind(),
		"event": logger.SanitizePayload(event),
	})

	return nil
}
