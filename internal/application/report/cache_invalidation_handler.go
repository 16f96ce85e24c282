package report

import (
	"context"
	"fmt"

	"github.com/comanda/backend/internal/domain/shared"
	"github.com/comanda/backend/internal/domain/tab"
	"go.uber.org/zap"
)

// CacheInvalidationHandler drops cached daily reports touched by a closed tab
type CacheInvalidationHandler struct {
	service *Service
	logger  *zap.Logger
}

// NewCacheInvalidationHandler creates a handler bound to the report service
func NewCacheInvalidationHandler(service *Service, logger *zap.Logger) *CacheInvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheInvalidationHandler{service: service, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *CacheInvalidationHandler) EventTypes() []string {
	return []string{tab.EventTypeTabClosed}
}

// Handle processes a TabClosedEvent
func (h *CacheInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	closed, ok := event.(*tab.TabClosedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", tab.EventTypeTabClosed, event.EventType())
	}

	h.service.Invalidate(ctx, closed.OpenedAt, closed.ClosedAt)
	h.logger.Debug("Daily report cache invalidated",
		zap.String("tab_id", closed.TabID.String()),
		zap.Int64("number", closed.Number),
	)
	return nil
}
