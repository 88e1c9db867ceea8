// Package event fans committed payment events out to in-process handlers:
// the audit log and the payment metrics.
package event

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Bus delivers events synchronously in publish order. A failing or
// panicking handler is logged and skipped; Publish itself never fails,
// since by then the payment change is already durable.
type Bus struct {
	routes  routes
	log     *zap.Logger
	running atomic.Bool
}

func NewBus(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{
		routes: routes{byType: map[string][]shared.EventHandler{}},
		log:    log.Named("event_bus"),
	}
}

// Subscribe routes eventTypes to handler, falling back to the handler's own
// EventTypes. A handler with neither receives everything.
func (b *Bus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.routes.add(handler, eventTypes)
	b.log.Debug("Handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *Bus) Unsubscribe(handler shared.EventHandler) {
	b.routes.remove(handler)
}

func (b *Bus) Start(context.Context) error {
	b.running.Store(true)
	b.log.Info("Event bus started")
	return nil
}

func (b *Bus) Stop(context.Context) error {
	b.running.Store(false)
	b.log.Info("Event bus stopped")
	return nil
}

// Publish drops events while the bus is stopped.
func (b *Bus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if !b.running.Load() {
		b.log.Warn("Event bus not running, dropping events", zap.Int("count", len(events)))
		return nil
	}
	for _, ev := range events {
		for _, handler := range b.routes.match(ev.EventType()) {
			if err := deliver(ctx, handler, ev); err != nil {
				logger.Enrich(ctx, b.log).Error("Event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func deliver(ctx context.Context, handler shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, ev)
}

// routes is the subscription table. Typed handlers match before catch-all
// ones, each in subscription order.
type routes struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	catchAll []shared.EventHandler
}

func (r *routes) add(handler shared.EventHandler, eventTypes []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(eventTypes) == 0 {
		r.catchAll = append(r.catchAll, handler)
		return
	}
	for _, t := range eventTypes {
		r.byType[t] = append(r.byType[t], handler)
	}
}

func (r *routes) remove(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	same := func(h shared.EventHandler) bool { return h == handler }
	r.catchAll = slices.DeleteFunc(r.catchAll, same)
	for t, hs := range r.byType {
		if hs = slices.DeleteFunc(hs, same); len(hs) == 0 {
			delete(r.byType, t)
		} else {
			r.byType[t] = hs
		}
	}
}

func (r *routes) match(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Concat(r.byType[eventType], r.catchAll)
}

var _ shared.EventPublisher = (*Bus)(nil)
