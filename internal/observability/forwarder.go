package observability

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mockchat/internal/models"
)

const forwarderSink = "amqp"

// EventForwarder publishes store events to the broker from a background worker so store
// mutations never wait on the network. Events that do not fit in the buffer are dropped.
type EventForwarder struct {
	events  chan models.StoreEvent
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewEventForwarder starts the worker.
func NewEventForwarder(buffer int, timeout time.Duration, log *zap.Logger) *EventForwarder {
	if log == nil {
		log = zap.NewNop()
	}
	f := &EventForwarder{
		events:  make(chan models.StoreEvent, buffer),
		timeout: timeout,
		log:     log,
		done:    make(chan struct{}),
	}
	go f.run()
	return f
}

// OnStoreEvent queues an event without blocking.
func (f *EventForwarder) OnStoreEvent(ev models.StoreEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return
	}
	select {
	case f.events <- ev:
	default:
		IncDroppedEvent(forwarderSink)
		f.log.Warn("event forwarder saturated, dropping event", zap.String("event", string(ev.Type)))
	}
}

func (f *EventForwarder) run() {
	defer close(f.done)
	for ev := range f.events {
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		err := PublishEvent(ctx, RoutingKey(ev.Type), NewStoreEnvelope(ev), nil)
		cancel()
		if err != nil {
			f.log.Warn("publish store event failed", zap.String("event", string(ev.Type)), zap.Error(err))
		}
	}
}

// Close drains queued events and stops the worker. Later events are ignored.
func (f *EventForwarder) Close() {
	f.mu.Lock()
	if !f.closed {
		f.closed = true
		close(f.events)
	}
	f.mu.Unlock()
	<-f.done
}
