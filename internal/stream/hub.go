package stream

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"banking-transfers/internal/metrics"
	"banking-transfers/internal/models"
)

// DefaultBuffer is the per-subscriber buffer bound.
const DefaultBuffer = 64

// Hub multicasts finalized transfers to live subscribers. It has process
// lifetime: constructed once at startup and handed to the orchestrator and
// to stream handlers. Each subscriber gets its own bounded buffer; a slow
// subscriber loses events but never slows the publisher or its peers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan models.Transfer
	buffer      int
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewHub creates a hub with the given per-subscriber buffer size. A size of
// zero or less falls back to DefaultBuffer.
func NewHub(buffer int, m *metrics.Metrics, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subscribers: make(map[string]chan models.Transfer),
		buffer:      buffer,
		metrics:     m,
		logger:      logger,
	}
}

// Subscribe attaches a new subscriber. The returned channel carries every
// transfer published after this call; there is no replay of history. The
// channel is closed when cancel is called or ctx is done. Cancel is
// idempotent and releases all subscriber resources.
func (h *Hub) Subscribe(ctx context.Context) (<-chan models.Transfer, func()) {
	id := uuid.New().String()
	ch := make(chan models.Transfer, h.buffer)

	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.StreamSubscribers.Inc()
	}
	h.logger.Debug("stream subscriber attached", zap.String("subscriber_id", id))

	cancel := func() { h.remove(id) }
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ch, cancel
}

// Publish delivers the transfer to every current subscriber without ever
// blocking. A subscriber whose buffer is full misses this event; nobody
// else is affected.
func (h *Hub) Publish(t models.Transfer) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subscribers {
		select {
		case ch <- t:
		default:
			if h.metrics != nil {
				h.metrics.StreamDropped.Inc()
			}
			h.logger.Warn("dropping event for slow subscriber",
				zap.String("subscriber_id", id),
				zap.String("transfer_id", t.ID))
		}
	}
}

// SubscriberCount reports the number of attached subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	ch, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	h.mu.Unlock()

	if !ok {
		return
	}
	close(ch)
	if h.metrics != nil {
		h.metrics.StreamSubscribers.Dec()
	}
	h.logger.Debug("stream subscriber detached", zap.String("subscriber_id", id))
}
