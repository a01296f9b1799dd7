// Package activity delivers ledger-affecting events to users' activity feeds.
//
// Writers hand events to a Sink and move on. A Queue buffers them on a channel
// and a Worker delivers them in the background, so a slow or failing feed can
// never fail or delay the write that produced the event.
package activity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
)

// Sink accepts activity events. Notify must not block and never reports failure.
type Sink interface {
	Notify(ctx context.Context, activity *models.Activity)
}

// Discard is a Sink that drops every event.
type Discard struct{}

func (Discard) Notify(context.Context, *models.Activity) {}

// Queue is a bounded in-memory Sink drained by a Worker.
// When the buffer is full, new events are dropped.
type Queue struct {
	mu     sync.RWMutex
	events chan *models.Activity
	closed bool
}

// NewQueue creates a queue buffering up to size events.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{events: make(chan *models.Activity, size)}
}

// Notify enqueues the activity without blocking.
func (q *Queue) Notify(ctx context.Context, activity *models.Activity) {
	if activity == nil || activity.Payload == nil {
		return
	}
	if activity.CreatedAt == 0 {
		activity.CreatedAt = time.Now().Unix()
	}
	kind := string(activity.Kind())

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		metrics.ActivityEvents.WithLabelValues(kind, "dropped").Inc()
		slog.WarnContext(ctx, "Activity dropped, queue closed", "kind", kind, "actor_id", activity.ActorID)
		return
	}

	select {
	case q.events <- activity:
		metrics.ActivityEvents.WithLabelValues(kind, "queued").Inc()
		metrics.ActivityQueueDepth.Set(float64(len(q.events)))
	default:
		metrics.ActivityEvents.WithLabelValues(kind, "dropped").Inc()
		slog.WarnContext(ctx, "Activity dropped, queue full", "kind", kind, "actor_id", activity.ActorID)
	}
}

// Len returns the number of events waiting for delivery.
func (q *Queue) Len() int {
	return len(q.events)
}

// Close stops accepting events. Events already queued are still delivered by the worker.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
}
