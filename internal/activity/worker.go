package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// Deliverer hands one activity to its destination.
type Deliverer interface {
	Deliver(ctx context.Context, activity *models.Activity) error
}

// DeliverTimeout bounds a single delivery attempt.
const DeliverTimeout = 5 * time.Second

// Worker drains a Queue into a Deliverer. Delivery errors are logged and dropped.
type Worker struct {
	queue     *Queue
	deliverer Deliverer
}

// NewWorker creates a worker for the queue.
func NewWorker(queue *Queue, deliverer Deliverer) *Worker {
	return &Worker{queue: queue, deliverer: deliverer}
}

// Run delivers events until the queue is closed and drained, or ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case activity, ok := <-w.queue.events:
			if !ok {
				return
			}
			metrics.ActivityQueueDepth.Set(float64(w.queue.Len()))
			w.deliver(ctx, activity)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, activity *models.Activity) {
	kind := string(activity.Kind())

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DeliverTimeout)
	defer cancel()

	if err := w.deliverer.Deliver(ctx, activity); err != nil {
		metrics.ActivityEvents.WithLabelValues(kind, "failed").Inc()
		slog.Error("Activity delivery failed", "kind", kind, "actor_id", activity.ActorID, "error", err)
		return
	}
	metrics.ActivityEvents.WithLabelValues(kind, "delivered").Inc()
}

// FeedWriter is the storage the FeedDeliverer writes to.
type FeedWriter interface {
	RecordActivity(ctx context.Context, activity *models.Activity) error
}

// FeedDeliverer persists activities to the users' feeds.
type FeedDeliverer struct {
	feed     FeedWriter
	currency string
}

// NewFeedDeliverer creates a deliverer writing to feed. currency is used for log output only.
func NewFeedDeliverer(feed FeedWriter, currency string) *FeedDeliverer {
	return &FeedDeliverer{feed: feed, currency: currency}
}

// Deliver records the activity.
func (d *FeedDeliverer) Deliver(ctx context.Context, activity *models.Activity) error {
	if err := d.feed.RecordActivity(ctx, activity); err != nil {
		return err
	}
	slog.Debug("Activity delivered",
		"summary", Describe(activity, d.currency),
		"targets", len(activity.TargetIDs),
	)
	return nil
}

// Describe renders a one-line human-readable summary of an activity.
func Describe(activity *models.Activity, currency string) string {
	switch p := activity.Payload.(type) {
	case models.ExpenseCreated:
		return fmt.Sprintf("added %q (%s)", p.Title, money.Format(p.Amount, currency))
	case models.ExpenseUpdated:
		if p.PreviousAmount != p.Amount {
			return fmt.Sprintf("updated %q (%s -> %s)", p.Title,
				money.Format(p.PreviousAmount, currency), money.Format(p.Amount, currency))
		}
		return fmt.Sprintf("updated %q", p.Title)
	case models.ExpenseDeleted:
		if p.Reason != "" {
			return fmt.Sprintf("deleted %q: %s", p.Title, p.Reason)
		}
		return fmt.Sprintf("deleted %q", p.Title)
	case models.ExpenseRestored:
		return fmt.Sprintf("restored %q", p.Title)
	case models.SettlementCreated:
		return fmt.Sprintf("recorded a payment of %s", money.Format(p.Amount, currency))
	case models.FriendAdded:
		return "added a friend"
	default:
		return string(activity.Kind())
	}
}
