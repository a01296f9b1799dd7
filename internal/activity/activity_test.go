package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

type recordingDeliverer struct {
	mu        sync.Mutex
	delivered []*models.Activity
	fail      map[models.ActivityKind]bool
}

func (d *recordingDeliverer) Deliver(_ context.Context, a *models.Activity) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail[a.Kind()] {
		return errors.New("feed unavailable")
	}
	d.delivered = append(d.delivered, a)
	return nil
}

func (d *recordingDeliverer) kinds() []models.ActivityKind {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.ActivityKind
	for _, a := range d.delivered {
		out = append(out, a.Kind())
	}
	return out
}

func event(p models.ActivityPayload) *models.Activity {
	return &models.Activity{ActorID: "alice", TargetIDs: []string{"alice", "bob"}, Payload: p}
}

func TestQueue_NotifyNeverBlocks(t *testing.T) {
	q := NewQueue(2)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			q.Notify(ctx, event(models.FriendAdded{FriendID: "bob"}))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full queue")
	}
	assert.Equal(t, 2, q.Len())
}

func TestQueue_IgnoresEmptyAndClosed(t *testing.T) {
	q := NewQueue(4)
	ctx := context.Background()

	q.Notify(ctx, nil)
	q.Notify(ctx, &models.Activity{ActorID: "alice"})
	assert.Equal(t, 0, q.Len())

	q.Close()
	q.Close()
	assert.NotPanics(t, func() {
		q.Notify(ctx, event(models.FriendAdded{FriendID: "bob"}))
	})
}

func TestQueue_StampsCreatedAt(t *testing.T) {
	q := NewQueue(1)
	a := event(models.FriendAdded{FriendID: "bob"})
	q.Notify(context.Background(), a)
	assert.NotZero(t, a.CreatedAt)
}

func TestWorker_DeliversAndSwallowsFailures(t *testing.T) {
	q := NewQueue(8)
	d := &recordingDeliverer{fail: map[models.ActivityKind]bool{models.ActivityExpenseDeleted: true}}
	w := NewWorker(q, d)
	ctx := context.Background()

	q.Notify(ctx, event(models.ExpenseCreated{ExpenseID: "e1", Title: "Dinner", Amount: 300}))
	q.Notify(ctx, event(models.ExpenseDeleted{ExpenseID: "e1", Title: "Dinner"}))
	q.Notify(ctx, event(models.SettlementCreated{SettlementID: "s1", Amount: 100}))
	q.Close()

	finished := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after the queue was closed")
	}

	assert.Equal(t, []models.ActivityKind{
		models.ActivityExpenseCreated,
		models.ActivitySettlementCreated,
	}, d.kinds())
}

func TestWorker_StopsOnCancel(t *testing.T) {
	q := NewQueue(1)
	w := NewWorker(q, &recordingDeliverer{})
	ctx, cancel := context.WithCancel(context.Background())

	finished := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(finished)
	}()
	cancel()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("worker ignored cancellation")
	}
}

type fakeFeed struct {
	recorded []*models.Activity
	err      error
}

func (f *fakeFeed) RecordActivity(_ context.Context, a *models.Activity) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, a)
	return nil
}

func TestFeedDeliverer(t *testing.T) {
	feed := &fakeFeed{}
	d := NewFeedDeliverer(feed, "USD")

	a := event(models.ExpenseCreated{ExpenseID: "e1", Title: "Dinner", Amount: 1234})
	require.NoError(t, d.Deliver(context.Background(), a))
	assert.Len(t, feed.recorded, 1)

	feed.err = errors.New("locked")
	assert.Error(t, d.Deliver(context.Background(), a))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		payload models.ActivityPayload
		want    string
	}{
		{models.ExpenseCreated{Title: "Dinner", Amount: 1234}, `added "Dinner" ($12.34)`},
		{models.ExpenseUpdated{Title: "Dinner", PreviousAmount: 1000, Amount: 1234}, `updated "Dinner" ($10.00 -> $12.34)`},
		{models.ExpenseUpdated{Title: "Dinner", PreviousAmount: 1000, Amount: 1000}, `updated "Dinner"`},
		{models.ExpenseDeleted{Title: "Dinner", Reason: "duplicate"}, `deleted "Dinner": duplicate`},
		{models.ExpenseRestored{Title: "Dinner"}, `restored "Dinner"`},
		{models.SettlementCreated{Amount: 500}, `recorded a payment of $5.00`},
		{models.FriendAdded{FriendID: "bob"}, `added a friend`},
	}
	for _, tt := range tests {
		t.Run(string(tt.payload.Kind()), func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(event(tt.payload), "USD"))
		})
	}
}
