package service

import (
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

func TestListActivity(t *testing.T) {
	env := newTestEnv(t)
	alice, a := env.register("alice")
	bob, b := env.register("bob")
	charlie, _ := env.register("charlie")

	created := env.createExpense(alice, equalSplit(300, "", a.ID, b.ID))
	_, err := alice.DeleteExpense.CallUnary(env.ctx, connect.NewRequest(&DeleteExpenseRequest{
		ExpenseID: created.ID,
		Version:   created.Version,
		Reason:    "duplicate",
	}))
	require.NoError(t, err)

	feed := func(client *Client, limit int) []Activity {
		t.Helper()
		resp, err := client.ListActivity.CallUnary(env.ctx, connect.NewRequest(&ListActivityRequest{Limit: limit}))
		require.NoError(t, err)
		return resp.Msg.Activities
	}

	t.Run("participants see events newest first", func(t *testing.T) {
		events := feed(bob, 0)
		require.Len(t, events, 2)

		assert.Equal(t, string(models.ActivityExpenseDeleted), events[0].Kind)
		assert.Equal(t, a.ID, events[0].ActorID)
		assert.Equal(t, `deleted "Dinner": duplicate`, events[0].Summary)

		assert.Equal(t, string(models.ActivityExpenseCreated), events[1].Kind)
		assert.Equal(t, `added "Dinner" ($3.00)`, events[1].Summary)

		payload, ok := events[1].Payload.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, created.ID, payload["expense_id"])
	})

	t.Run("limit", func(t *testing.T) {
		assert.Len(t, feed(alice, 1), 1)

		_, err := alice.ListActivity.CallUnary(env.ctx, connect.NewRequest(&ListActivityRequest{Limit: 500}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})

	t.Run("uninvolved users see nothing", func(t *testing.T) {
		assert.Empty(t, feed(charlie, 0))
	})

	t.Run("settlements and friendships are recorded", func(t *testing.T) {
		_, err := bob.CreateSettlement.CallUnary(env.ctx, connect.NewRequest(&CreateSettlementRequest{ToUserID: a.ID, Amount: 250}))
		require.NoError(t, err)
		_, err = bob.AddFriend.CallUnary(env.ctx, connect.NewRequest(&AddFriendRequest{FriendID: a.ID}))
		require.NoError(t, err)

		events := feed(alice, 2)
		require.Len(t, events, 2)
		assert.Equal(t, string(models.ActivityFriendAdded), events[0].Kind)
		assert.Equal(t, string(models.ActivitySettlementCreated), events[1].Kind)
		assert.Equal(t, "recorded a payment of $2.50", events[1].Summary)
	})
}
