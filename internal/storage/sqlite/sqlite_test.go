package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

func moneyOf(v int64) money.Amount { return money.Amount(v) }

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createUsers(t *testing.T, store *SQLiteStore, names ...string) map[string]string {
	t.Helper()
	ids := make(map[string]string, len(names))
	for _, name := range names {
		user := models.NewUser(name+"@example.com", name, "hash")
		require.NoError(t, store.CreateUser(context.Background(), user))
		ids[name] = user.ID
	}
	return ids
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("Alice@Example.com", "Alice", "hash")
	require.NoError(t, store.CreateUser(ctx, user))

	t.Run("email lookup ignores case", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "ALICE@example.COM")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, "alice@example.com", got.Email)
	})

	t.Run("duplicate email in different case is rejected", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "Other", "hash")
		dup.Email = "ALICE@EXAMPLE.COM"
		err := store.CreateUser(ctx, dup)
		assert.ErrorIs(t, err, models.ErrEmailExists)
	})

	t.Run("missing user returns nil", func(t *testing.T) {
		got, err := store.GetUserByID(ctx, "nonexistent")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("GetUsersByIDs omits unknown ids", func(t *testing.T) {
		users, err := store.GetUsersByIDs(ctx, []string{user.ID, "ghost"})
		require.NoError(t, err)
		assert.Len(t, users, 1)
		assert.Contains(t, users, user.ID)
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := createUsers(t, store, "alice", "bob", "charlie")
	alice, bob, charlie := ids["alice"], ids["bob"], ids["charlie"]

	newExpense := func(payer string, amount int64, participants ...string) *models.Expense {
		e := &models.Expense{
			Title:       "Dinner",
			PayerID:     payer,
			SplitMethod: models.SplitEqual,
			CreatedBy:   payer,
		}
		share := amount / int64(len(participants))
		for _, p := range participants {
			e.Participants = append(e.Participants, models.Participant{UserID: p, Share: moneyOf(share)})
		}
		e.Amount = moneyOf(share * int64(len(participants)))
		require.NoError(t, store.CreateExpense(ctx, e))
		return e
	}

	t.Run("CreateExpense assigns id, version and title", func(t *testing.T) {
		e := &models.Expense{
			Amount:       200,
			PayerID:      alice,
			CreatedBy:    alice,
			SplitMethod:  models.SplitEqual,
			Participants: []models.Participant{{UserID: alice, Share: 100}, {UserID: bob, Share: 100}},
		}
		require.NoError(t, store.CreateExpense(ctx, e))
		assert.NotEmpty(t, e.ID)
		assert.NotEmpty(t, e.Title)
		assert.Equal(t, int64(1), e.Version)
		assert.NotZero(t, e.CreatedAt)
	})

	t.Run("GetExpense round-trips participants in order", func(t *testing.T) {
		e := newExpense(alice, 300, charlie, alice, bob)

		got, err := store.GetExpense(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, e.Participants, got.Participants)
		assert.Equal(t, models.Active{}, got.State)
		assert.Equal(t, e.CreatedBy, got.CreatedBy)
	})

	t.Run("GetExpense returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetExpense(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("UpdateExpense bumps version and replaces participants", func(t *testing.T) {
		e := newExpense(alice, 300, alice, bob, charlie)

		e.Title = "Lunch"
		e.Amount = 400
		e.Participants = []models.Participant{{UserID: alice, Share: 200}, {UserID: bob, Share: 200}}
		require.NoError(t, store.UpdateExpense(ctx, e, 1))
		assert.Equal(t, int64(2), e.Version)

		got, err := store.GetExpense(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, "Lunch", got.Title)
		assert.Equal(t, moneyOf(400), got.Amount)
		assert.Equal(t, int64(2), got.Version)
		assert.Len(t, got.Participants, 2)
		assert.Equal(t, alice, got.PayerID)
	})

	t.Run("UpdateExpense with stale version conflicts", func(t *testing.T) {
		e := newExpense(alice, 300, alice, bob, charlie)
		require.NoError(t, store.UpdateExpense(ctx, e, 1))

		e.Title = "Stale"
		err := store.UpdateExpense(ctx, e, 1)
		assert.ErrorIs(t, err, models.ErrVersionConflict)
	})

	t.Run("soft delete and restore", func(t *testing.T) {
		e := newExpense(bob, 300, alice, bob, charlie)

		require.NoError(t, store.SoftDeleteExpense(ctx, e.ID, models.Deleted{By: bob, Reason: "duplicate"}, 1))

		got, err := store.GetExpense(ctx, e.ID)
		require.NoError(t, err)
		deletion, ok := got.Deletion()
		require.True(t, ok)
		assert.Equal(t, bob, deletion.By)
		assert.Equal(t, "duplicate", deletion.Reason)
		assert.NotZero(t, deletion.At)
		assert.Len(t, got.Participants, 3, "payload is kept")

		err = store.SoftDeleteExpense(ctx, e.ID, models.Deleted{By: bob}, 2)
		assert.ErrorIs(t, err, models.ErrAlreadyDeleted)

		err = store.UpdateExpense(ctx, got, 2)
		assert.ErrorIs(t, err, models.ErrAlreadyDeleted)

		require.NoError(t, store.RestoreExpense(ctx, e.ID, 2))
		got, err = store.GetExpense(ctx, e.ID)
		require.NoError(t, err)
		assert.False(t, got.IsDeleted())
		assert.Equal(t, int64(3), got.Version)

		err = store.RestoreExpense(ctx, e.ID, 3)
		assert.ErrorIs(t, err, models.ErrNotDeleted)
	})
}

func TestExpenseQueries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := createUsers(t, store, "alice", "bob", "charlie", "dave")
	alice, bob, charlie, dave := ids["alice"], ids["bob"], ids["charlie"], ids["dave"]

	create := func(payer string, participants ...string) *models.Expense {
		e := &models.Expense{Amount: moneyOf(100 * int64(len(participants))), PayerID: payer, CreatedBy: payer, SplitMethod: models.SplitEqual}
		for _, p := range participants {
			e.Participants = append(e.Participants, models.Participant{UserID: p, Share: 100})
		}
		require.NoError(t, store.CreateExpense(ctx, e))
		return e
	}

	aliceForBob := create(alice, alice, bob)
	bobForAlice := create(bob, alice, bob)
	charlieForBoth := create(charlie, alice, bob, charlie)
	daveAlone := create(dave, dave)
	deleted := create(alice, alice, bob)
	require.NoError(t, store.SoftDeleteExpense(ctx, deleted.ID, models.Deleted{By: alice}, 1))

	expenseIDs := func(es []*models.Expense) []string {
		var out []string
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}

	t.Run("FindNonDeletedInvolving", func(t *testing.T) {
		got, err := store.FindNonDeletedInvolving(ctx, alice)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{aliceForBob.ID, bobForAlice.ID, charlieForBoth.ID}, expenseIDs(got))

		got, err = store.FindNonDeletedInvolving(ctx, dave)
		require.NoError(t, err)
		assert.Equal(t, []string{daveAlone.ID}, expenseIDs(got))
	})

	t.Run("FindNonDeletedBetween excludes third-party payers", func(t *testing.T) {
		got, err := store.FindNonDeletedBetween(ctx, alice, bob)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{aliceForBob.ID, bobForAlice.ID}, expenseIDs(got))

		got, err = store.FindNonDeletedBetween(ctx, alice, dave)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("ListExpensesInvolving optionally includes deleted", func(t *testing.T) {
		active, err := store.ListExpensesInvolving(ctx, alice, false)
		require.NoError(t, err)
		assert.Len(t, active, 3)

		all, err := store.ListExpensesInvolving(ctx, alice, true)
		require.NoError(t, err)
		assert.Len(t, all, 4)
		assert.Contains(t, expenseIDs(all), deleted.ID)
	})
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := createUsers(t, store, "alice", "bob", "charlie")
	alice, bob, charlie := ids["alice"], ids["bob"], ids["charlie"]

	bobPaysAlice := &models.Settlement{FromUserID: bob, ToUserID: alice, Amount: 100, Note: "cash", CreatedBy: bob}
	alicePaysBob := &models.Settlement{FromUserID: alice, ToUserID: bob, Amount: 50, CreatedBy: alice}
	charliePaysBob := &models.Settlement{FromUserID: charlie, ToUserID: bob, Amount: 25, CreatedBy: bob}
	for _, s := range []*models.Settlement{bobPaysAlice, alicePaysBob, charliePaysBob} {
		require.NoError(t, store.CreateSettlement(ctx, s))
		assert.NotEmpty(t, s.ID)
	}

	t.Run("GetSettlement", func(t *testing.T) {
		got, err := store.GetSettlement(ctx, bobPaysAlice.ID)
		require.NoError(t, err)
		assert.Equal(t, *bobPaysAlice, *got)

		_, err = store.GetSettlement(ctx, "nonexistent")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("FindInvolving", func(t *testing.T) {
		got, err := store.FindInvolving(ctx, bob)
		require.NoError(t, err)
		assert.Len(t, got, 3)

		got, err = store.FindInvolving(ctx, charlie)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("FindBetween matches both directions", func(t *testing.T) {
		got, err := store.FindBetween(ctx, alice, bob)
		require.NoError(t, err)
		assert.Len(t, got, 2)

		got, err = store.FindBetween(ctx, alice, charlie)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("schema rejects zero amount and self settlement", func(t *testing.T) {
		err := store.CreateSettlement(ctx, &models.Settlement{FromUserID: alice, ToUserID: bob, Amount: 0, CreatedBy: alice})
		assert.Error(t, err)

		err = store.CreateSettlement(ctx, &models.Settlement{FromUserID: alice, ToUserID: alice, Amount: 10, CreatedBy: alice})
		assert.Error(t, err)
	})
}

func TestFriendships(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	ids := createUsers(t, store, "alice", "bob", "charlie")
	alice, bob, charlie := ids["alice"], ids["bob"], ids["charlie"]

	require.NoError(t, store.AddFriend(ctx, &models.Friendship{UserOne: bob, UserTwo: alice, ActionUser: bob}))
	require.NoError(t, store.AddFriend(ctx, &models.Friendship{UserOne: alice, UserTwo: charlie, ActionUser: alice}))

	t.Run("relation is symmetric", func(t *testing.T) {
		ok, err := store.AreFriends(ctx, alice, bob)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.AreFriends(ctx, bob, alice)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.AreFriends(ctx, bob, charlie)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("duplicate pair in either order", func(t *testing.T) {
		err := store.AddFriend(ctx, &models.Friendship{UserOne: alice, UserTwo: bob, ActionUser: alice})
		assert.ErrorIs(t, err, models.ErrAlreadyFriends)
	})

	t.Run("ListFriends", func(t *testing.T) {
		friends, err := store.ListFriends(ctx, alice)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{bob, charlie}, friends)

		friends, err = store.ListFriends(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, []string{alice}, friends)
	})

	t.Run("RemoveFriend", func(t *testing.T) {
		require.NoError(t, store.RemoveFriend(ctx, charlie, alice))
		ok, err := store.AreFriends(ctx, alice, charlie)
		require.NoError(t, err)
		assert.False(t, ok)

		err = store.RemoveFriend(ctx, charlie, alice)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestActivity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &models.Activity{
		ActorID:   "alice",
		TargetIDs: []string{"alice", "bob"},
		Payload:   models.ExpenseCreated{ExpenseID: "e1", Title: "Dinner", Amount: 300, PayerID: "alice"},
		CreatedAt: 100,
	}
	second := &models.Activity{
		ActorID:   "bob",
		TargetIDs: []string{"bob", "alice"},
		Payload:   models.SettlementCreated{SettlementID: "s1", FromUserID: "bob", ToUserID: "alice", Amount: 100},
		CreatedAt: 200,
	}
	require.NoError(t, store.RecordActivity(ctx, first))
	require.NoError(t, store.RecordActivity(ctx, second))

	feed, err := store.ListActivity(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, second.ID, feed[0].ID)
	assert.Equal(t, second.Payload, feed[0].Payload)
	assert.Equal(t, first.Payload, feed[1].Payload)
	assert.Equal(t, models.ActivityExpenseCreated, feed[1].Kind())

	feed, err = store.ListActivity(ctx, "charlie", 10)
	require.NoError(t, err)
	assert.Empty(t, feed)

	feed, err = store.ListActivity(ctx, "bob", 1)
	require.NoError(t, err)
	assert.Len(t, feed, 1)

	err = store.RecordActivity(ctx, &models.Activity{ActorID: "alice"})
	assert.Error(t, err)
}
