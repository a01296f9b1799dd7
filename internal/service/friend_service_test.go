package service

import (
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/calculator"
)

func TestFriends(t *testing.T) {
	env := newTestEnv(t)
	alice, a := env.register("alice")
	bob, b := env.register("bob")

	add := func(client *Client, req *AddFriendRequest) (*AddFriendResponse, error) {
		resp, err := client.AddFriend.CallUnary(env.ctx, connect.NewRequest(req))
		if err != nil {
			return nil, err
		}
		return resp.Msg, nil
	}
	list := func(client *Client) []Friend {
		t.Helper()
		resp, err := client.ListFriends.CallUnary(env.ctx, connect.NewRequest(&ListFriendsRequest{}))
		require.NoError(t, err)
		return resp.Msg.Friends
	}

	t.Run("add by email in any case", func(t *testing.T) {
		resp, err := add(alice, &AddFriendRequest{Email: "BOB@example.com"})
		require.NoError(t, err)
		assert.Equal(t, b.ID, resp.Friend.User.ID)
		assert.Equal(t, calculator.StatusSettled, resp.Friend.Status)
	})

	t.Run("friendship is symmetric and unique", func(t *testing.T) {
		_, err := add(bob, &AddFriendRequest{FriendID: a.ID})
		assert.Equal(t, connect.CodeAlreadyExists, connect.CodeOf(err))

		friends := list(bob)
		require.Len(t, friends, 1)
		assert.Equal(t, a.ID, friends[0].User.ID)
	})

	t.Run("invalid targets", func(t *testing.T) {
		_, err := add(alice, &AddFriendRequest{FriendID: a.ID})
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

		_, err = add(alice, &AddFriendRequest{Email: "nobody@example.com"})
		assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

		_, err = add(alice, &AddFriendRequest{})
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

		_, err = add(alice, &AddFriendRequest{FriendID: b.ID, Email: "bob@example.com"})
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})

	t.Run("list carries pairwise balances", func(t *testing.T) {
		env.createExpense(alice, equalSplit(300, "", a.ID, b.ID))

		friends := list(alice)
		require.Len(t, friends, 1)
		assert.EqualValues(t, 150, friends[0].Balance)
		assert.Equal(t, "$1.50", friends[0].BalanceDisplay)
		assert.Equal(t, calculator.StatusOwesYou, friends[0].Status)

		friends = list(bob)
		require.Len(t, friends, 1)
		assert.EqualValues(t, -150, friends[0].Balance)
		assert.Equal(t, calculator.StatusYouOwe, friends[0].Status)
		assert.True(t, env.pairwise(bob, a.ID).IsFriend)
	})

	t.Run("removing a friend keeps the balance", func(t *testing.T) {
		_, err := bob.RemoveFriend.CallUnary(env.ctx, connect.NewRequest(&RemoveFriendRequest{FriendID: a.ID}))
		require.NoError(t, err)
		assert.Empty(t, list(alice))
		balance := env.pairwise(alice, b.ID)
		assert.EqualValues(t, 150, balance.Balance)
		assert.False(t, balance.IsFriend)

		_, err = bob.RemoveFriend.CallUnary(env.ctx, connect.NewRequest(&RemoveFriendRequest{FriendID: a.ID}))
		assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	})
}
