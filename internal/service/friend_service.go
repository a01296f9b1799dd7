package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/activity"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

// FriendService manages the friends list. Friendship never affects balances;
// it only decides who shows up in the list with their pairwise balance.
type FriendService struct {
	users    storage.UserDirectory
	friends  storage.FriendDirectory
	engine   *ledger.Engine
	sink     activity.Sink
	currency string
}

// NewFriendService creates a new FriendService.
func NewFriendService(users storage.UserDirectory, friends storage.FriendDirectory, engine *ledger.Engine, sink activity.Sink, currency string) *FriendService {
	return &FriendService{users: users, friends: friends, engine: engine, sink: sink, currency: currency}
}

// AddFriend befriends a user identified by ID or by email.
func (s *FriendService) AddFriend(ctx context.Context, req *connect.Request[AddFriendRequest]) (*connect.Response[AddFriendResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	var friend *models.User
	if req.Msg.Email != "" {
		friend, err = s.users.GetUserByEmail(ctx, req.Msg.Email)
	} else {
		friend, err = s.users.GetUserByID(ctx, req.Msg.FriendID)
	}
	if err != nil {
		slog.Error("AddFriend failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	if friend == nil {
		return nil, toConnectError(fmt.Errorf("user: %w", models.ErrNotFound))
	}
	if friend.ID == userID {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("cannot befriend yourself"))
	}

	if err := s.friends.AddFriend(ctx, &models.Friendship{
		UserOne:    userID,
		UserTwo:    friend.ID,
		ActionUser: userID,
	}); err != nil {
		slog.Warn("AddFriend failed", "user_id", userID, "friend_id", friend.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Friend added", "user_id", userID, "friend_id", friend.ID)
	s.sink.Notify(ctx, &models.Activity{
		ActorID:   userID,
		TargetIDs: []string{userID, friend.ID},
		Payload:   models.FriendAdded{FriendID: friend.ID},
	})

	entry, err := s.friendEntry(ctx, userID, friend)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&AddFriendResponse{Friend: entry}), nil
}

// RemoveFriend ends a friendship. Balances between the two are unaffected.
func (s *FriendService) RemoveFriend(ctx context.Context, req *connect.Request[RemoveFriendRequest]) (*connect.Response[RemoveFriendResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	if err := s.friends.RemoveFriend(ctx, userID, req.Msg.FriendID); err != nil {
		slog.Warn("RemoveFriend failed", "user_id", userID, "friend_id", req.Msg.FriendID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Friend removed", "user_id", userID, "friend_id", req.Msg.FriendID)
	return connect.NewResponse(&RemoveFriendResponse{}), nil
}

// ListFriends lists the caller's friends with the pairwise balance for each.
func (s *FriendService) ListFriends(ctx context.Context, req *connect.Request[ListFriendsRequest]) (*connect.Response[ListFriendsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	friendIDs, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		slog.Error("ListFriends failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	users, err := s.users.GetUsersByIDs(ctx, friendIDs)
	if err != nil {
		slog.Error("ListFriends failed to resolve users", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &ListFriendsResponse{Friends: make([]Friend, 0, len(friendIDs))}
	for _, id := range friendIDs {
		friend, ok := users[id]
		if !ok {
			continue
		}
		entry, err := s.friendEntry(ctx, userID, friend)
		if err != nil {
			return nil, err
		}
		resp.Friends = append(resp.Friends, entry)
	}

	slog.Info("ListFriends successful", "user_id", userID, "count", len(resp.Friends))
	return connect.NewResponse(resp), nil
}

func (s *FriendService) friendEntry(ctx context.Context, userID string, friend *models.User) (Friend, error) {
	balance, err := s.engine.PairwiseBalance(ctx, userID, friend.ID)
	if err != nil {
		slog.Error("Failed to compute friend balance", "user_id", userID, "friend_id", friend.ID, "error", err)
		return Friend{}, toConnectError(err)
	}
	return Friend{
		User:           toUser(friend),
		Balance:        balance.Balance,
		BalanceDisplay: money.Format(balance.Balance.Abs(), s.currency),
		Status:         balance.Status,
	}, nil
}
