package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/activity"
	"github.com/mmynk/splitledger/internal/storage"
)

// ActivityService serves the caller's activity feed.
type ActivityService struct {
	feed     storage.ActivityFeed
	currency string
}

// NewActivityService creates a new ActivityService.
func NewActivityService(feed storage.ActivityFeed, currency string) *ActivityService {
	return &ActivityService{feed: feed, currency: currency}
}

// ListActivity returns the most recent events addressed to the caller.
func (s *ActivityService) ListActivity(ctx context.Context, req *connect.Request[ListActivityRequest]) (*connect.Response[ListActivityResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	activities, err := s.feed.ListActivity(ctx, userID, req.Msg.Limit)
	if err != nil {
		slog.Error("ListActivity failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &ListActivityResponse{Activities: make([]Activity, len(activities))}
	for i, a := range activities {
		resp.Activities[i] = Activity{
			ID:        a.ID,
			Kind:      string(a.Kind()),
			ActorID:   a.ActorID,
			Summary:   activity.Describe(a, s.currency),
			Payload:   a.Payload,
			CreatedAt: a.CreatedAt,
		}
	}
	return connect.NewResponse(resp), nil
}
