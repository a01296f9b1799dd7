package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/activity"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/validator"
)

// SettlementService records direct payments between users. Settlements are immutable.
type SettlementService struct {
	store     storage.SettlementStore
	validator *validator.Validator
	sink      activity.Sink
	currency  string
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(store storage.SettlementStore, v *validator.Validator, sink activity.Sink, currency string) *SettlementService {
	return &SettlementService{store: store, validator: v, sink: sink, currency: currency}
}

// CreateSettlement records a payment. Either party may record it.
// No matching debt is required, so a payment larger than the debt flips the balance.
func (s *SettlementService) CreateSettlement(ctx context.Context, req *connect.Request[CreateSettlementRequest]) (*connect.Response[CreateSettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	fromUserID := req.Msg.FromUserID
	if fromUserID == "" {
		fromUserID = userID
	}

	slog.Info("CreateSettlement request received",
		"user_id", userID,
		"from_user_id", fromUserID,
		"to_user_id", req.Msg.ToUserID,
		"amount", req.Msg.Amount,
	)

	if err := s.validator.ValidateSettlement(ctx, validator.SettlementInput{
		FromUserID: fromUserID,
		ToUserID:   req.Msg.ToUserID,
		Amount:     req.Msg.Amount,
	}); err != nil {
		slog.Warn("CreateSettlement rejected", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	settlement := &models.Settlement{
		FromUserID: fromUserID,
		ToUserID:   req.Msg.ToUserID,
		Amount:     req.Msg.Amount,
		Note:       req.Msg.Note,
		CreatedBy:  userID,
	}
	if !settlement.Involves(userID) {
		return nil, toConnectError(fmt.Errorf("only the payer or the recipient may record a settlement: %w", models.ErrForbidden))
	}

	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("CreateSettlement failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Settlement created", "settlement_id", settlement.ID)
	s.sink.Notify(ctx, &models.Activity{
		ActorID:   userID,
		TargetIDs: []string{settlement.FromUserID, settlement.ToUserID},
		Payload: models.SettlementCreated{
			SettlementID: settlement.ID,
			FromUserID:   settlement.FromUserID,
			ToUserID:     settlement.ToUserID,
			Amount:       settlement.Amount,
			Note:         settlement.Note,
		},
	})

	return connect.NewResponse(&CreateSettlementResponse{Settlement: toSettlement(settlement, s.currency)}), nil
}

// GetSettlement retrieves a settlement the caller paid or received.
func (s *SettlementService) GetSettlement(ctx context.Context, req *connect.Request[GetSettlementRequest]) (*connect.Response[GetSettlementResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if err != nil {
		slog.Warn("GetSettlement failed", "settlement_id", req.Msg.SettlementID, "error", err)
		return nil, toConnectError(err)
	}
	if !settlement.Involves(userID) {
		return nil, toConnectError(fmt.Errorf("settlement %s: %w", settlement.ID, models.ErrForbidden))
	}

	return connect.NewResponse(&GetSettlementResponse{Settlement: toSettlement(settlement, s.currency)}), nil
}

// ListSettlements lists the caller's settlements, newest first.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[ListSettlementsRequest]) (*connect.Response[ListSettlementsResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	var settlements []*models.Settlement
	if req.Msg.WithUserID != "" {
		settlements, err = s.store.FindBetween(ctx, userID, req.Msg.WithUserID)
	} else {
		settlements, err = s.store.FindInvolving(ctx, userID)
	}
	if err != nil {
		slog.Error("ListSettlements failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &ListSettlementsResponse{Settlements: make([]Settlement, len(settlements))}
	for i, st := range settlements {
		resp.Settlements[i] = toSettlement(st, s.currency)
	}
	return connect.NewResponse(resp), nil
}
