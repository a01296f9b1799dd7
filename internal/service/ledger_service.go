package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/validator"
)

// LedgerService answers balance queries and validates proposed expenses.
type LedgerService struct {
	engine    *ledger.Engine
	users     storage.UserDirectory
	friends   storage.FriendDirectory
	validator *validator.Validator
	currency  string
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(engine *ledger.Engine, users storage.UserDirectory, friends storage.FriendDirectory, v *validator.Validator, currency string) *LedgerService {
	return &LedgerService{engine: engine, users: users, friends: friends, validator: v, currency: currency}
}

// GetAggregateBalance returns the caller's position across every counterparty.
// Breakdown entries are annotated with display names and the friend flag.
func (s *LedgerService) GetAggregateBalance(ctx context.Context, req *connect.Request[GetAggregateBalanceRequest]) (*connect.Response[GetAggregateBalanceResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	balance, err := s.engine.AggregateBalance(ctx, userID)
	if err != nil {
		slog.Error("GetAggregateBalance failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	counterpartyIDs := make([]string, len(balance.PerCounterparty))
	for i, c := range balance.PerCounterparty {
		counterpartyIDs[i] = c.CounterpartyID
	}
	users, err := s.users.GetUsersByIDs(ctx, counterpartyIDs)
	if err != nil {
		slog.Error("GetAggregateBalance failed to resolve users", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	friendIDs, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		slog.Error("GetAggregateBalance failed to list friends", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}
	isFriend := make(map[string]bool, len(friendIDs))
	for _, id := range friendIDs {
		isFriend[id] = true
	}

	resp := &GetAggregateBalanceResponse{
		UserID:          userID,
		TotalOwed:       balance.TotalOwed,
		TotalOwing:      balance.TotalOwing,
		NetBalance:      balance.NetBalance,
		NetDisplay:      money.Format(balance.NetBalance, s.currency),
		PerCounterparty: make([]CounterpartyBalance, len(balance.PerCounterparty)),
	}
	for i, c := range balance.PerCounterparty {
		entry := CounterpartyBalance{
			CounterpartyID: c.CounterpartyID,
			IsFriend:       isFriend[c.CounterpartyID],
			Balance:        c.Balance,
			BalanceDisplay: money.Format(c.Balance.Abs(), s.currency),
			Status:         c.Status,
		}
		if u, ok := users[c.CounterpartyID]; ok {
			entry.DisplayName = u.DisplayName
		}
		resp.PerCounterparty[i] = entry
	}

	slog.Debug("GetAggregateBalance successful",
		"user_id", userID,
		"net", balance.NetBalance.String(),
		"counterparties", len(resp.PerCounterparty),
	)
	return connect.NewResponse(resp), nil
}

// GetPairwiseBalance returns the direct balance between the caller and another user.
func (s *LedgerService) GetPairwiseBalance(ctx context.Context, req *connect.Request[GetPairwiseBalanceRequest]) (*connect.Response[GetPairwiseBalanceResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	other, err := s.users.GetUserByID(ctx, req.Msg.OtherUserID)
	if err != nil {
		slog.Error("GetPairwiseBalance failed", "error", err)
		return nil, toConnectError(err)
	}
	if other == nil {
		return nil, toConnectError(fmt.Errorf("user %s: %w", req.Msg.OtherUserID, models.ErrNotFound))
	}

	balance, err := s.engine.PairwiseBalance(ctx, userID, other.ID)
	if err != nil {
		slog.Error("GetPairwiseBalance failed", "user_id", userID, "other_user_id", other.ID, "error", err)
		return nil, toConnectError(err)
	}

	isFriend, err := s.friends.AreFriends(ctx, userID, other.ID)
	if err != nil {
		slog.Error("GetPairwiseBalance failed to check friendship", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &GetPairwiseBalanceResponse{
		UserID:                  balance.UserID,
		OtherUserID:             balance.OtherID,
		IsFriend:                isFriend,
		Balance:                 balance.Balance,
		BalanceDisplay:          money.Format(balance.Balance.Abs(), s.currency),
		Status:                  balance.Status,
		ContributingExpenses:    make([]ExpenseContribution, len(balance.ContributingExpenses)),
		ContributingSettlements: make([]SettlementContribution, len(balance.ContributingSettlements)),
	}
	for i, c := range balance.ContributingExpenses {
		resp.ContributingExpenses[i] = ExpenseContribution(c)
	}
	for i, c := range balance.ContributingSettlements {
		resp.ContributingSettlements[i] = SettlementContribution(c)
	}

	return connect.NewResponse(resp), nil
}

// ValidateExpenseInput runs expense validation without writing anything.
// Violations are returned in the response, not as an error.
func (s *LedgerService) ValidateExpenseInput(ctx context.Context, req *connect.Request[ValidateExpenseInputRequest]) (*connect.Response[ValidateExpenseInputResponse], error) {
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}

	in := validator.ExpenseInput{
		Amount:       req.Msg.Amount,
		PayerID:      req.Msg.PayerID,
		Participants: make([]models.Participant, len(req.Msg.Participants)),
	}
	for i, p := range req.Msg.Participants {
		in.Participants[i] = models.Participant{UserID: p.UserID, Share: p.Share}
	}

	resp := &ValidateExpenseInputResponse{Valid: true, Violations: []Violation{}}
	err := s.validator.ValidateExpense(ctx, in)
	var verr *validator.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		resp.Valid = false
		resp.Violations = toViolations(verr)
	default:
		slog.Error("ValidateExpenseInput failed", "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(resp), nil
}
