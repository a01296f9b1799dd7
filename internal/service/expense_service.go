package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/activity"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/validator"
)

// ExpenseService records, edits, soft-deletes and restores expenses.
// Every mutation is validated before it is stored and announced to the activity sink after.
type ExpenseService struct {
	store     storage.ExpenseStore
	validator *validator.Validator
	sink      activity.Sink
	currency  string
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store storage.ExpenseStore, v *validator.Validator, sink activity.Sink, currency string) *ExpenseService {
	return &ExpenseService{store: store, validator: v, sink: sink, currency: currency}
}

// CreateExpense validates and stores a new expense.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("CreateExpense request received",
		"user_id", userID,
		"amount", req.Msg.Amount,
		"split_method", req.Msg.SplitMethod,
		"participants_count", len(req.Msg.Participants),
	)

	payerID := req.Msg.PayerID
	if payerID == "" {
		payerID = userID
	}
	participants, err := deriveParticipants(req.Msg.SplitMethod, req.Msg.Amount, req.Msg.Participants)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateExpense(ctx, validator.ExpenseInput{
		Amount:       req.Msg.Amount,
		PayerID:      payerID,
		Participants: participants,
	}); err != nil {
		slog.Warn("CreateExpense rejected", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	expense := &models.Expense{
		Title:        req.Msg.Title,
		Amount:       req.Msg.Amount,
		PayerID:      payerID,
		Participants: participants,
		SplitMethod:  models.SplitMethod(req.Msg.SplitMethod),
		CreatedBy:    userID,
	}
	if !expense.Involves(userID) {
		return nil, toConnectError(fmt.Errorf("creator must pay or participate: %w", models.ErrForbidden))
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "version", expense.Version)
	s.sink.Notify(ctx, &models.Activity{
		ActorID:   userID,
		TargetIDs: involvedUsers(expense),
		Payload: models.ExpenseCreated{
			ExpenseID: expense.ID,
			Title:     expense.Title,
			Amount:    expense.Amount,
			PayerID:   expense.PayerID,
		},
	})

	return connect.NewResponse(&CreateExpenseResponse{Expense: toExpense(expense, s.currency)}), nil
}

// GetExpense retrieves an expense, deleted or not. Only users related to it may see it.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[GetExpenseRequest]) (*connect.Response[GetExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.load(ctx, userID, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&GetExpenseResponse{Expense: toExpense(expense, s.currency)}), nil
}

// ListExpenses lists expenses the caller pays for or participates in, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesInvolving(ctx, userID, req.Msg.IncludeDeleted)
	if err != nil {
		slog.Error("ListExpenses failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &ListExpensesResponse{Expenses: make([]Expense, len(expenses))}
	for i, e := range expenses {
		resp.Expenses[i] = toExpense(e, s.currency)
	}

	slog.Info("ListExpenses successful", "user_id", userID, "count", len(expenses))
	return connect.NewResponse(resp), nil
}

// UpdateExpense re-validates and replaces an expense's title, amount and participants.
// The payer is held fixed. The request must carry the version it was based on.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[UpdateExpenseRequest]) (*connect.Response[UpdateExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("UpdateExpense request received",
		"user_id", userID,
		"expense_id", req.Msg.ExpenseID,
		"version", req.Msg.Version,
	)

	existing, err := s.load(ctx, userID, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}

	participants, err := deriveParticipants(req.Msg.SplitMethod, req.Msg.Amount, req.Msg.Participants)
	if err != nil {
		return nil, err
	}
	if err := s.validator.ValidateExpense(ctx, validator.ExpenseInput{
		Amount:       req.Msg.Amount,
		PayerID:      existing.PayerID,
		Participants: participants,
	}); err != nil {
		slog.Warn("UpdateExpense rejected", "expense_id", existing.ID, "error", err)
		return nil, toConnectError(err)
	}

	updated := *existing
	updated.Title = req.Msg.Title
	if updated.Title == "" {
		updated.Title = existing.Title
	}
	updated.Amount = req.Msg.Amount
	updated.Participants = participants
	updated.SplitMethod = models.SplitMethod(req.Msg.SplitMethod)

	if err := s.store.UpdateExpense(ctx, &updated, req.Msg.Version); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", existing.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense updated", "expense_id", updated.ID, "version", updated.Version)
	s.sink.Notify(ctx, &models.Activity{
		ActorID:   userID,
		TargetIDs: involvedUsers(existing, &updated),
		Payload: models.ExpenseUpdated{
			ExpenseID:      updated.ID,
			Title:          updated.Title,
			PreviousAmount: existing.Amount,
			Amount:         updated.Amount,
		},
	})

	return connect.NewResponse(&UpdateExpenseResponse{Expense: toExpense(&updated, s.currency)}), nil
}

// DeleteExpense soft-deletes an expense. It stops counting toward any balance
// but stays readable and restorable.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[DeleteExpenseRequest]) (*connect.Response[DeleteExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.load(ctx, userID, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}

	deletion := models.Deleted{By: userID, At: time.Now().Unix(), Reason: req.Msg.Reason}
	if err := s.store.SoftDeleteExpense(ctx, expense.ID, deletion, req.Msg.Version); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}
	expense.State = deletion
	expense.Version = req.Msg.Version + 1
	expense.UpdatedAt = deletion.At

	slog.Info("Expense deleted", "expense_id", expense.ID, "deleted_by", userID)
	s.sink.Notify(ctx, &models.Activity{
		ActorID:   userID,
		TargetIDs: involvedUsers(expense),
		Payload:   models.ExpenseDeleted{ExpenseID: expense.ID, Title: expense.Title, Reason: deletion.Reason},
	})

	return connect.NewResponse(&DeleteExpenseResponse{Expense: toExpense(expense, s.currency)}), nil
}

// RestoreExpense clears an expense's soft-delete state so it counts again.
func (s *ExpenseService) RestoreExpense(ctx context.Context, req *connect.Request[RestoreExpenseRequest]) (*connect.Response[RestoreExpenseResponse], error) {
	userID, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkRequest(req.Msg); err != nil {
		return nil, err
	}

	expense, err := s.load(ctx, userID, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}

	if err := s.store.RestoreExpense(ctx, expense.ID, req.Msg.Version); err != nil {
		slog.Error("RestoreExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}
	restored, err := s.store.GetExpense(ctx, expense.ID)
	if err != nil {
		slog.Error("Failed to fetch restored expense", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense restored", "expense_id", restored.ID, "restored_by", userID)
	s.sink.Notify(ctx, &models.Activity{
		ActorID:   userID,
		TargetIDs: involvedUsers(restored),
		Payload:   models.ExpenseRestored{ExpenseID: restored.ID, Title: restored.Title},
	})

	return connect.NewResponse(&RestoreExpenseResponse{Expense: toExpense(restored, s.currency)}), nil
}

// load fetches an expense and checks the caller may act on it.
func (s *ExpenseService) load(ctx context.Context, userID, expenseID string) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		slog.Warn("Expense lookup failed", "expense_id", expenseID, "error", err)
		return nil, toConnectError(err)
	}
	if !models.CanModify(userID, expense) {
		return nil, toConnectError(fmt.Errorf("expense %s: %w", expenseID, models.ErrForbidden))
	}
	return expense, nil
}
