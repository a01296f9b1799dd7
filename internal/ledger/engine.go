// Package ledger computes balances on demand from stored expenses and settlements.
//
// Nothing is cached: every call reads the current committed records and folds them
// with the calculator package. The engine never writes.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
)

const (
	viewAggregate = "aggregate"
	viewPairwise  = "pairwise"
)

// ExpenseReader is the engine's view of the expense store.
type ExpenseReader interface {
	FindNonDeletedInvolving(ctx context.Context, userID string) ([]*models.Expense, error)
	FindNonDeletedBetween(ctx context.Context, userID, otherID string) ([]*models.Expense, error)
}

// SettlementReader is the engine's view of the settlement store.
type SettlementReader interface {
	FindInvolving(ctx context.Context, userID string) ([]*models.Settlement, error)
	FindBetween(ctx context.Context, userID, otherID string) ([]*models.Settlement, error)
}

// Engine answers balance queries. It holds no state between calls.
type Engine struct {
	expenses    ExpenseReader
	settlements SettlementReader
}

// NewEngine creates an engine over the given stores.
func NewEngine(expenses ExpenseReader, settlements SettlementReader) *Engine {
	return &Engine{expenses: expenses, settlements: settlements}
}

// AggregateBalance computes the user's net position across every counterparty.
func (e *Engine) AggregateBalance(ctx context.Context, userID string) (calculator.AggregateBalance, error) {
	defer observe(viewAggregate, time.Now())

	expenses, err := e.expenses.FindNonDeletedInvolving(ctx, userID)
	if err != nil {
		return calculator.AggregateBalance{}, fmt.Errorf("failed to load expenses for %s: %w", userID, err)
	}
	settlements, err := e.settlements.FindInvolving(ctx, userID)
	if err != nil {
		return calculator.AggregateBalance{}, fmt.Errorf("failed to load settlements for %s: %w", userID, err)
	}
	recordFolded(len(expenses), len(settlements))

	return calculator.CalculateAggregate(userID,
		calculator.ActiveExpenses(expenses),
		calculator.Settlements(settlements),
	), nil
}

// PairwiseBalance computes the direct balance between userID and otherID from userID's side.
func (e *Engine) PairwiseBalance(ctx context.Context, userID, otherID string) (calculator.PairwiseBalance, error) {
	defer observe(viewPairwise, time.Now())

	if userID == otherID {
		return calculator.CalculatePairwise(userID, otherID, nil, nil), nil
	}

	expenses, err := e.expenses.FindNonDeletedBetween(ctx, userID, otherID)
	if err != nil {
		return calculator.PairwiseBalance{}, fmt.Errorf("failed to load expenses between %s and %s: %w", userID, otherID, err)
	}
	settlements, err := e.settlements.FindBetween(ctx, userID, otherID)
	if err != nil {
		return calculator.PairwiseBalance{}, fmt.Errorf("failed to load settlements between %s and %s: %w", userID, otherID, err)
	}
	recordFolded(len(expenses), len(settlements))

	return calculator.CalculatePairwise(userID, otherID,
		calculator.ActiveExpenses(expenses),
		calculator.Settlements(settlements),
	), nil
}

func observe(view string, start time.Time) {
	metrics.LedgerComputations.WithLabelValues(view).Inc()
	metrics.LedgerDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

func recordFolded(expenses, settlements int) {
	metrics.LedgerRecords.WithLabelValues("expense").Observe(float64(expenses))
	metrics.LedgerRecords.WithLabelValues("settlement").Observe(float64(settlements))
}
