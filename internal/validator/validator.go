// Package validator enforces write-time rules for expenses and settlements.
//
// Every check runs independently and all violations are returned together in a
// *ValidationError, so one request can report every distinct problem.
package validator

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// ShareTolerance is the largest allowed gap between the sum of shares and the total,
// covering rounding from equal and percent splits.
const ShareTolerance money.Amount = 1

// UserLookup resolves user IDs. Missing users are omitted from the result.
type UserLookup interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// ExpenseInput is the proposed state of an expense.
type ExpenseInput struct {
	Amount       money.Amount
	PayerID      string
	Participants []models.Participant
}

// Validator checks expense and settlement input against the user directory.
type Validator struct {
	users UserLookup
}

// New creates a Validator backed by the given user directory.
func New(users UserLookup) *Validator {
	return &Validator{users: users}
}

// ValidateExpense checks an expense's payer, participants and shares.
// It returns nil when there are no violations, a *ValidationError when there are,
// and any other error only when the user directory fails.
func (v *Validator) ValidateExpense(ctx context.Context, in ExpenseInput) error {
	var c collector

	if in.Amount < 0 {
		c.add(Violation{
			Code:    NegativeAmount,
			Field:   "amount",
			Message: fmt.Sprintf("amount must not be negative, got %d", in.Amount),
		})
	}

	if len(in.Participants) == 0 {
		c.add(Violation{
			Code:    NoParticipants,
			Field:   "participants",
			Message: "at least one participant is required",
		})
	}

	ids := make([]string, 0, len(in.Participants)+1)
	if in.PayerID != "" {
		ids = append(ids, in.PayerID)
	}
	for _, p := range in.Participants {
		ids = append(ids, p.UserID)
	}
	found, err := v.users.GetUsersByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return fmt.Errorf("failed to resolve users: %w", err)
	}

	if _, ok := found[in.PayerID]; !ok || in.PayerID == "" {
		c.add(Violation{
			Code:    PayerNotFound,
			Field:   "payer_id",
			Message: fmt.Sprintf("payer %q does not exist", in.PayerID),
			UserIDs: []string{in.PayerID},
		})
	}

	seen := make(map[string]int, len(in.Participants))
	var duplicates []string
	for _, p := range in.Participants {
		seen[p.UserID]++
		if seen[p.UserID] == 2 {
			duplicates = append(duplicates, p.UserID)
		}
	}
	if len(duplicates) > 0 {
		c.add(Violation{
			Code:    DuplicateParticipant,
			Field:   "participants",
			Message: fmt.Sprintf("participants listed more than once: %s", strings.Join(duplicates, ", ")),
			UserIDs: duplicates,
		})
	}

	var missing []string
	checked := make(map[string]bool, len(in.Participants))
	for _, p := range in.Participants {
		if checked[p.UserID] {
			continue
		}
		checked[p.UserID] = true
		if _, ok := found[p.UserID]; !ok {
			missing = append(missing, p.UserID)
		}
	}
	if len(missing) > 0 {
		c.add(Violation{
			Code:    ParticipantNotFound,
			Field:   "participants",
			Message: fmt.Sprintf("participants do not exist: %s", strings.Join(missing, ", ")),
			UserIDs: missing,
		})
	}

	var negative []string
	var sum money.Amount
	for _, p := range in.Participants {
		if p.Share < 0 {
			negative = append(negative, p.UserID)
		}
		sum += p.Share
	}
	if len(negative) > 0 {
		c.add(Violation{
			Code:    NegativeShare,
			Field:   "participants.share",
			Message: fmt.Sprintf("shares must not be negative for: %s", strings.Join(negative, ", ")),
			UserIDs: negative,
		})
	}

	if diff := sum - in.Amount; diff.Abs() > ShareTolerance {
		c.add(Violation{
			Code:       ShareSumMismatch,
			Field:      "participants.share",
			Message:    fmt.Sprintf("shares sum to %d but amount is %d (difference %d)", sum, in.Amount, diff),
			Sum:        sum,
			Difference: diff,
		})
	}

	return record(c.err())
}

// SettlementInput is the proposed settlement.
type SettlementInput struct {
	FromUserID string
	ToUserID   string
	Amount     money.Amount
}

// ValidateSettlement checks that a settlement moves at least one minor unit
// between two distinct, existing users.
func (v *Validator) ValidateSettlement(ctx context.Context, in SettlementInput) error {
	var c collector

	if in.FromUserID == in.ToUserID {
		c.add(Violation{
			Code:    SameUserSettlement,
			Field:   "to_user_id",
			Message: "a settlement must be between two different users",
			UserIDs: []string{in.FromUserID},
		})
	}

	if in.Amount < 1 {
		c.add(Violation{
			Code:    NonPositiveAmount,
			Field:   "amount",
			Message: fmt.Sprintf("amount must be at least 1 minor unit, got %d", in.Amount),
		})
	}

	found, err := v.users.GetUsersByIDs(ctx, uniqueIDs([]string{in.FromUserID, in.ToUserID}))
	if err != nil {
		return fmt.Errorf("failed to resolve users: %w", err)
	}
	for _, side := range []struct{ field, id string }{
		{"from_user_id", in.FromUserID},
		{"to_user_id", in.ToUserID},
	} {
		if _, ok := found[side.id]; !ok {
			c.add(Violation{
				Code:    UserNotFound,
				Field:   side.field,
				Message: fmt.Sprintf("user %q does not exist", side.id),
				UserIDs: []string{side.id},
			})
		}
	}

	return record(c.err())
}

func record(err error) error {
	if verr, ok := err.(*ValidationError); ok {
		for _, v := range verr.Violations {
			metrics.ValidationViolations.WithLabelValues(string(v.Code)).Inc()
		}
	}
	return err
}

// uniqueIDs drops empty and repeated IDs, keeping first-seen order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
