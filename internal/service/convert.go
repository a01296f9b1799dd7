package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/validator"
)

var errUnauthenticated = errors.New("authentication required")

// callerID returns the authenticated user making the request.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errUnauthenticated)
	}
	return userID, nil
}

// deriveParticipants turns request participants into concrete shares.
func deriveParticipants(method string, total money.Amount, inputs []ParticipantInput) ([]models.Participant, error) {
	splitInputs := make([]calculator.SplitInput, len(inputs))
	for i, in := range inputs {
		splitInputs[i] = calculator.SplitInput{UserID: in.UserID, Share: in.Share}
		if models.SplitMethod(method) != models.SplitPercent {
			continue
		}
		if in.Percent == "" {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("percent required for %s", in.UserID))
		}
		pct, err := decimal.NewFromString(in.Percent)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument,
				fmt.Errorf("invalid percent for %s: %w", in.UserID, err))
		}
		splitInputs[i].Percent = pct
	}

	participants, err := calculator.DeriveShares(models.SplitMethod(method), total, splitInputs)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return participants, nil
}

func toUser(u *models.User) User {
	return User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toExpense(e *models.Expense, currency string) Expense {
	out := Expense{
		ID:            e.ID,
		Title:         e.Title,
		Amount:        e.Amount,
		AmountDisplay: money.Format(e.Amount, currency),
		PayerID:       e.PayerID,
		Participants:  make([]Participant, len(e.Participants)),
		SplitMethod:   string(e.SplitMethod),
		Version:       e.Version,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	for i, p := range e.Participants {
		out.Participants[i] = Participant{
			UserID:       p.UserID,
			Share:        p.Share,
			ShareDisplay: money.Format(p.Share, currency),
		}
	}
	if d, ok := e.Deletion(); ok {
		out.Deleted = &Deletion{DeletedBy: d.By, DeletedAt: d.At, Reason: d.Reason}
	}
	return out
}

func toSettlement(s *models.Settlement, currency string) Settlement {
	return Settlement{
		ID:            s.ID,
		FromUserID:    s.FromUserID,
		ToUserID:      s.ToUserID,
		Amount:        s.Amount,
		AmountDisplay: money.Format(s.Amount, currency),
		Note:          s.Note,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
	}
}

func toViolations(verr *validator.ValidationError) []Violation {
	out := make([]Violation, len(verr.Violations))
	for i, v := range verr.Violations {
		out[i] = Violation{
			Code:       string(v.Code),
			Field:      v.Field,
			Message:    v.Message,
			UserIDs:    v.UserIDs,
			Sum:        v.Sum,
			Difference: v.Difference,
		}
	}
	return out
}

// involvedUsers lists the payer and participants of an expense, deduplicated.
func involvedUsers(expenses ...*models.Expense) []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, e := range expenses {
		add(e.PayerID)
		for _, p := range e.Participants {
			add(p.UserID)
		}
	}
	return ids
}
