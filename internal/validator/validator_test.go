package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) GetUsersByIDs(_ context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User)
	for _, id := range ids {
		if u, ok := f[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type failingUsers struct{}

func (failingUsers) GetUsersByIDs(context.Context, []string) (map[string]*models.User, error) {
	return nil, errors.New("database is locked")
}

func directory(ids ...string) fakeUsers {
	f := make(fakeUsers)
	for _, id := range ids {
		f[id] = &models.User{ID: id}
	}
	return f
}

func shares(pairs ...any) []models.Participant {
	var ps []models.Participant
	for i := 0; i < len(pairs); i += 2 {
		ps = append(ps, models.Participant{UserID: pairs[i].(string), Share: money.Amount(pairs[i+1].(int))})
	}
	return ps
}

func TestValidateExpense(t *testing.T) {
	v := New(directory("alice", "bob", "charlie"))

	tests := []struct {
		name  string
		in    ExpenseInput
		codes []Code
	}{
		{
			name: "equal three-way split",
			in:   ExpenseInput{Amount: 30000, PayerID: "alice", Participants: shares("alice", 10000, "bob", 10000, "charlie", 10000)},
		},
		{
			name: "payer not among participants",
			in:   ExpenseInput{Amount: 500, PayerID: "alice", Participants: shares("bob", 500)},
		},
		{
			name: "shares one unit over total",
			in:   ExpenseInput{Amount: 1000, PayerID: "alice", Participants: shares("alice", 334, "bob", 334, "charlie", 333)},
		},
		{
			name: "shares one unit under total",
			in:   ExpenseInput{Amount: 1000, PayerID: "alice", Participants: shares("alice", 333, "bob", 333, "charlie", 333)},
		},
		{
			name:  "shares two units over total",
			in:    ExpenseInput{Amount: 1000, PayerID: "alice", Participants: shares("alice", 501, "bob", 501)},
			codes: []Code{ShareSumMismatch},
		},
		{
			name:  "shares two units under total",
			in:    ExpenseInput{Amount: 1000, PayerID: "alice", Participants: shares("alice", 499, "bob", 499)},
			codes: []Code{ShareSumMismatch},
		},
		{
			name:  "unknown payer",
			in:    ExpenseInput{Amount: 100, PayerID: "mallory", Participants: shares("alice", 100)},
			codes: []Code{PayerNotFound},
		},
		{
			name:  "empty payer",
			in:    ExpenseInput{Amount: 100, Participants: shares("alice", 100)},
			codes: []Code{PayerNotFound},
		},
		{
			name:  "duplicate participant",
			in:    ExpenseInput{Amount: 200, PayerID: "alice", Participants: shares("bob", 100, "bob", 100)},
			codes: []Code{DuplicateParticipant},
		},
		{
			name:  "no participants",
			in:    ExpenseInput{Amount: 0, PayerID: "alice"},
			codes: []Code{NoParticipants},
		},
		{
			name:  "negative share still summing to total",
			in:    ExpenseInput{Amount: 100, PayerID: "alice", Participants: shares("alice", 150, "bob", -50)},
			codes: []Code{NegativeShare},
		},
		{
			name: "every violation reported together",
			in: ExpenseInput{
				Amount:       -10,
				PayerID:      "mallory",
				Participants: shares("bob", 100, "bob", -5, "trent", 0, "victor", 0),
			},
			codes: []Code{NegativeAmount, PayerNotFound, DuplicateParticipant, ParticipantNotFound, NegativeShare, ShareSumMismatch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateExpense(context.Background(), tt.in)
			if len(tt.codes) == 0 {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.codes, verr.Codes())
		})
	}
}

func TestValidateExpense_ReportsDetails(t *testing.T) {
	v := New(directory("alice"))

	err := v.ValidateExpense(context.Background(), ExpenseInput{
		Amount:       1000,
		PayerID:      "alice",
		Participants: shares("alice", 400, "ghost", 400, "phantom", 100),
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 2)

	missing := verr.Violations[0]
	assert.Equal(t, ParticipantNotFound, missing.Code)
	assert.Equal(t, []string{"ghost", "phantom"}, missing.UserIDs)

	mismatch := verr.Violations[1]
	assert.Equal(t, ShareSumMismatch, mismatch.Code)
	assert.Equal(t, money.Amount(900), mismatch.Sum)
	assert.Equal(t, money.Amount(-100), mismatch.Difference)
	assert.Contains(t, verr.Error(), "ShareSumMismatch")
}

func TestValidateExpense_DirectoryFailure(t *testing.T) {
	err := New(failingUsers{}).ValidateExpense(context.Background(), ExpenseInput{
		Amount: 100, PayerID: "alice", Participants: shares("alice", 100),
	})
	require.Error(t, err)

	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestValidateSettlement(t *testing.T) {
	v := New(directory("alice", "bob"))

	tests := []struct {
		name  string
		in    SettlementInput
		codes []Code
	}{
		{name: "one minor unit", in: SettlementInput{FromUserID: "bob", ToUserID: "alice", Amount: 1}},
		{name: "zero amount", in: SettlementInput{FromUserID: "bob", ToUserID: "alice", Amount: 0}, codes: []Code{NonPositiveAmount}},
		{name: "negative amount", in: SettlementInput{FromUserID: "bob", ToUserID: "alice", Amount: -100}, codes: []Code{NonPositiveAmount}},
		{name: "same user", in: SettlementInput{FromUserID: "bob", ToUserID: "bob", Amount: 100}, codes: []Code{SameUserSettlement}},
		{name: "unknown receiver", in: SettlementInput{FromUserID: "bob", ToUserID: "ghost", Amount: 100}, codes: []Code{UserNotFound}},
		{
			name:  "all at once",
			in:    SettlementInput{FromUserID: "ghost", ToUserID: "ghost", Amount: 0},
			codes: []Code{SameUserSettlement, NonPositiveAmount, UserNotFound, UserNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSettlement(context.Background(), tt.in)
			if len(tt.codes) == 0 {
				require.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.codes, verr.Codes())
		})
	}
}
