package calculator

import (
	"sort"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// Status classifies a signed balance from the current user's point of view.
type Status string

const (
	// StatusOwesYou: the counterparty owes the current user.
	StatusOwesYou Status = "owes_you"
	// StatusYouOwe: the current user owes the counterparty.
	StatusYouOwe Status = "you_owe"
	// StatusSettled: nothing is owed either way.
	StatusSettled Status = "settled"
)

// Classify returns the status of a signed balance.
func Classify(b money.Amount) Status {
	switch {
	case b > 0:
		return StatusOwesYou
	case b < 0:
		return StatusYouOwe
	default:
		return StatusSettled
	}
}

// Share is one participant's allocation within an expense.
type Share struct {
	UserID string
	Amount money.Amount
}

// ExpenseForBalance represents an active expense with the minimal information needed
// for balance calculations. Build it with ActiveExpenses.
type ExpenseForBalance struct {
	ID      string
	Title   string
	Total   money.Amount
	PayerID string
	Shares  []Share
}

func (e ExpenseForBalance) shareOf(userID string) (money.Amount, bool) {
	for _, s := range e.Shares {
		if s.UserID == userID {
			return s.Amount, true
		}
	}
	return 0, false
}

// SettlementForBalance represents a settlement with the minimal information needed
// for balance calculations.
type SettlementForBalance struct {
	ID         string
	FromUserID string // Who paid (debtor settling up)
	ToUserID   string // Who received (creditor being paid)
	Amount     money.Amount
}

// ActiveExpenses converts expense records for the ledger, dropping every soft-deleted one.
func ActiveExpenses(records []*models.Expense) []ExpenseForBalance {
	out := make([]ExpenseForBalance, 0, len(records))
	for _, r := range records {
		if r == nil || r.IsDeleted() {
			continue
		}
		shares := make([]Share, len(r.Participants))
		for i, p := range r.Participants {
			shares[i] = Share{UserID: p.UserID, Amount: p.Share}
		}
		out = append(out, ExpenseForBalance{
			ID:      r.ID,
			Title:   r.Title,
			Total:   r.Amount,
			PayerID: r.PayerID,
			Shares:  shares,
		})
	}
	return out
}

// Settlements converts settlement records for the ledger.
func Settlements(records []*models.Settlement) []SettlementForBalance {
	out := make([]SettlementForBalance, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		out = append(out, SettlementForBalance{
			ID:         r.ID,
			FromUserID: r.FromUserID,
			ToUserID:   r.ToUserID,
			Amount:     r.Amount,
		})
	}
	return out
}

// CounterpartyBalance is the signed balance between the current user and one counterparty.
// Positive means the counterparty owes the current user.
type CounterpartyBalance struct {
	CounterpartyID string
	Balance        money.Amount
	Status         Status
}

// AggregateBalance is a user's position across every counterparty.
type AggregateBalance struct {
	UserID string

	// TotalOwed is what others owe the user, net of settlements received.
	TotalOwed money.Amount

	// TotalOwing is what the user owes others, net of settlements paid.
	TotalOwing money.Amount

	// NetBalance is TotalOwed - TotalOwing.
	NetBalance money.Amount

	// PerCounterparty lists non-zero balances, largest amount owed to the user first.
	PerCounterparty []CounterpartyBalance
}

// accumulator gathers signed balances per counterparty for one computation.
type accumulator map[string]money.Amount

func (a accumulator) add(counterpartyID string, amount money.Amount) {
	a[counterpartyID] += amount
}

// entries returns the non-zero balances sorted by balance descending, then by ID.
func (a accumulator) entries() []CounterpartyBalance {
	out := make([]CounterpartyBalance, 0, len(a))
	for id, b := range a {
		if b == 0 {
			continue
		}
		out = append(out, CounterpartyBalance{CounterpartyID: id, Balance: b, Status: Classify(b)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Balance != out[j].Balance {
			return out[i].Balance > out[j].Balance
		}
		return out[i].CounterpartyID < out[j].CounterpartyID
	})
	return out
}

// CalculateAggregate computes userID's position from active expenses and settlements.
//
// Algorithm:
//   - As payer: others owe total minus the payer's own share
//   - As a non-payer participant: the user owes their share to the payer
//   - Settlement from the user: reduces what the user owes
//   - Settlement to the user: reduces what the user is owed
//
// Records that do not involve userID contribute nothing.
func CalculateAggregate(userID string, expenses []ExpenseForBalance, settlements []SettlementForBalance) AggregateBalance {
	result := AggregateBalance{UserID: userID}
	perCounterparty := make(accumulator)

	for _, e := range expenses {
		if e.PayerID == userID {
			own, _ := e.shareOf(userID)
			result.TotalOwed += e.Total - own
			for _, s := range e.Shares {
				if s.UserID != userID {
					perCounterparty.add(s.UserID, s.Amount)
				}
			}
			continue
		}
		if share, ok := e.shareOf(userID); ok {
			result.TotalOwing += share
			perCounterparty.add(e.PayerID, -share)
		}
	}

	for _, s := range settlements {
		if s.FromUserID == s.ToUserID {
			continue
		}
		switch userID {
		case s.FromUserID:
			result.TotalOwing -= s.Amount
			perCounterparty.add(s.ToUserID, s.Amount)
		case s.ToUserID:
			result.TotalOwed -= s.Amount
			perCounterparty.add(s.FromUserID, -s.Amount)
		}
	}

	result.NetBalance = result.TotalOwed - result.TotalOwing
	result.PerCounterparty = perCounterparty.entries()
	return result
}

// ExpenseContribution is one expense's effect on a pairwise balance.
type ExpenseContribution struct {
	ExpenseID string
	Title     string
	PayerID   string
	Total     money.Amount
	Amount    money.Amount // signed, from the current user's point of view
}

// SettlementContribution is one settlement's effect on a pairwise balance.
type SettlementContribution struct {
	SettlementID string
	FromUserID   string
	ToUserID     string
	Amount       money.Amount // signed, from the current user's point of view
}

// PairwiseBalance is the direct debt between two users.
// Positive Balance means OtherID owes UserID.
type PairwiseBalance struct {
	UserID                  string
	OtherID                 string
	Balance                 money.Amount
	Status                  Status
	ContributingExpenses    []ExpenseContribution
	ContributingSettlements []SettlementContribution
}

// CalculatePairwise computes the direct balance between userID and otherID.
//
// Only expenses where one of the two paid and the other participates count.
// Two co-participants of a third party's expense owe each other nothing directly,
// even though that expense still shows in each user's aggregate.
func CalculatePairwise(userID, otherID string, expenses []ExpenseForBalance, settlements []SettlementForBalance) PairwiseBalance {
	result := PairwiseBalance{
		UserID:                  userID,
		OtherID:                 otherID,
		ContributingExpenses:    []ExpenseContribution{},
		ContributingSettlements: []SettlementContribution{},
	}
	if userID == otherID {
		result.Status = StatusSettled
		return result
	}

	for _, e := range expenses {
		var contribution money.Amount
		switch e.PayerID {
		case userID:
			share, ok := e.shareOf(otherID)
			if !ok {
				continue
			}
			contribution = share
		case otherID:
			share, ok := e.shareOf(userID)
			if !ok {
				continue
			}
			contribution = -share
		default:
			continue
		}
		result.Balance += contribution
		result.ContributingExpenses = append(result.ContributingExpenses, ExpenseContribution{
			ExpenseID: e.ID,
			Title:     e.Title,
			PayerID:   e.PayerID,
			Total:     e.Total,
			Amount:    contribution,
		})
	}

	for _, s := range settlements {
		var contribution money.Amount
		switch {
		case s.FromUserID == userID && s.ToUserID == otherID:
			contribution = s.Amount
		case s.FromUserID == otherID && s.ToUserID == userID:
			contribution = -s.Amount
		default:
			continue
		}
		result.Balance += contribution
		result.ContributingSettlements = append(result.ContributingSettlements, SettlementContribution{
			SettlementID: s.ID,
			FromUserID:   s.FromUserID,
			ToUserID:     s.ToUserID,
			Amount:       contribution,
		})
	}

	result.Status = Classify(result.Balance)
	return result
}
