package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// SplitInput is one participant's raw split instruction.
// Share is read for unequal splits, Percent for percent splits; equal splits read neither.
type SplitInput struct {
	UserID  string
	Share   money.Amount
	Percent decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// DeriveShares turns a split method and per-participant input into concrete shares.
//
// Equal splits give every participant total/n and hand the remainder out one minor
// unit at a time to the first participants. Percent splits round each share half-up
// and settle the rounding drift on the last participant, so shares always sum to total.
// Unequal splits pass shares through untouched; the Share Validator judges them.
func DeriveShares(method models.SplitMethod, total money.Amount, inputs []SplitInput) ([]models.Participant, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}

	participants := make([]models.Participant, len(inputs))
	for i, in := range inputs {
		participants[i].UserID = in.UserID
	}

	switch method {
	case models.SplitEqual:
		n := money.Amount(len(inputs))
		base, remainder := total/n, total%n
		for i := range participants {
			participants[i].Share = base
			if money.Amount(i) < remainder {
				participants[i].Share++
			}
		}

	case models.SplitPercent:
		var pctSum decimal.Decimal
		var assigned money.Amount
		for i, in := range inputs {
			if in.Percent.IsNegative() {
				return nil, fmt.Errorf("percent for %s cannot be negative", in.UserID)
			}
			pctSum = pctSum.Add(in.Percent)
			share := money.ToMinorUnits(money.ToMajorUnits(total).Mul(in.Percent).Div(hundred))
			participants[i].Share = share
			assigned += share
		}
		if !pctSum.Equal(hundred) {
			return nil, fmt.Errorf("percentages must add up to 100, got %s", pctSum.String())
		}
		participants[len(participants)-1].Share += total - assigned

	case models.SplitUnequal:
		for i, in := range inputs {
			participants[i].Share = in.Share
		}

	default:
		return nil, fmt.Errorf("unknown split method %q", method)
	}

	return participants, nil
}
