package models

import "github.com/mmynk/splitledger/internal/money"

// Settlement represents a direct payment between two users to clear debts.
// Settlements are immutable once recorded.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount in minor units, at least 1.
	Amount money.Amount

	// Note is an optional description for the settlement.
	Note string

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}

// Involves reports whether userID paid or received the settlement.
func (s *Settlement) Involves(userID string) bool {
	return s.FromUserID == userID || s.ToUserID == userID
}
