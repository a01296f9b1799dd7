package models

import "github.com/mmynk/splitledger/internal/money"

// SplitMethod records how participant shares were derived.
// It is kept for display and edit re-derivation only; the ledger never uses it.
type SplitMethod string

const (
	SplitEqual   SplitMethod = "equal"
	SplitUnequal SplitMethod = "unequal"
	SplitPercent SplitMethod = "percent"
)

// Participant is one user's allocated share of an expense.
type Participant struct {
	UserID string
	Share  money.Amount
}

// Lifecycle is the soft-delete state of an expense: either Active or Deleted.
type Lifecycle interface {
	isLifecycle()
}

// Active marks an expense that counts toward balances.
type Active struct{}

// Deleted marks an expense excluded from every balance but kept for audit and restore.
type Deleted struct {
	By     string
	At     int64
	Reason string
}

func (Active) isLifecycle()  {}
func (Deleted) isLifecycle() {}

// Expense represents an amount fronted by a payer and shared among participants.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// Title is the human-readable description ("Dinner", "Rent").
	Title string

	// Amount is the total fronted by the payer, in minor units.
	Amount money.Amount

	// PayerID is the user who paid. It cannot change after creation.
	PayerID string

	// Participants hold each user's share. Order is irrelevant; a user appears at most once.
	Participants []Participant

	// SplitMethod is how the shares were derived.
	SplitMethod SplitMethod

	// State is Active or Deleted. A nil State is treated as Active.
	State Lifecycle

	// Version increments on every mutation and guards concurrent edits.
	Version int64

	// CreatedBy is the user who recorded the expense, not necessarily the payer.
	CreatedBy string

	CreatedAt int64
	UpdatedAt int64
}

// IsDeleted reports whether the expense is soft-deleted.
func (e *Expense) IsDeleted() bool {
	_, ok := e.State.(Deleted)
	return ok
}

// Deletion returns the deletion details if the expense is soft-deleted.
func (e *Expense) Deletion() (Deleted, bool) {
	d, ok := e.State.(Deleted)
	return d, ok
}

// ShareOf returns the share allocated to userID and whether the user participates.
func (e *Expense) ShareOf(userID string) (money.Amount, bool) {
	for _, p := range e.Participants {
		if p.UserID == userID {
			return p.Share, true
		}
	}
	return 0, false
}

// ParticipantIDs returns the participant user IDs in stored order.
func (e *Expense) ParticipantIDs() []string {
	ids := make([]string, len(e.Participants))
	for i, p := range e.Participants {
		ids[i] = p.UserID
	}
	return ids
}

// Involves reports whether userID is the payer or a participant.
func (e *Expense) Involves(userID string) bool {
	if e.PayerID == userID {
		return true
	}
	_, ok := e.ShareOf(userID)
	return ok
}

// CanModify reports whether userID may edit, delete or restore the expense:
// the creator, the payer, or any participant.
func CanModify(userID string, e *Expense) bool {
	if userID == "" || e == nil {
		return false
	}
	return e.CreatedBy == userID || e.Involves(userID)
}
