package models

import (
	"encoding/json"
	"fmt"

	"github.com/mmynk/splitledger/internal/money"
)

// ActivityKind names a ledger-affecting event.
type ActivityKind string

const (
	ActivityExpenseCreated    ActivityKind = "expense_created"
	ActivityExpenseUpdated    ActivityKind = "expense_updated"
	ActivityExpenseDeleted    ActivityKind = "expense_deleted"
	ActivityExpenseRestored   ActivityKind = "expense_restored"
	ActivitySettlementCreated ActivityKind = "settlement_created"
	ActivityFriendAdded       ActivityKind = "friend_added"
)

// ActivityPayload is the kind-specific body of an activity.
// Each kind has exactly one payload type.
type ActivityPayload interface {
	Kind() ActivityKind
}

type ExpenseCreated struct {
	ExpenseID string       `json:"expense_id"`
	Title     string       `json:"title"`
	Amount    money.Amount `json:"amount"`
	PayerID   string       `json:"payer_id"`
}

type ExpenseUpdated struct {
	ExpenseID      string       `json:"expense_id"`
	Title          string       `json:"title"`
	PreviousAmount money.Amount `json:"previous_amount"`
	Amount         money.Amount `json:"amount"`
}

type ExpenseDeleted struct {
	ExpenseID string `json:"expense_id"`
	Title     string `json:"title"`
	Reason    string `json:"reason,omitempty"`
}

type ExpenseRestored struct {
	ExpenseID string `json:"expense_id"`
	Title     string `json:"title"`
}

type SettlementCreated struct {
	SettlementID string       `json:"settlement_id"`
	FromUserID   string       `json:"from_user_id"`
	ToUserID     string       `json:"to_user_id"`
	Amount       money.Amount `json:"amount"`
	Note         string       `json:"note,omitempty"`
}

type FriendAdded struct {
	FriendID string `json:"friend_id"`
}

func (ExpenseCreated) Kind() ActivityKind    { return ActivityExpenseCreated }
func (ExpenseUpdated) Kind() ActivityKind    { return ActivityExpenseUpdated }
func (ExpenseDeleted) Kind() ActivityKind    { return ActivityExpenseDeleted }
func (ExpenseRestored) Kind() ActivityKind   { return ActivityExpenseRestored }
func (SettlementCreated) Kind() ActivityKind { return ActivitySettlementCreated }
func (FriendAdded) Kind() ActivityKind       { return ActivityFriendAdded }

// Activity is a ledger-affecting event addressed to a set of users.
type Activity struct {
	ID        string
	ActorID   string
	TargetIDs []string
	Payload   ActivityPayload
	CreatedAt int64
}

// Kind returns the kind of the activity's payload.
func (a *Activity) Kind() ActivityKind {
	if a.Payload == nil {
		return ""
	}
	return a.Payload.Kind()
}

// EncodeActivityPayload serializes a payload for storage.
func EncodeActivityPayload(p ActivityPayload) ([]byte, error) {
	return json.Marshal(p)
}

// DecodeActivityPayload restores the payload of the given kind.
func DecodeActivityPayload(kind ActivityKind, data []byte) (ActivityPayload, error) {
	var p ActivityPayload
	switch kind {
	case ActivityExpenseCreated:
		p = decodeInto[ExpenseCreated](data)
	case ActivityExpenseUpdated:
		p = decodeInto[ExpenseUpdated](data)
	case ActivityExpenseDeleted:
		p = decodeInto[ExpenseDeleted](data)
	case ActivityExpenseRestored:
		p = decodeInto[ExpenseRestored](data)
	case ActivitySettlementCreated:
		p = decodeInto[SettlementCreated](data)
	case ActivityFriendAdded:
		p = decodeInto[FriendAdded](data)
	default:
		return nil, fmt.Errorf("unknown activity kind %q", kind)
	}
	if p == nil {
		return nil, fmt.Errorf("malformed %s payload", kind)
	}
	return p, nil
}

func decodeInto[T ActivityPayload](data []byte) ActivityPayload {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}
