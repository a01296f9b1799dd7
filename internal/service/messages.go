package service

import (
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/money"
)

// Amounts on the wire are integers in minor units. Fields named *_display are
// formatted for humans in the configured currency and are never parsed back.

// User is the public view of a user.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,max=64"`
	Password    string `json:"password" validate:"required"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// ParticipantInput is one participant in a create or edit request.
// Share is read for unequal splits and Percent (a decimal string) for percent splits.
type ParticipantInput struct {
	UserID  string       `json:"user_id" validate:"required"`
	Share   money.Amount `json:"share,omitempty"`
	Percent string       `json:"percent,omitempty" validate:"omitempty,numeric"`
}

type Participant struct {
	UserID       string       `json:"user_id"`
	Share        money.Amount `json:"share"`
	ShareDisplay string       `json:"share_display"`
}

type Deletion struct {
	DeletedBy string `json:"deleted_by"`
	DeletedAt int64  `json:"deleted_at"`
	Reason    string `json:"reason,omitempty"`
}

type Expense struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Amount        money.Amount  `json:"amount"`
	AmountDisplay string        `json:"amount_display"`
	PayerID       string        `json:"payer_id"`
	Participants  []Participant `json:"participants"`
	SplitMethod   string        `json:"split_method"`
	Version       int64         `json:"version"`
	Deleted       *Deletion     `json:"deleted,omitempty"`
	CreatedBy     string        `json:"created_by"`
	CreatedAt     int64         `json:"created_at"`
	UpdatedAt     int64         `json:"updated_at"`
}

type CreateExpenseRequest struct {
	Title  string       `json:"title" validate:"max=200"`
	Amount money.Amount `json:"amount" validate:"gte=0"`

	// PayerID defaults to the caller.
	PayerID      string             `json:"payer_id"`
	SplitMethod  string             `json:"split_method" validate:"required,oneof=equal unequal percent"`
	Participants []ParticipantInput `json:"participants" validate:"required,min=1,dive"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type GetExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type ListExpensesRequest struct {
	IncludeDeleted bool `json:"include_deleted"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

// UpdateExpenseRequest replaces title, amount and participants. The payer cannot change.
type UpdateExpenseRequest struct {
	ExpenseID    string             `json:"expense_id" validate:"required"`
	Version      int64              `json:"version" validate:"required,min=1"`
	Title        string             `json:"title" validate:"max=200"`
	Amount       money.Amount       `json:"amount" validate:"gte=0"`
	SplitMethod  string             `json:"split_method" validate:"required,oneof=equal unequal percent"`
	Participants []ParticipantInput `json:"participants" validate:"required,min=1,dive"`
}

type UpdateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
	Version   int64  `json:"version" validate:"required,min=1"`
	Reason    string `json:"reason" validate:"max=500"`
}

type DeleteExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type RestoreExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
	Version   int64  `json:"version" validate:"required,min=1"`
}

type RestoreExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type Settlement struct {
	ID            string       `json:"id"`
	FromUserID    string       `json:"from_user_id"`
	ToUserID      string       `json:"to_user_id"`
	Amount        money.Amount `json:"amount"`
	AmountDisplay string       `json:"amount_display"`
	Note          string       `json:"note,omitempty"`
	CreatedBy     string       `json:"created_by"`
	CreatedAt     int64        `json:"created_at"`
}

type CreateSettlementRequest struct {
	// FromUserID defaults to the caller.
	FromUserID string       `json:"from_user_id"`
	ToUserID   string       `json:"to_user_id" validate:"required"`
	Amount     money.Amount `json:"amount"`
	Note       string       `json:"note" validate:"max=500"`
}

type CreateSettlementResponse struct {
	Settlement Settlement `json:"settlement"`
}

type GetSettlementRequest struct {
	SettlementID string `json:"settlement_id" validate:"required"`
}

type GetSettlementResponse struct {
	Settlement Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	// WithUserID narrows the list to settlements with one counterparty.
	WithUserID string `json:"with_user_id"`
}

type ListSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type CounterpartyBalance struct {
	CounterpartyID string            `json:"counterparty_id"`
	DisplayName    string            `json:"display_name"`
	IsFriend       bool              `json:"is_friend"`
	Balance        money.Amount      `json:"balance"`
	BalanceDisplay string            `json:"balance_display"`
	Status         calculator.Status `json:"status"`
}

type GetAggregateBalanceRequest struct{}

type GetAggregateBalanceResponse struct {
	UserID          string                `json:"user_id"`
	TotalOwed       money.Amount          `json:"total_owed"`
	TotalOwing      money.Amount          `json:"total_owing"`
	NetBalance      money.Amount          `json:"net_balance"`
	NetDisplay      string                `json:"net_display"`
	PerCounterparty []CounterpartyBalance `json:"per_counterparty"`
}

type GetPairwiseBalanceRequest struct {
	OtherUserID string `json:"other_user_id" validate:"required"`
}

type ExpenseContribution struct {
	ExpenseID string       `json:"expense_id"`
	Title     string       `json:"title"`
	PayerID   string       `json:"payer_id"`
	Total     money.Amount `json:"total"`
	Amount    money.Amount `json:"amount"`
}

type SettlementContribution struct {
	SettlementID string       `json:"settlement_id"`
	FromUserID   string       `json:"from_user_id"`
	ToUserID     string       `json:"to_user_id"`
	Amount       money.Amount `json:"amount"`
}

type GetPairwiseBalanceResponse struct {
	UserID                  string                   `json:"user_id"`
	OtherUserID             string                   `json:"other_user_id"`
	IsFriend                bool                     `json:"is_friend"`
	Balance                 money.Amount             `json:"balance"`
	BalanceDisplay          string                   `json:"balance_display"`
	Status                  calculator.Status        `json:"status"`
	ContributingExpenses    []ExpenseContribution    `json:"contributing_expenses"`
	ContributingSettlements []SettlementContribution `json:"contributing_settlements"`
}

type ShareInput struct {
	UserID string       `json:"user_id"`
	Share  money.Amount `json:"share"`
}

// ValidateExpenseInputRequest is a dry run of expense validation with explicit shares.
type ValidateExpenseInputRequest struct {
	Amount       money.Amount `json:"amount"`
	PayerID      string       `json:"payer_id"`
	Participants []ShareInput `json:"participants"`
}

type Violation struct {
	Code       string       `json:"code"`
	Field      string       `json:"field"`
	Message    string       `json:"message"`
	UserIDs    []string     `json:"user_ids,omitempty"`
	Sum        money.Amount `json:"sum,omitempty"`
	Difference money.Amount `json:"difference,omitempty"`
}

type ValidateExpenseInputResponse struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}

type Friend struct {
	User           User              `json:"user"`
	Balance        money.Amount      `json:"balance"`
	BalanceDisplay string            `json:"balance_display"`
	Status         calculator.Status `json:"status"`
}

type AddFriendRequest struct {
	// Exactly one of FriendID and Email identifies the friend.
	FriendID string `json:"friend_id" validate:"required_without=Email,excluded_with=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
}

type AddFriendResponse struct {
	Friend Friend `json:"friend"`
}

type RemoveFriendRequest struct {
	FriendID string `json:"friend_id" validate:"required"`
}

type RemoveFriendResponse struct{}

type ListFriendsRequest struct{}

type ListFriendsResponse struct {
	Friends []Friend `json:"friends"`
}

type Activity struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	ActorID   string `json:"actor_id"`
	Summary   string `json:"summary"`
	Payload   any    `json:"payload"`
	CreatedAt int64  `json:"created_at"`
}

type ListActivityRequest struct {
	Limit int `json:"limit" validate:"gte=0,lte=200"`
}

type ListActivityResponse struct {
	Activities []Activity `json:"activities"`
}
