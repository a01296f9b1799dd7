// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// UserDirectory resolves and registers users.
// Lookups return nil and no error when the user does not exist.
type UserDirectory interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs returns a map of user ID to User. Unknown IDs are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// ExpenseStore holds expense records. Expenses are never hard-deleted.
type ExpenseStore interface {
	// CreateExpense persists a new expense. ID, timestamps and Version are assigned by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID, including soft-deleted ones.
	// Returns models.ErrNotFound if it does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces title, amount, participants and split method.
	// It fails with models.ErrVersionConflict unless expectedVersion is current.
	UpdateExpense(ctx context.Context, expense *models.Expense, expectedVersion int64) error

	// SoftDeleteExpense marks an expense Deleted, keeping its payload.
	SoftDeleteExpense(ctx context.Context, expenseID string, deletion models.Deleted, expectedVersion int64) error

	// RestoreExpense clears the deletion state.
	RestoreExpense(ctx context.Context, expenseID string, expectedVersion int64) error

	// ListExpensesInvolving lists expenses where the user pays or participates, newest first.
	ListExpensesInvolving(ctx context.Context, userID string, includeDeleted bool) ([]*models.Expense, error)

	// FindNonDeletedInvolving is the ledger's aggregate read shape.
	FindNonDeletedInvolving(ctx context.Context, userID string) ([]*models.Expense, error)

	// FindNonDeletedBetween returns active expenses where one user pays and the other participates.
	FindNonDeletedBetween(ctx context.Context, userID, otherID string) ([]*models.Expense, error)
}

// SettlementStore holds settlement records. It is append-only.
type SettlementStore interface {
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement returns models.ErrNotFound if the settlement does not exist.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// FindInvolving lists settlements the user paid or received, newest first.
	FindInvolving(ctx context.Context, userID string) ([]*models.Settlement, error)

	// FindBetween lists settlements between the two users in either direction.
	FindBetween(ctx context.Context, userID, otherID string) ([]*models.Settlement, error)
}

// FriendDirectory stores the symmetric friendship relation.
type FriendDirectory interface {
	// AddFriend fails with models.ErrAlreadyFriends if the pair exists.
	AddFriend(ctx context.Context, friendship *models.Friendship) error
	RemoveFriend(ctx context.Context, userID, friendID string) error
	AreFriends(ctx context.Context, userID, friendID string) (bool, error)
	ListFriends(ctx context.Context, userID string) ([]string, error)
}

// ActivityFeed persists delivered activity events.
type ActivityFeed interface {
	RecordActivity(ctx context.Context, activity *models.Activity) error

	// ListActivity returns activities addressed to the user, newest first.
	ListActivity(ctx context.Context, userID string, limit int) ([]*models.Activity, error)
}

// Store is every collaborator the services need, backed by one database.
type Store interface {
	UserDirectory
	ExpenseStore
	SettlementStore
	FriendDirectory
	ActivityFeed

	// Close releases any resources held by the store.
	Close() error
}
