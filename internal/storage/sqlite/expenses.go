package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

const expenseColumns = `e.id, e.title, e.amount, e.payer_id, e.split_method, e.version,
	e.created_by, e.created_at, e.updated_at, e.deleted_by, e.deleted_at, e.deleted_reason`

// involvesUser matches expenses the user pays for or participates in. Takes the user id twice.
const involvesUser = `(e.payer_id = ? OR EXISTS (
	SELECT 1 FROM expense_participants p WHERE p.expense_id = e.id AND p.user_id = ?))`

// paidByFor matches expenses paid by the first user with the second as participant.
const paidByFor = `(e.payer_id = ? AND EXISTS (
	SELECT 1 FROM expense_participants p WHERE p.expense_id = e.id AND p.user_id = ?))`

// CreateExpense persists a new expense with its participants.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = expense.CreatedAt
	expense.Version = 1
	expense.State = models.Active{}
	if expense.Title == "" {
		expense.Title = generateTitle(len(expense.Participants), expense.CreatedAt)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, title, amount, payer_id, split_method, version, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.Title, expense.Amount, expense.PayerID, string(expense.SplitMethod),
		expense.Version, expense.CreatedBy, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertParticipants(ctx, tx, expense.ID, expense.Participants); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including soft-deleted ones.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expenses, err := s.queryExpenses(ctx, `e.id = ?`, expenseID)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, fmt.Errorf("expense %s: %w", expenseID, models.ErrNotFound)
	}
	return expenses[0], nil
}

// UpdateExpense replaces the mutable fields of an active expense. The payer is never changed.
// On success expense.Version and expense.UpdatedAt reflect the stored row.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense, expectedVersion int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleted, err := checkVersion(ctx, tx, expense.ID, expectedVersion)
	if err != nil {
		return err
	}
	if deleted {
		return fmt.Errorf("expense %s: %w", expense.ID, models.ErrAlreadyDeleted)
	}

	now := time.Now().Unix()
	if err := bumpVersion(ctx, tx, expense.ID, expectedVersion,
		`title = ?, amount = ?, split_method = ?, updated_at = ?`,
		expense.Title, expense.Amount, string(expense.SplitMethod), now,
	); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_participants WHERE expense_id = ?`, expense.ID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, expense.ID, expense.Participants); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	expense.Version = expectedVersion + 1
	expense.UpdatedAt = now
	return nil
}

// SoftDeleteExpense marks an active expense deleted. The payload is kept for audit and restore.
func (s *SQLiteStore) SoftDeleteExpense(ctx context.Context, expenseID string, deletion models.Deleted, expectedVersion int64) error {
	if deletion.At == 0 {
		deletion.At = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleted, err := checkVersion(ctx, tx, expenseID, expectedVersion)
	if err != nil {
		return err
	}
	if deleted {
		return fmt.Errorf("expense %s: %w", expenseID, models.ErrAlreadyDeleted)
	}

	if err := bumpVersion(ctx, tx, expenseID, expectedVersion,
		`deleted_by = ?, deleted_at = ?, deleted_reason = ?, updated_at = ?`,
		deletion.By, deletion.At, nullString(deletion.Reason), deletion.At,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RestoreExpense clears the deletion state of a soft-deleted expense.
func (s *SQLiteStore) RestoreExpense(ctx context.Context, expenseID string, expectedVersion int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleted, err := checkVersion(ctx, tx, expenseID, expectedVersion)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("expense %s: %w", expenseID, models.ErrNotDeleted)
	}

	if err := bumpVersion(ctx, tx, expenseID, expectedVersion,
		`deleted_by = NULL, deleted_at = NULL, deleted_reason = NULL, updated_at = ?`,
		time.Now().Unix(),
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListExpensesInvolving lists expenses the user pays for or participates in, newest first.
func (s *SQLiteStore) ListExpensesInvolving(ctx context.Context, userID string, includeDeleted bool) ([]*models.Expense, error) {
	where := involvesUser
	if !includeDeleted {
		where += ` AND e.deleted_at IS NULL`
	}
	return s.queryExpenses(ctx, where, userID, userID)
}

// FindNonDeletedInvolving returns every active expense the user pays for or participates in.
func (s *SQLiteStore) FindNonDeletedInvolving(ctx context.Context, userID string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx, `e.deleted_at IS NULL AND `+involvesUser, userID, userID)
}

// FindNonDeletedBetween returns active expenses where one user paid and the other participates.
// Expenses paid by a third party are not included.
func (s *SQLiteStore) FindNonDeletedBetween(ctx context.Context, userID, otherID string) ([]*models.Expense, error) {
	return s.queryExpenses(ctx,
		`e.deleted_at IS NULL AND (`+paidByFor+` OR `+paidByFor+`)`,
		userID, otherID, otherID, userID,
	)
}

// queryExpenses loads expenses matching where, newest first, with their participants.
func (s *SQLiteStore) queryExpenses(ctx context.Context, where string, args ...any) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses e WHERE `+where+` ORDER BY e.created_at DESC, e.rowid DESC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	rows.Close()

	if len(expenses) == 0 {
		return expenses, nil
	}

	ids := make([]string, len(expenses))
	for i, e := range expenses {
		ids[i] = e.ID
	}
	partRows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, user_id, share FROM expense_participants
		 WHERE expense_id IN (`+placeholders(len(ids))+`) ORDER BY expense_id, position`,
		stringArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer partRows.Close()

	for partRows.Next() {
		var expenseID string
		var p models.Participant
		if err := partRows.Scan(&expenseID, &p.UserID, &p.Share); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Participants = append(e.Participants, p)
		}
	}
	if err := partRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return expenses, nil
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	var splitMethod string
	var deletedBy, deletedReason sql.NullString
	var deletedAt sql.NullInt64

	err := row.Scan(&e.ID, &e.Title, &e.Amount, &e.PayerID, &splitMethod, &e.Version,
		&e.CreatedBy, &e.CreatedAt, &e.UpdatedAt, &deletedBy, &deletedAt, &deletedReason)
	if err != nil {
		return nil, err
	}

	e.SplitMethod = models.SplitMethod(splitMethod)
	e.State = models.Active{}
	if deletedAt.Valid {
		e.State = models.Deleted{By: deletedBy.String, At: deletedAt.Int64, Reason: deletedReason.String}
	}
	return e, nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, expenseID string, participants []models.Participant) error {
	for i, p := range participants {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_participants (expense_id, user_id, share, position) VALUES (?, ?, ?, ?)",
			expenseID, p.UserID, p.Share, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

// checkVersion loads the current version of an expense inside tx and compares it to expected.
// It reports whether the expense is currently soft-deleted.
func checkVersion(ctx context.Context, tx *sql.Tx, expenseID string, expected int64) (bool, error) {
	var version int64
	var deletedAt sql.NullInt64
	err := tx.QueryRowContext(ctx,
		"SELECT version, deleted_at FROM expenses WHERE id = ?", expenseID,
	).Scan(&version, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("expense %s: %w", expenseID, models.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to get expense version: %w", err)
	}
	if version != expected {
		return false, fmt.Errorf("expense %s at version %d, expected %d: %w",
			expenseID, version, expected, models.ErrVersionConflict)
	}
	return deletedAt.Valid, nil
}

// bumpVersion applies set to the expense and increments its version, guarded by expected.
func bumpVersion(ctx context.Context, tx *sql.Tx, expenseID string, expected int64, set string, args ...any) error {
	args = append(args, expenseID, expected)
	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET `+set+`, version = version + 1 WHERE id = ? AND version = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, models.ErrVersionConflict)
	}
	return nil
}
