package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// AddFriend stores the friendship once for the unordered pair.
func (s *SQLiteStore) AddFriend(ctx context.Context, friendship *models.Friendship) error {
	one, two := models.FriendPair(friendship.UserOne, friendship.UserTwo)
	friendship.UserOne, friendship.UserTwo = one, two
	if friendship.CreatedAt == 0 {
		friendship.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO friendships (user_one_id, user_two_id, action_user_id, created_at) VALUES (?, ?, ?, ?)`,
		one, two, friendship.ActionUser, friendship.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("friendship %s/%s: %w", one, two, models.ErrAlreadyFriends)
	}
	if err != nil {
		return fmt.Errorf("failed to insert friendship: %w", err)
	}
	return nil
}

// RemoveFriend deletes the friendship between two users.
func (s *SQLiteStore) RemoveFriend(ctx context.Context, userID, friendID string) error {
	one, two := models.FriendPair(userID, friendID)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM friendships WHERE user_one_id = ? AND user_two_id = ?`, one, two,
	)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("friendship %s/%s: %w", one, two, models.ErrNotFound)
	}
	return nil
}

// AreFriends reports whether the two users are friends.
func (s *SQLiteStore) AreFriends(ctx context.Context, userID, friendID string) (bool, error) {
	one, two := models.FriendPair(userID, friendID)
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM friendships WHERE user_one_id = ? AND user_two_id = ?)`, one, two,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists, nil
}

// ListFriends returns the IDs of the user's friends, oldest friendship first.
func (s *SQLiteStore) ListFriends(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT CASE WHEN user_one_id = ? THEN user_two_id ELSE user_one_id END
		 FROM friendships WHERE user_one_id = ? OR user_two_id = ?
		 ORDER BY created_at, rowid`,
		userID, userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return friends, nil
}
