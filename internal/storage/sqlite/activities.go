package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

// RecordActivity stores an activity and the users it is addressed to.
func (s *SQLiteStore) RecordActivity(ctx context.Context, activity *models.Activity) error {
	if activity.Payload == nil {
		return fmt.Errorf("activity has no payload")
	}
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt == 0 {
		activity.CreatedAt = time.Now().Unix()
	}

	payload, err := models.EncodeActivityPayload(activity.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode activity payload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO activities (id, kind, actor_id, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		activity.ID, string(activity.Kind()), activity.ActorID, string(payload), activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	for _, target := range activity.TargetIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO activity_targets (activity_id, user_id) VALUES (?, ?)`,
			activity.ID, target,
		)
		if err != nil {
			return fmt.Errorf("failed to insert activity target: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListActivity returns the most recent activities addressed to the user, newest first.
// TargetIDs holds only the requesting user.
func (s *SQLiteStore) ListActivity(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.kind, a.actor_id, a.payload, a.created_at
		 FROM activities a JOIN activity_targets t ON t.activity_id = a.id
		 WHERE t.user_id = ?
		 ORDER BY a.created_at DESC, a.rowid DESC
		 LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		var (
			a       models.Activity
			kind    string
			payload string
		)
		if err := rows.Scan(&a.ID, &kind, &a.ActorID, &payload, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		a.Payload, err = models.DecodeActivityPayload(models.ActivityKind(kind), []byte(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to decode activity %s: %w", a.ID, err)
		}
		a.TargetIDs = []string{userID}
		activities = append(activities, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity: %w", err)
	}
	return activities, nil
}
