package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"service-shop-delivery/internal/domain"
)

// NotificationRepo persists user notifications.
type NotificationRepo struct{ db *pgxpool.Pool }

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(db *pgxpool.Pool) *NotificationRepo { return &NotificationRepo{db: db} }

// Insert - stores a notification record. A record whose ID is already stored
// is left untouched and its created_at is returned.
func (r *NotificationRepo) Insert(ctx context.Context, n *domain.NotificationRecord) error {
	err := r.db.QueryRow(ctx, `
        WITH ins AS (
            INSERT INTO notifications (id, title, body, target_user_id, topic, page_id, page_name)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            ON CONFLICT (id) DO NOTHING
            RETURNING created_at
        )
        SELECT created_at FROM ins
        UNION ALL
        SELECT created_at FROM notifications WHERE id = $1
        LIMIT 1
    `, n.ID, n.Title, n.Body, n.TargetUserID, string(n.Topic), n.PageID, n.PageName).Scan(&n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListForUser returns the newest records addressed to userID.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID string, limit int) ([]domain.NotificationRecord, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, title, body, target_user_id, topic, page_id, page_name, created_at
        FROM notifications
        WHERE target_user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]domain.NotificationRecord, 0, limit)
	for rows.Next() {
		var (
			n     domain.NotificationRecord
			topic string
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Body, &n.TargetUserID, &topic, &n.PageID, &n.PageName, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Topic = domain.Topic(topic)
		out = append(out, n)
	}
	return out, rows.Err()
}
