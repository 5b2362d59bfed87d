package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"service-shop-delivery/internal/domain"
)

// DeadLetterRepo keeps notifications that failed asynchronous delivery.
type DeadLetterRepo struct{ db *pgxpool.Pool }

// NewDeadLetterRepo creates a new DeadLetterRepo.
func NewDeadLetterRepo(db *pgxpool.Pool) *DeadLetterRepo { return &DeadLetterRepo{db: db} }

// Save - stores a dead letter.
func (r *DeadLetterRepo) Save(ctx context.Context, d *domain.DeadLetter) error {
	err := r.db.QueryRow(ctx, `
        INSERT INTO notification_dead_letters (id, payload, attempts, last_error)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `, d.ID, d.Payload, d.Attempts, d.LastError).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("save dead letter: %w", err)
	}
	return nil
}

// List - returns up to limit dead letters, oldest first.
func (r *DeadLetterRepo) List(ctx context.Context, limit int) ([]domain.DeadLetter, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, payload, attempts, last_error, created_at
        FROM notification_dead_letters
        ORDER BY created_at
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	defer rows.Close()

	out := make([]domain.DeadLetter, 0, limit)
	for rows.Next() {
		var d domain.DeadLetter
		if err := rows.Scan(&d.ID, &d.Payload, &d.Attempts, &d.LastError, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MarkFailed - records another failed redelivery attempt.
func (r *DeadLetterRepo) MarkFailed(ctx context.Context, id, lastErr string) error {
	_, err := r.db.Exec(ctx, `
        UPDATE notification_dead_letters
        SET attempts = attempts + 1, last_error = $2
        WHERE id = $1
    `, id, lastErr)
	if err != nil {
		return fmt.Errorf("mark dead letter %q: %w", id, err)
	}
	return nil
}

// Delete - removes a dead letter after successful redelivery.
func (r *DeadLetterRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM notification_dead_letters WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete dead letter %q: %w", id, err)
	}
	return nil
}
