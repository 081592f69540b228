package repositories

import (
	"context"
	"database/sql"
	"time"

	"zakazBack/internal/lifecycle"
	"zakazBack/internal/models"
)

type RatingRepository struct {
	DB *sql.DB
}

// SubmitRating appends the rating, recomputes the provider's aggregates from
// the full ratings sequence, and marks the request completed — all inside one
// transaction, so a crash or a concurrent rater cannot leave the aggregates
// out of step with the ratings or the request half-finished.
func (r *RatingRepository) SubmitRating(ctx context.Context, rating models.Rating) (models.Rating, models.ProviderStats, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Rating{}, models.ProviderStats{}, err
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, role, created_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE id = id
	`, rating.ProviderID, models.RoleProvider, now)
	if err != nil {
		return models.Rating{}, models.ProviderStats{}, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO ratings (request_id, provider_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rating.RequestID, rating.ProviderID, rating.Rating, rating.Comment, now)
	if err != nil {
		return models.Rating{}, models.ProviderStats{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Rating{}, models.ProviderStats{}, err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT rating FROM ratings WHERE provider_id = ? ORDER BY id FOR UPDATE
	`, rating.ProviderID)
	if err != nil {
		return models.Rating{}, models.ProviderStats{}, err
	}
	values := []int{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return models.Rating{}, models.ProviderStats{}, err
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return models.Rating{}, models.ProviderStats{}, err
	}
	rows.Close()

	stats := models.ProviderStats{
		ProviderID:     rating.ProviderID,
		CompletedTasks: len(values),
		AverageRating:  models.MeanRating(values),
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE users SET completed_tasks = ?, average_rating = ?, updated_at = ? WHERE id = ?
	`, stats.CompletedTasks, stats.AverageRating, now, rating.ProviderID)
	if err != nil {
		return models.Rating{}, models.ProviderStats{}, err
	}

	// Guard the completion write when the request sits on the forward
	// chain: the status must still be what we read, so a concurrent writer
	// cannot be silently undone. Off-chain states keep the plain overwrite
	// that status updates use everywhere else.
	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM requests WHERE id = ? FOR UPDATE`, rating.RequestID).Scan(&current)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Rating{}, models.ProviderStats{}, models.ErrRequestNotFound
		}
		return models.Rating{}, models.ProviderStats{}, err
	}
	if lifecycle.CanAdvance(current, models.StatusCompleted) {
		err = lifecycle.Apply(ctx, tx, rating.RequestID, current, models.StatusCompleted)
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE requests SET status = ? WHERE id = ?`, models.StatusCompleted, rating.RequestID)
	}
	if err != nil {
		return models.Rating{}, models.ProviderStats{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Rating{}, models.ProviderStats{}, err
	}

	rating.ID = id
	rating.CreatedAt = now
	return rating, stats, nil
}

func (r *RatingRepository) ListByProvider(ctx context.Context, providerID int64) ([]models.Rating, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, request_id, provider_id, rating, comment, created_at
		FROM ratings WHERE provider_id = ? ORDER BY id
	`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := []models.Rating{}
	for rows.Next() {
		var rt models.Rating
		if err := rows.Scan(&rt.ID, &rt.RequestID, &rt.ProviderID, &rt.Rating, &rt.Comment, &rt.CreatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}
