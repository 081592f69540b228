package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"zakazBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

// EnsureUser creates the user row on first write; documents are never created
// through an explicit signup flow.
func (r *UserRepository) EnsureUser(ctx context.Context, id int64, role string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, role, created_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE role = VALUES(role)
	`, id, role, time.Now())
	return err
}

// GetUserByID assembles the full user document: owned request ids for
// clients, the ratings sequence and aggregates for providers.
func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, role, completed_tasks, average_rating, COALESCE(fcm_token, ''), created_at, updated_at
		FROM users WHERE id = ?
	`, id).Scan(&user.ID, &user.Role, &user.CompletedTasks, &user.AverageRating,
		&user.FCMToken, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.ErrUserNotFound
		}
		return models.User{}, err
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT request_id FROM user_requests WHERE user_id = ? ORDER BY request_id`, id)
	if err != nil {
		return models.User{}, err
	}
	for rows.Next() {
		var rid int64
		if err := rows.Scan(&rid); err != nil {
			rows.Close()
			return models.User{}, err
		}
		user.RequestsIDs = append(user.RequestsIDs, rid)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return models.User{}, err
	}
	rows.Close()

	rows, err = r.DB.QueryContext(ctx, `SELECT id, rating FROM ratings WHERE provider_id = ? ORDER BY id`, id)
	if err != nil {
		return models.User{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var rid int64
		var value int
		if err := rows.Scan(&rid, &value); err != nil {
			return models.User{}, err
		}
		user.RatesIDs = append(user.RatesIDs, rid)
		user.Ratings = append(user.Ratings, value)
	}
	return user, rows.Err()
}

// GetProviderStats reads the stored aggregates. A provider that was never
// rated has zero stats, not an error.
func (r *UserRepository) GetProviderStats(ctx context.Context, providerID int64) (models.ProviderStats, error) {
	stats := models.ProviderStats{ProviderID: providerID}
	err := r.DB.QueryRowContext(ctx, `
		SELECT completed_tasks, average_rating FROM users WHERE id = ?
	`, providerID).Scan(&stats.CompletedTasks, &stats.AverageRating)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.ProviderStats{}, err
	}
	return stats, nil
}

// SetSession stores the refresh session on the user row, creating the row
// lazily: the role picker is the first thing a user touches.
func (r *UserRepository) SetSession(ctx context.Context, id int64, session models.Session) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, role, refresh_token, expires_at, created_at) VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE role = VALUES(role), refresh_token = VALUES(refresh_token), expires_at = VALUES(expires_at)
	`, id, session.Role, session.RefreshToken, session.ExpiresAt, time.Now())
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	var session models.Session
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, role, refresh_token, expires_at FROM users WHERE refresh_token = ?
	`, refreshToken).Scan(&session.UserID, &session.Role, &session.RefreshToken, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, models.ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return session, nil
}

func (r *UserRepository) SetFCMToken(ctx context.Context, id int64, token string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE users SET fcm_token = ? WHERE id = ?`, token, id)
	return err
}

func (r *UserRepository) GetFCMToken(ctx context.Context, id int64) (string, error) {
	var token sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT fcm_token FROM users WHERE id = ?`, id).Scan(&token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", models.ErrUserNotFound
		}
		return "", err
	}
	return token.String, nil
}
