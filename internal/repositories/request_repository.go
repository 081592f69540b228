package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"zakazBack/internal/models"
)

type RequestRepository struct {
	DB *sql.DB
}

// CreateRequest inserts the request with status=pending and links it into the
// owning user's requestsIds, creating the user row if it does not exist yet.
func (r *RequestRepository) CreateRequest(ctx context.Context, req models.Request) (models.Request, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Request{}, err
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO requests (description, category, media_url, media_type, created_at, user_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, req.Description, req.Category, req.MediaURL, req.MediaType, now, req.UserID, models.StatusPending)
	if err != nil {
		return models.Request{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Request{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, role, created_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE id = id
	`, req.UserID, models.RoleClient, now)
	if err != nil {
		return models.Request{}, err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO user_requests (user_id, request_id) VALUES (?, ?)`, req.UserID, id)
	if err != nil {
		return models.Request{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Request{}, err
	}

	req.ID = id
	req.CreatedAt = now
	req.Status = models.StatusPending
	req.Proposals = []models.Proposal{}
	return req, nil
}

func (r *RequestRepository) GetRequestByID(ctx context.Context, id int64) (models.Request, error) {
	var req models.Request
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, description, category, media_url, media_type, created_at, user_id, status, provider_id
		FROM requests WHERE id = ?
	`, id).Scan(&req.ID, &req.Description, &req.Category, &req.MediaURL, &req.MediaType,
		&req.CreatedAt, &req.UserID, &req.Status, &req.ProviderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Request{}, models.ErrRequestNotFound
		}
		return models.Request{}, err
	}
	reqs := []models.Request{req}
	if err := r.attachProposals(ctx, reqs); err != nil {
		return models.Request{}, err
	}
	return reqs[0], nil
}

// ListByOwner returns every request the client owns. Ordering is whatever the
// store yields; clients do not rely on it.
func (r *RequestRepository) ListByOwner(ctx context.Context, userID int64) ([]models.Request, error) {
	return r.list(ctx, `
		SELECT id, description, category, media_url, media_type, created_at, user_id, status, provider_id
		FROM requests WHERE user_id = ?
	`, userID)
}

// ListByStatus serves the provider's two feeds: all pending requests
// marketplace-wide (providerID = 0), and the provider's own requests in a
// given status (providerID > 0).
func (r *RequestRepository) ListByStatus(ctx context.Context, status string, providerID int64) ([]models.Request, error) {
	if providerID > 0 {
		return r.list(ctx, `
			SELECT id, description, category, media_url, media_type, created_at, user_id, status, provider_id
			FROM requests WHERE status = ? AND provider_id = ?
		`, status, providerID)
	}
	return r.list(ctx, `
		SELECT id, description, category, media_url, media_type, created_at, user_id, status, provider_id
		FROM requests WHERE status = ?
	`, status)
}

// AdvanceStatus overwrites the request status unconditionally; it does not
// check the current status, so out-of-order writes land silently. The
// forward-only chain lives in internal/lifecycle and is upheld by callers.
func (r *RequestRepository) AdvanceStatus(ctx context.Context, id int64, status string, providerID *int64) error {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM requests WHERE id = ?)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return models.ErrRequestNotFound
	}

	if providerID != nil {
		_, err := r.DB.ExecContext(ctx, `UPDATE requests SET status = ?, provider_id = ? WHERE id = ?`, status, *providerID, id)
		return err
	}
	_, err := r.DB.ExecContext(ctx, `UPDATE requests SET status = ? WHERE id = ?`, status, id)
	return err
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Request, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []models.Request{}
	for rows.Next() {
		var req models.Request
		if err := rows.Scan(&req.ID, &req.Description, &req.Category, &req.MediaURL, &req.MediaType,
			&req.CreatedAt, &req.UserID, &req.Status, &req.ProviderID); err != nil {
			return nil, err
		}
		req.Proposals = []models.Proposal{}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachProposals(ctx, requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// attachProposals loads the proposal sequences for a page of requests in one
// query, insertion order preserved.
func (r *RequestRepository) attachProposals(ctx context.Context, requests []models.Request) error {
	if len(requests) == 0 {
		return nil
	}
	placeholders := make([]string, len(requests))
	args := make([]interface{}, len(requests))
	index := make(map[int64]int, len(requests))
	for i := range requests {
		placeholders[i] = "?"
		args[i] = requests[i].ID
		index[requests[i].ID] = i
	}

	query := `
		SELECT id, request_id, price, deadline, comment, provider_id, created_at
		FROM proposals WHERE request_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY id
	`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Proposal
		if err := rows.Scan(&p.ID, &p.RequestID, &p.Price, &p.Deadline, &p.Comment, &p.ProviderID, &p.CreatedAt); err != nil {
			return err
		}
		if i, ok := index[p.RequestID]; ok {
			requests[i].Proposals = append(requests[i].Proposals, p)
		}
	}
	return rows.Err()
}
