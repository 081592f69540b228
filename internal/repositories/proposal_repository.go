package repositories

import (
	"context"
	"database/sql"

	"zakazBack/internal/models"
)

type ProposalRepository struct {
	DB *sql.DB
}

// Append stores a proposal in submission order. Appending is duplicate-safe
// by value equality: a byte-identical resubmission yields one stored entry.
// Returns false when the proposal was deduplicated.
func (r *ProposalRepository) Append(ctx context.Context, p models.Proposal) (bool, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM requests WHERE id = ?)`, p.RequestID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, models.ErrRequestNotFound
	}

	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO proposals (request_id, price, deadline, comment, provider_id, created_at)
		SELECT ?, ?, ?, ?, ?, ? FROM DUAL
		WHERE NOT EXISTS (
			SELECT 1 FROM proposals
			WHERE request_id = ? AND price = ? AND deadline = ? AND comment = ? AND provider_id = ? AND created_at = ?
		)
	`, p.RequestID, p.Price, p.Deadline, p.Comment, p.ProviderID, p.CreatedAt,
		p.RequestID, p.Price, p.Deadline, p.Comment, p.ProviderID, p.CreatedAt)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *ProposalRepository) ListByRequest(ctx context.Context, requestID int64) ([]models.Proposal, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, request_id, price, deadline, comment, provider_id, created_at
		FROM proposals WHERE request_id = ? ORDER BY id
	`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	proposals := []models.Proposal{}
	for rows.Next() {
		var p models.Proposal
		if err := rows.Scan(&p.ID, &p.RequestID, &p.Price, &p.Deadline, &p.Comment, &p.ProviderID, &p.CreatedAt); err != nil {
			return nil, err
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// Accept sets status=inProgress and the accepted provider in one write. The
// other proposals stay in place (clients filter them out), and no check is
// made that the accepted proposal still exists, so a stale read on the
// client's side does not fail the accept.
func (r *ProposalRepository) Accept(ctx context.Context, requestID, providerID int64) error {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM requests WHERE id = ?)`, requestID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return models.ErrRequestNotFound
	}
	_, err := r.DB.ExecContext(ctx, `
		UPDATE requests SET status = ?, provider_id = ? WHERE id = ?
	`, models.StatusInProgress, providerID, requestID)
	return err
}
