package lifecycle

import (
	"context"
	"database/sql"
	"errors"

	"zakazBack/internal/models"
)

// The request status chain is forward-only: pending -> inProgress ->
// awaitingConfirmation -> completed. There is no cancellation state and no
// backward transition. Nothing in the database enforces this; it is the
// convention the workflow layer upholds.
var transitions = map[string]map[string]struct{}{
	models.StatusPending:              {models.StatusInProgress: {}},
	models.StatusInProgress:           {models.StatusAwaitingConfirmation: {}},
	models.StatusAwaitingConfirmation: {models.StatusCompleted: {}},
	models.StatusCompleted:            {},
}

// CanAdvance returns whether a request may move from the current status to
// the target status along the forward chain.
func CanAdvance(from, to string) bool {
	if from == to {
		return true
	}
	allowed, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = allowed[to]
	return ok
}

// Apply updates a request status using optimistic validation: the write only
// lands if the row is still in the expected status.
func Apply(ctx context.Context, tx *sql.Tx, requestID int64, fromStatus, toStatus string) error {
	if !CanAdvance(fromStatus, toStatus) {
		return errors.New("invalid status transition")
	}
	res, err := tx.ExecContext(ctx, `UPDATE requests SET status = ? WHERE id = ? AND status = ?`, toStatus, requestID, fromStatus)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
