package lifecycle

import (
	"testing"

	"zakazBack/internal/models"
)

func TestCanAdvance(t *testing.T) {
	if !CanAdvance(models.StatusPending, models.StatusInProgress) {
		t.Fatal("expected pending -> inProgress to be allowed")
	}
	if !CanAdvance(models.StatusInProgress, models.StatusAwaitingConfirmation) {
		t.Fatal("expected inProgress -> awaitingConfirmation to be allowed")
	}
	if !CanAdvance(models.StatusAwaitingConfirmation, models.StatusCompleted) {
		t.Fatal("expected awaitingConfirmation -> completed to be allowed")
	}
	if CanAdvance(models.StatusPending, models.StatusCompleted) {
		t.Fatal("unexpected transition allowed: chain must not be skipped")
	}
	if CanAdvance(models.StatusPending, models.StatusAwaitingConfirmation) {
		t.Fatal("unexpected transition allowed: chain must not be skipped")
	}
}

func TestCanAdvanceNeverRegresses(t *testing.T) {
	chain := []string{
		models.StatusPending,
		models.StatusInProgress,
		models.StatusAwaitingConfirmation,
		models.StatusCompleted,
	}
	for i, from := range chain {
		for j, to := range chain {
			if j < i && CanAdvance(from, to) {
				t.Fatalf("backward transition %s -> %s must not be allowed", from, to)
			}
		}
	}
	if !CanAdvance(models.StatusCompleted, models.StatusCompleted) {
		t.Fatal("same-status write should be a no-op, not an error")
	}
}
