package models

import (
	"time"
)

// Request statuses form a forward-only chain; see internal/lifecycle.
const (
	StatusPending              = "pending"
	StatusInProgress           = "inProgress"
	StatusAwaitingConfirmation = "awaitingConfirmation"
	StatusCompleted            = "completed"
)

// Request categories selectable by the client.
const (
	CategoryRepair    = "repair"
	CategoryCleaning  = "cleaning"
	CategoryTransport = "transport"
)

// Request is a client-posted task awaiting provider proposals. Field names
// are the wire contract with the mobile clients, so JSON stays camelCase.
type Request struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	MediaURL    *string    `json:"mediaUrl,omitempty"`
	MediaType   *string    `json:"mediaType,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UserID      int64      `json:"userId"`
	Status      string     `json:"status"`
	ProviderID  *int64     `json:"providerId,omitempty"`
	Proposals   []Proposal `json:"proposals"`
}

// Proposal is a provider's bid against a request. CreatedAt is the
// client-assigned wall-clock time in milliseconds and is preserved as
// submitted, so cross-device ordering is not guaranteed.
type Proposal struct {
	ID         int64  `json:"id"`
	RequestID  int64  `json:"requestId,omitempty"`
	Price      string `json:"price"`
	Deadline   string `json:"deadline"`
	Comment    string `json:"comment"`
	ProviderID int64  `json:"providerId"`
	CreatedAt  int64  `json:"createdAt"`
}

func ValidCategory(category string) bool {
	switch category {
	case CategoryRepair, CategoryCleaning, CategoryTransport:
		return true
	}
	return false
}

func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusInProgress, StatusAwaitingConfirmation, StatusCompleted:
		return true
	}
	return false
}

// Equal reports value equality of two proposals, ignoring the stored
// identity. Byte-identical resubmissions are collapsed to one entry.
func (p Proposal) Equal(other Proposal) bool {
	return p.RequestID == other.RequestID &&
		p.Price == other.Price &&
		p.Deadline == other.Deadline &&
		p.Comment == other.Comment &&
		p.ProviderID == other.ProviderID &&
		p.CreatedAt == other.CreatedAt
}
