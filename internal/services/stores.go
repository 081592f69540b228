package services

import (
	"context"

	"zakazBack/internal/models"
)

// Store interfaces are the capability boundary between workflows and the
// database so the workflow tests can run against in-memory fakes. The
// concrete implementations live in internal/repositories.

type RequestStore interface {
	CreateRequest(ctx context.Context, req models.Request) (models.Request, error)
	GetRequestByID(ctx context.Context, id int64) (models.Request, error)
	ListByOwner(ctx context.Context, userID int64) ([]models.Request, error)
	ListByStatus(ctx context.Context, status string, providerID int64) ([]models.Request, error)
	AdvanceStatus(ctx context.Context, id int64, status string, providerID *int64) error
}

type ProposalStore interface {
	Append(ctx context.Context, p models.Proposal) (bool, error)
	ListByRequest(ctx context.Context, requestID int64) ([]models.Proposal, error)
	Accept(ctx context.Context, requestID, providerID int64) error
}

type RatingStore interface {
	SubmitRating(ctx context.Context, rating models.Rating) (models.Rating, models.ProviderStats, error)
}

type UserStore interface {
	EnsureUser(ctx context.Context, id int64, role string) error
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetProviderStats(ctx context.Context, providerID int64) (models.ProviderStats, error)
	SetSession(ctx context.Context, id int64, session models.Session) error
	GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error)
	SetFCMToken(ctx context.Context, id int64, token string) error
	GetFCMToken(ctx context.Context, id int64) (string, error)
}

// Publisher lets workflows tell the live-subscription hub that the requests
// collection changed; the hub re-runs every standing query and pushes the
// fresh result sets. Implementations must not block.
type Publisher interface {
	RequestsChanged()
}

// PushSender delivers a push notification to one device token. Failures are
// the sender's to log; workflows never fail on push errors.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// StatsCache is a short-TTL cache over provider aggregates.
type StatsCache interface {
	Get(ctx context.Context, providerID int64) (models.ProviderStats, bool, error)
	Set(ctx context.Context, stats models.ProviderStats) error
	Invalidate(ctx context.Context, providerID int64) error
}
