package models

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// Roles are chosen per session, not persisted as identity.
const (
	RoleClient   = "client"
	RoleProvider = "provider"
)

// User documents are created lazily on first write; there is no signup flow.
// Provider aggregates (CompletedTasks, AverageRating) are maintained inside
// the rating transaction and must always match the ratings sequence.
type User struct {
	ID             int64      `json:"id"`
	Role           string     `json:"role"`
	RequestsIDs    []int64    `json:"requestsIds,omitempty"`
	CompletedTasks int        `json:"completedTasks"`
	AverageRating  float64    `json:"averageRating"`
	Ratings        []int      `json:"ratings,omitempty"`
	RatesIDs       []int64    `json:"ratesIds,omitempty"`
	FCMToken       string     `json:"fcmToken,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// ProviderStats is the aggregate slice of a provider document shown on the
// request feed header.
type ProviderStats struct {
	ProviderID     int64   `json:"providerId"`
	CompletedTasks int     `json:"completedTasks"`
	AverageRating  float64 `json:"averageRating"`
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Session struct {
	UserID       int64     `json:"userId"`
	Role         string    `json:"role"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

type SignInRequest struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// MeanRating returns the exact arithmetic mean of the ratings sequence.
func MeanRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}
