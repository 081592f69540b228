package models

import (
	"time"
)

// Rating is a client's score of a provider for one completed request.
type Rating struct {
	ID         int64     `json:"id"`
	RequestID  int64     `json:"requestId"`
	ProviderID int64     `json:"providerId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ValidRatingValue reports whether the score is inside the 1..5 star range.
// Zero means "unset" on the rating screen and is rejected at the boundary.
func ValidRatingValue(v int) bool {
	return v >= 1 && v <= 5
}
