package domain

import (
	"strconv"
	"time"
)

// Member is a ranked individual belonging to a unit. Score is the running
// ledger total and is only ever mutated through report application and
// reversal.
type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Role      string    `json:"role"`
	ClassName string    `json:"class_name"`
	Score     int       `json:"score"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTimeID derives the identifier used for members and reports: the epoch
// timestamp in milliseconds, as a string.
func NewTimeID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}
