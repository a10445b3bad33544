package entities

import "time"

const (
	// DefaultCredits is granted when a user row is first created.
	DefaultCredits = 5
	// DailyBonus is added once per calendar day on request.
	DailyBonus = 10
	// SpecialCredits is the sentinel balance pinned for allow-listed users.
	SpecialCredits = 999
)

type User struct {
	ID      int64 `json:"id"`
	Credits int   `json:"credits"`
}

// HistoryEntry is an immutable record of one successful lookup.
type HistoryEntry struct {
	UserID   int64     `json:"user_id"`
	Query    string    `json:"query"`
	Category string    `json:"category"` // feature tag, e.g. "IFSC", "VEHICLE"
	At       time.Time `json:"ts"`
}

type BlockedUser struct {
	UserID    int64     `json:"user_id"`
	BlockedBy int64     `json:"blocked_by"`
	Reason    string    `json:"reason"`
	BlockedAt time.Time `json:"blocked_at"`
	Credits   int       `json:"credits"` // joined from users for display
}

// SpecialUser is an allow-listed account exempt from charging.
type SpecialUser struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}
