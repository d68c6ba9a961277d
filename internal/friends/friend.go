package friends

import (
	"fmt"
	"time"
)

// Friendship statuses. A request starts pending and becomes accepted, declined
// requests get deleted.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
)

type Friend struct {
	UserID   int     `json:"user_id"`
	Username string  `json:"username"`
	Nickname *string `json:"nickname,omitempty"`
}

// PendingRequest is an incoming friend request waiting for an answer.
type PendingRequest struct {
	FriendshipID int       `json:"friendship_id"`
	User         Friend    `json:"user"`
	CreatedAt    time.Time `json:"-"`
	TimeAgo      string    `json:"date"`
}

// SearchResult is a user found by username search, with the friendship status
// towards the searching user attached. Status is nil for strangers.
type SearchResult struct {
	UserID           int     `json:"user_id"`
	Username         string  `json:"username"`
	Nickname         *string `json:"nickname"`
	FriendshipStatus *string `json:"friendshipStatus"`
}

// TimeAgo humanizes how long ago t was relative to now.
func TimeAgo(t, now time.Time) string {
	seconds := now.Sub(t).Seconds()
	switch {
	case seconds < 60:
		return "Just now"
	case seconds < 3600:
		return pluralizeAgo(int(seconds/60), "minute")
	case seconds < 86400:
		return pluralizeAgo(int(seconds/3600), "hour")
	case seconds < 604800:
		return pluralizeAgo(int(seconds/86400), "day")
	case seconds < 2592000:
		return pluralizeAgo(int(seconds/604800), "week")
	default:
		return pluralizeAgo(int(seconds/2592000), "month")
	}
}

func pluralizeAgo(count int, unit string) string {
	if count == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", count, unit)
}
