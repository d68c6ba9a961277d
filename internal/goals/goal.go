package goals

import "time"

// Goal types compare logged progress against the target value.
const (
	TypeGTE = "gte"
	TypeLTE = "lte"
)

const (
	MetricNumeric = "numeric"
	MetricBoolean = "boolean"
)

// Challenge statuses. Self-created goals carry StatusNone, goals sent as a
// challenge start out pending and only show up in the owner's list once
// accepted.
const (
	StatusNone     = "none"
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

type Goal struct {
	ID          int     `json:"goal_id"`
	UserID      int     `json:"-"`
	Name        string  `json:"name"`
	Type        string  `json:"goal_type"`
	TargetValue float64 `json:"target_value"`
	EndDate     *string `json:"goal_end_date"`
	Complete    bool    `json:"goal_complete"`
	MetricType  string  `json:"metric_type"`

	// latest logged metric, null when nothing was logged yet
	CurrentValue *float64 `json:"current_value"`
	MetricUnit   *string  `json:"metric_unit"`

	ChallengeStatus string    `json:"-"`
	CreatedByUserID int       `json:"-"`
	DateAdded       time.Time `json:"-"`
}

// IsComplete reports whether the logged value completes the goal. Boolean
// metrics complete on any log, numeric ones compare against the target.
func (g Goal) IsComplete(value float64) bool {
	if g.MetricType == MetricBoolean {
		return true
	}
	switch g.Type {
	case TypeGTE:
		return value >= g.TargetValue
	case TypeLTE:
		return value <= g.TargetValue
	default:
		return false
	}
}

// Challenge is a pending goal sent by a friend, together with who sent it.
type Challenge struct {
	GoalID       int       `json:"goal_id"`
	Name         string    `json:"name"`
	Type         string    `json:"goal_type"`
	TargetValue  float64   `json:"target_value"`
	EndDate      *string   `json:"goal_end_date"`
	MetricType   string    `json:"metric_type"`
	DateAdded    time.Time `json:"date_added"`
	FromUserID   int       `json:"from_user_id"`
	FromUsername string    `json:"from_username"`
}
