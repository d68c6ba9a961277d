package progress

import "time"

// Entry is one body measurement report: weight in pounds, height in inches
type Entry struct {
	ID           int       `json:"id"`
	UserID       int       `json:"-"`
	WeightLbs    float64   `json:"weight"`
	HeightInches float64   `json:"height"`
	RecordedAt   time.Time `json:"recorded_date"`
}
