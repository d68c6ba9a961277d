package meals

import (
	"strings"
	"time"
)

const mealDateFormat = "2006-01-02"

// Meal is a logged meal. Reused instances point at the original through
// ParentMealID, original meals have it nil.
type Meal struct {
	ID           int    `json:"meal_id"`
	UserID       int    `json:"-"`
	Date         string `json:"meal_date"`
	Type         string `json:"meal_type"`
	Name         string `json:"name"`
	ParentMealID *int   `json:"parent_meal_id,omitempty"`
	Foods        []Food `json:"foods"`
}

// Food is a food row with macros per 100g, plus the amount eaten in the meal
// it is attached to. Shared catalog foods have a nil UserID.
type Food struct {
	ID           int      `json:"food_id"`
	Description  string   `json:"description"`
	Calories     float64  `json:"calories"`
	Protein      float64  `json:"protein"`
	Carbs        float64  `json:"carbs"`
	TotalFat     float64  `json:"total_fat"`
	SaturatedFat float64  `json:"saturated_fat"`
	Cholesterol  *float64 `json:"cholesterol"`
	Sodium       *float64 `json:"sodium"`
	Sugar        *float64 `json:"sugar"`
	UserID       *int     `json:"user_id,omitempty"`
	Amount       float64  `json:"food_amount"`
}

// ParseMealDate normalizes a client-sent meal date to YYYY-MM-DD. Datetime
// strings are cut at the date part, anything unparseable becomes today.
func ParseMealDate(s string) string {
	if i := strings.Index(s, "T"); i >= 0 {
		s = s[:i]
	}
	if _, err := time.Parse(mealDateFormat, s); err != nil {
		return time.Now().Format(mealDateFormat)
	}
	return s
}
