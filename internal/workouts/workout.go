package workouts

import (
	"github.com/nutritiontrax/nutritiontrax/internal/calories"
)

// Workout is either a reusable template (IsTemplate, no date) or a logged
// workout instance with a date and computed totals.
type Workout struct {
	ID              int      `json:"workout_id"`
	UserID          int      `json:"-"`
	Name            string   `json:"name"`
	Notes           string   `json:"notes"`
	DurationMinutes int      `json:"duration"`
	WorkoutDate     *string  `json:"workout_date,omitempty"`
	TotalCalories   *float64 `json:"total_calories_burned,omitempty"`
	IsTemplate      bool     `json:"-"`
}

// TemplateExercise links a catalog exercise into a template, optionally with
// a default duration the SPA prefills when logging from the template.
type TemplateExercise struct {
	ExerciseID      int     `json:"exercise_id"`
	DurationMinutes float64 `json:"exercise_duration"`
}

// WorkoutExercise is a catalog exercise joined with its per-workout data,
// for both template defaults and logged instances.
type WorkoutExercise struct {
	ExerciseID      int               `json:"exercise_id"`
	Name            string            `json:"exercise_type"`
	Category        calories.Category `json:"category"`
	CaloriesPerKg   float64           `json:"calories_per_kg"`
	Sets            *int              `json:"sets"`
	Reps            *int              `json:"reps"`
	Weight          *float64          `json:"weight"`
	MaxWeight       *float64          `json:"max_weight"`
	Distance        *float64          `json:"distance"`
	DurationMinutes float64           `json:"exercise_duration"`
	Intensity       *float64          `json:"intensity,omitempty"`
	CaloriesBurned  *float64          `json:"calories_burned,omitempty"`
}

// CatalogExercise is the catalog info the logging flow needs to price an entry.
type CatalogExercise struct {
	ID            int
	Name          string
	Category      calories.Category
	CaloriesPerKg float64
}
