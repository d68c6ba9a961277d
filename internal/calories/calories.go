// Package calories estimates the energy burned by a logged workout.
//
// The formula constants are empirical rather than calibrated, so the numbers
// here must not be "fixed" without recalibrating against the stored workout
// history.
package calories

import "fmt"

// Intensity multipliers applied to the per-exercise kcal coefficient
const (
	IntensityLight    = 0.8
	IntensityModerate = 1.0
	IntensityVigorous = 1.2
	IntensityMax      = 1.5

	DefaultIntensity = IntensityModerate
)

// DefaultBodyWeightLbs is assumed when the user never recorded their weight
const DefaultBodyWeightLbs = 150.0

const lbsPerKg = 0.453592

// Entry is one exercise of a workout being logged.
// Optional numeric fields are pointers: absent means the client did not
// provide them, which is different from an explicit zero.
type Entry struct {
	ExerciseID    int      `json:"exercise_id"`
	Name          string   `json:"name"`
	Category      Category `json:"category"`
	CaloriesPerKg float64  `json:"calories_per_kg"`

	Sets      *int     `json:"sets"`
	Reps      *int     `json:"reps"`
	Weight    *float64 `json:"weight"`
	MaxWeight *float64 `json:"max_weight"`
	Distance  *float64 `json:"distance"`

	DurationMinutes float64 `json:"exercise_duration"`
	Intensity       float64 `json:"intensity"`
}

// ValidationError names the first exercise of a submission that cannot be estimated
type ValidationError struct {
	ExerciseName string
	Category     Category
}

func (e *ValidationError) Error() string {
	if e.Category == CategoryCardio {
		return fmt.Sprintf("Cardio exercise %q requires distance and duration", e.ExerciseName)
	}
	return fmt.Sprintf("Strength exercise %q requires sets, reps, and weight", e.ExerciseName)
}

// Normalize fills the defaults of an entry: zero intensity becomes the
// moderate multiplier and an absent duration stays zero. Absent optional
// fields stay nil. Normalizing twice gives the same entry.
func Normalize(e Entry) Entry {
	if e.Intensity == 0 {
		e.Intensity = DefaultIntensity
	}
	if e.DurationMinutes < 0 {
		e.DurationMinutes = 0
	}
	return e
}

// Validate checks all entries and returns a ValidationError for the first
// one that cannot be estimated, in submission order. Nothing is persisted
// when this fails, so the caller can bounce the whole workout.
func Validate(entries []Entry) error {
	for _, e := range entries {
		e = Normalize(e)
		if entryIsValid(e) {
			continue
		}
		return &ValidationError{
			ExerciseName: e.Name,
			Category:     e.Category,
		}
	}
	return nil
}

func entryIsValid(e Entry) bool {
	switch e.Category {
	case CategoryCardio:
		return e.Distance != nil && *e.Distance > 0 && e.DurationMinutes > 0
	case CategoryBack, CategoryChest, CategoryArms, CategoryLegs, CategoryCore:
		return e.Sets != nil && *e.Sets > 0 &&
			e.Reps != nil && *e.Reps > 0 &&
			e.Weight != nil && *e.Weight > 0
	default:
		return false
	}
}

// EstimateTotal sums the estimated kcal of all entries for a user of the
// given body weight. Entries that fail validation contribute zero, the sum
// does not depend on the order of entries, and the function is pure: the
// same input always produces the same total.
func EstimateTotal(entries []Entry, bodyWeightLbs float64) float64 {
	var total float64
	for _, e := range entries {
		total += estimateOne(Normalize(e), bodyWeightLbs)
	}
	return total
}

// Estimate returns the estimated kcal of a single entry, zero if the entry
// fails validation. EstimateTotal is the sum of Estimate over its entries.
func Estimate(e Entry, bodyWeightLbs float64) float64 {
	return estimateOne(Normalize(e), bodyWeightLbs)
}

func estimateOne(e Entry, bodyWeightLbs float64) float64 {
	if !entryIsValid(e) {
		return 0
	}

	switch e.Category {
	case CategoryCardio:
		durationHours := e.DurationMinutes / 60
		return durationHours * (e.CaloriesPerKg * e.Intensity) * (bodyWeightLbs / lbsPerKg) / 200
	case CategoryBack, CategoryChest, CategoryArms, CategoryLegs, CategoryCore:
		// max weight is deliberately not part of the estimate
		setsReps := float64(*e.Sets) * float64(*e.Reps)
		return (e.CaloriesPerKg * e.Intensity) * bodyWeightLbs * (setsReps / 18) / 60
	default:
		return 0
	}
}
