package exercises

import (
	"strings"

	"github.com/nutritiontrax/nutritiontrax/internal/calories"
)

// Exercise is a catalog entry. Shared catalog exercises have a nil UserID,
// user-created ones carry the owner's id.
type Exercise struct {
	ID            int               `json:"exercise_id"`
	Key           string            `json:"exercise_key"`
	Name          string            `json:"exercise_type"`
	Category      calories.Category `json:"category"`
	CaloriesPerKg float64           `json:"calories_per_kg"`
	UserID        *int              `json:"-"`
	Subcategories []Subcategory     `json:"subcategories,omitempty"`
}

type Subcategory struct {
	ID         int    `json:"subcategory_id"`
	CategoryID int    `json:"-"`
	Name       string `json:"name"`
}

// the SPA sends category ids, the catalog stores category labels
var categoriesByID = map[int]calories.Category{
	1: calories.CategoryBack,
	2: calories.CategoryChest,
	3: calories.CategoryArms,
	4: calories.CategoryLegs,
	5: calories.CategoryCore,
	6: calories.CategoryCardio,
}

func CategoryByID(id int) (calories.Category, bool) {
	category, ok := categoriesByID[id]
	return category, ok
}

// ExerciseKey builds the lookup key used for cardio kcal matching.
func ExerciseKey(name string) string {
	key := strings.ToLower(name)
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, ",", "")
	return key
}

const fallbackCardioKcalPerKg = 7.8

var defaultStrengthKcalPerKg = map[calories.Category]float64{
	calories.CategoryBack:  4.5,
	calories.CategoryChest: 4.8,
	calories.CategoryArms:  3.8,
	calories.CategoryLegs:  5.0,
	calories.CategoryCore:  4.0,
}

// DefaultStrengthKcal is the rough per-kg coefficient for a strength
// exercise when the user lets the catalog pick one.
func DefaultStrengthKcal(category calories.Category) float64 {
	if kcal, ok := defaultStrengthKcalPerKg[category]; ok {
		return kcal
	}
	return 4.0
}
