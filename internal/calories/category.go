package calories

import (
	"fmt"
	"strings"
)

// Category is the exercise category used to pick the burn formula.
// It is a closed set, new values must be added here and to the switches below.
type Category string

const (
	CategoryBack   Category = "BACK"
	CategoryChest  Category = "CHEST"
	CategoryArms   Category = "ARMS"
	CategoryLegs   Category = "LEGS"
	CategoryCore   Category = "CORE"
	CategoryCardio Category = "CARDIO"
)

func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case CategoryBack, CategoryChest, CategoryArms, CategoryLegs, CategoryCore, CategoryCardio:
		return c, nil
	default:
		return "", fmt.Errorf("unknown exercise category: %q", s)
	}
}

func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// IsStrength reports whether the category uses the sets/reps/weight formula
func (c Category) IsStrength() bool {
	switch c {
	case CategoryBack, CategoryChest, CategoryArms, CategoryLegs, CategoryCore:
		return true
	case CategoryCardio:
		return false
	default:
		return false
	}
}

func Categories() []Category {
	return []Category{
		CategoryBack, CategoryChest, CategoryArms,
		CategoryLegs, CategoryCore, CategoryCardio,
	}
}
