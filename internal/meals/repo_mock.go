package meals

import (
	"context"
	"strings"
)

type repoMock struct {
	meals       map[int]*Meal
	addedFoods  map[int][]Food
	reusedFoods map[int][]ReuseFood
	sharedFoods []Food
	nextID      int
}

func NewMockMealsRepo() *repoMock {
	return &repoMock{
		meals:       make(map[int]*Meal),
		addedFoods:  make(map[int][]Food),
		reusedFoods: make(map[int][]ReuseFood),
		nextID:      1,
	}
}

func (r *repoMock) Meals(_ context.Context, filter ListFilter) ([]Meal, error) {
	found := make([]Meal, 0)
	for _, m := range r.meals {
		if m.UserID != filter.UserID {
			continue
		}
		if filter.OriginalsOnly && m.ParentMealID != nil {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(m.Name), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(m.Type), strings.ToLower(filter.Search)) {
			continue
		}
		found = append(found, *m)
	}
	return found, nil
}

func (r *repoMock) Add(_ context.Context, meal Meal, foods []Food) (int, error) {
	meal.ID = r.nextID
	r.nextID++
	r.meals[meal.ID] = &meal
	r.addedFoods[meal.ID] = foods
	return meal.ID, nil
}

func (r *repoMock) Reuse(_ context.Context, meal Meal, foods []ReuseFood) (int, error) {
	if meal.ParentMealID != nil {
		if _, ok := r.meals[*meal.ParentMealID]; !ok {
			return 0, ErrMealNotFound
		}
	}
	meal.ID = r.nextID
	r.nextID++
	r.meals[meal.ID] = &meal
	r.reusedFoods[meal.ID] = foods
	return meal.ID, nil
}

func (r *repoMock) Update(_ context.Context, params UpdateParams) error {
	meal, ok := r.meals[params.MealID]
	if !ok || meal.UserID != params.UserID {
		return ErrMealNotFound
	}
	if params.Date != nil {
		meal.Date = *params.Date
	}
	if params.Name != nil {
		meal.Name = *params.Name
	}
	if params.Type != nil {
		meal.Type = *params.Type
	}
	return nil
}

func (r *repoMock) Delete(_ context.Context, userID, mealID int) error {
	meal, ok := r.meals[mealID]
	if !ok || meal.UserID != userID {
		return ErrMealNotFound
	}
	delete(r.meals, mealID)
	return nil
}

func (r *repoMock) SearchSharedFood(_ context.Context, query string) (*Food, error) {
	for i := range r.sharedFoods {
		if strings.Contains(
			strings.ToLower(r.sharedFoods[i].Description),
			strings.ToLower(query),
		) {
			return &r.sharedFoods[i], nil
		}
	}
	return nil, ErrFoodNotFound
}
