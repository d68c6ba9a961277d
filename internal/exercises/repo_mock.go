package exercises

import (
	"context"
)

type repoMock struct {
	exercises      map[int]*Exercise
	subcategories  []Subcategory
	linksByID      map[int][]int
	cardioKcalByID map[string]float64
	nextID         int
}

func NewMockExercisesRepo() *repoMock {
	return &repoMock{
		exercises:      make(map[int]*Exercise),
		linksByID:      make(map[int][]int),
		cardioKcalByID: make(map[string]float64),
		nextID:         1,
	}
}

func (r *repoMock) Subcategories(_ context.Context) ([]Subcategory, error) {
	return r.subcategories, nil
}

func (r *repoMock) Add(_ context.Context, exercise Exercise, subcategoryIDs []int) (*Exercise, error) {
	exercise.ID = r.nextID
	r.nextID++
	r.exercises[exercise.ID] = &exercise
	r.linksByID[exercise.ID] = subcategoryIDs
	return &exercise, nil
}

func (r *repoMock) ClosestCardioKcal(_ context.Context, exerciseKey string) (float64, error) {
	if kcal, ok := r.cardioKcalByID[exerciseKey]; ok {
		return kcal, nil
	}
	return 0, ErrExerciseNotFound
}

func (r *repoMock) Search(_ context.Context, params SearchParams) ([]Exercise, error) {
	found := make([]Exercise, 0)
	for _, e := range r.exercises {
		if e.UserID == nil || *e.UserID != params.UserID {
			continue
		}
		if params.Category != "" && e.Category != params.Category {
			continue
		}
		found = append(found, *e)
	}
	return found, nil
}

func (r *repoMock) Update(_ context.Context, exercise Exercise, subcategoryIDs []int) error {
	existing, ok := r.exercises[exercise.ID]
	if !ok || *existing.UserID != *exercise.UserID {
		return ErrExerciseNotFound
	}
	r.exercises[exercise.ID] = &exercise
	r.linksByID[exercise.ID] = subcategoryIDs
	return nil
}

func (r *repoMock) Delete(_ context.Context, id, userID int) error {
	existing, ok := r.exercises[id]
	if !ok || *existing.UserID != userID {
		return ErrExerciseNotFound
	}
	delete(r.exercises, id)
	delete(r.linksByID, id)
	return nil
}
