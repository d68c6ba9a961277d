package goals

import (
	"context"
	"sort"
	"strings"
	"time"
)

type loggedMetric struct {
	value float64
	unit  string
}

type repoMock struct {
	goals   map[int]*Goal
	metrics map[int][]loggedMetric
	nextID  int
}

func NewMockGoalsRepo() *repoMock {
	return &repoMock{
		goals:   make(map[int]*Goal),
		metrics: make(map[int][]loggedMetric),
		nextID:  1,
	}
}

func (r *repoMock) List(_ context.Context, userID int, search string) ([]Goal, error) {
	today := time.Now().Format("2006-01-02")
	found := make([]Goal, 0)
	for _, g := range r.goals {
		if g.UserID != userID {
			continue
		}
		if g.ChallengeStatus == StatusPending || g.ChallengeStatus == StatusDeclined {
			continue
		}
		if g.EndDate != nil && *g.EndDate < today {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(g.Name), strings.ToLower(search)) {
			continue
		}
		goal := *g
		if logged := r.metrics[g.ID]; len(logged) > 0 {
			latest := logged[len(logged)-1]
			goal.CurrentValue = &latest.value
			goal.MetricUnit = &latest.unit
		}
		found = append(found, goal)
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].DateAdded.After(found[j].DateAdded)
	})
	return found, nil
}

func (r *repoMock) Add(_ context.Context, goal Goal) (int, error) {
	goal.ID = r.nextID
	r.nextID++
	goal.DateAdded = time.Now()
	r.goals[goal.ID] = &goal
	return goal.ID, nil
}

func (r *repoMock) Get(_ context.Context, userID, goalID int) (*Goal, error) {
	g, ok := r.goals[goalID]
	if !ok || g.UserID != userID {
		return nil, ErrGoalNotFound
	}
	goal := *g
	return &goal, nil
}

func (r *repoMock) LogProgress(_ context.Context, goalID int, value float64, unit string, complete bool) error {
	if _, ok := r.goals[goalID]; !ok {
		return ErrGoalNotFound
	}
	r.metrics[goalID] = append(r.metrics[goalID], loggedMetric{value: value, unit: unit})
	if complete {
		r.goals[goalID].Complete = true
	}
	return nil
}

func (r *repoMock) Delete(_ context.Context, userID, goalID int) error {
	g, ok := r.goals[goalID]
	if !ok || g.UserID != userID {
		return ErrGoalNotFound
	}
	delete(r.goals, goalID)
	return nil
}
