package goals

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/nutritiontrax/nutritiontrax/internal/auth"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = 42

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	}
	return req.WithContext(auth.ContextWithUserID(req.Context(), testUserID))
}

func TestHandler_HandleAdd(t *testing.T) {
	repo := NewMockGoalsRepo()
	h := NewHandler(repo)

	rec := httptest.NewRecorder()
	h.HandleAdd(rec, authedRequest("POST", "/goals",
		`{"name": "Bench 100kg", "goal_type": "gte", "target_value": 100, "goal_end_date": "2026-12-31"}`))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp addGoalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotZero(t, resp.Goal.ID)
	assert.Equal(t, "Bench 100kg", resp.Goal.Name)
	assert.Equal(t, TypeGTE, resp.Goal.Type)
	// metric type defaults when not given
	assert.Equal(t, MetricNumeric, resp.Goal.MetricType)
	assert.False(t, resp.Goal.Complete)
	assert.Nil(t, resp.Goal.CurrentValue)

	stored := repo.goals[resp.Goal.ID]
	require.NotNil(t, stored)
	assert.Equal(t, testUserID, stored.UserID)
	assert.Equal(t, StatusNone, stored.ChallengeStatus)
}

func TestHandler_HandleAdd_MissingFields(t *testing.T) {
	repo := NewMockGoalsRepo()
	h := NewHandler(repo)

	testCases := []struct {
		name string
		body string
	}{
		{name: "NoName", body: `{"goal_type": "gte", "target_value": 100}`},
		{name: "NoType", body: `{"name": "Bench 100kg", "target_value": 100}`},
		{name: "NoTarget", body: `{"name": "Bench 100kg", "goal_type": "gte"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleAdd(rec, authedRequest("POST", "/goals", tc.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "missing required fields")
			assert.Empty(t, repo.goals)
		})
	}
}

func TestHandler_HandleList(t *testing.T) {
	repo := NewMockGoalsRepo()
	h := NewHandler(repo)

	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	repo.goals = map[int]*Goal{
		1: {ID: 1, UserID: testUserID, Name: "Bench 100kg", Type: TypeGTE, TargetValue: 100,
			MetricType: MetricNumeric, ChallengeStatus: StatusNone},
		2: {ID: 2, UserID: testUserID, Name: "Run 5k", Type: TypeGTE, TargetValue: 5,
			MetricType: MetricNumeric, ChallengeStatus: StatusPending},
		3: {ID: 3, UserID: testUserID, Name: "Cut sugar", Type: TypeLTE, TargetValue: 1,
			MetricType: MetricBoolean, ChallengeStatus: StatusDeclined},
		4: {ID: 4, UserID: testUserID, Name: "Old goal", Type: TypeGTE, TargetValue: 10,
			MetricType: MetricNumeric, ChallengeStatus: StatusNone, EndDate: &yesterday},
		5: {ID: 5, UserID: testUserID, Name: "Weigh 80kg", Type: TypeLTE, TargetValue: 80,
			MetricType: MetricNumeric, ChallengeStatus: StatusAccepted, EndDate: &tomorrow},
		6: {ID: 6, UserID: 1000, Name: "Someone else's", Type: TypeGTE, TargetValue: 1,
			MetricType: MetricNumeric, ChallengeStatus: StatusNone},
	}
	repo.metrics[5] = []loggedMetric{{value: 84, unit: "kg"}, {value: 82.5, unit: "kg"}}

	rec := httptest.NewRecorder()
	h.HandleList(rec, authedRequest("GET", "/goals", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp goalsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// pending and declined challenges stay hidden, expired goals too
	require.Len(t, resp.Goals, 2)
	byName := make(map[string]Goal)
	for _, g := range resp.Goals {
		byName[g.Name] = g
	}
	require.Contains(t, byName, "Bench 100kg")
	require.Contains(t, byName, "Weigh 80kg")

	// latest logged metric rides along
	weighGoal := byName["Weigh 80kg"]
	require.NotNil(t, weighGoal.CurrentValue)
	assert.Equal(t, 82.5, *weighGoal.CurrentValue)
	require.NotNil(t, weighGoal.MetricUnit)
	assert.Equal(t, "kg", *weighGoal.MetricUnit)
	assert.Nil(t, byName["Bench 100kg"].CurrentValue)

	// name filter
	rec = httptest.NewRecorder()
	h.HandleList(rec, authedRequest("GET", "/goals?q=bench", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	resp = goalsResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Goals, 1)
	assert.Equal(t, "Bench 100kg", resp.Goals[0].Name)
}

func TestHandler_HandleProgress(t *testing.T) {
	repo := NewMockGoalsRepo()
	h := NewHandler(repo)

	numericID, err := repo.Add(context.Background(), Goal{
		UserID: testUserID, Name: "Bench 100kg", Type: TypeGTE, TargetValue: 100, MetricType: MetricNumeric,
	})
	require.NoError(t, err)
	booleanID, err := repo.Add(context.Background(), Goal{
		UserID: testUserID, Name: "Run a marathon", Type: TypeGTE, TargetValue: 1, MetricType: MetricBoolean,
	})
	require.NoError(t, err)

	logProgress := func(goalID int, body string) (*httptest.ResponseRecorder, logProgressResponse) {
		req := authedRequest("POST", "/goals/progress", body)
		req = mux.SetURLVars(req, map[string]string{"id": strconv.Itoa(goalID)})
		rec := httptest.NewRecorder()
		h.HandleProgress(rec, req)
		var resp logProgressResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
		return rec, resp
	}

	// below target, not complete yet
	rec, resp := logProgress(numericID, `{"current_value": 90, "metric_unit": "kg"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.False(t, resp.GoalComplete)
	assert.False(t, repo.goals[numericID].Complete)

	// target reached
	rec, resp = logProgress(numericID, `{"current_value": 102.5, "metric_unit": "kg"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.GoalComplete)
	assert.True(t, repo.goals[numericID].Complete)
	require.Len(t, repo.metrics[numericID], 2)

	// boolean goals complete on any log
	rec, resp = logProgress(booleanID, `{"current_value": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.GoalComplete)
	// unit defaults when not given
	assert.Equal(t, "None", repo.metrics[booleanID][0].unit)

	// missing value
	rec, _ = logProgress(numericID, `{"metric_unit": "kg"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown goal
	rec, _ = logProgress(999, `{"current_value": 1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_HandleCancel(t *testing.T) {
	repo := NewMockGoalsRepo()
	h := NewHandler(repo)

	goalID, err := repo.Add(context.Background(), Goal{
		UserID: testUserID, Name: "Bench 100kg", Type: TypeGTE, TargetValue: 100, MetricType: MetricNumeric,
	})
	require.NoError(t, err)

	req := authedRequest("POST", "/goals/cancel", "")
	req = mux.SetURLVars(req, map[string]string{"id": strconv.Itoa(goalID)})
	rec := httptest.NewRecorder()
	h.HandleCancel(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, repo.goals, goalID)

	// already gone
	rec = httptest.NewRecorder()
	h.HandleCancel(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
