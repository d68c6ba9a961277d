package track

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nutritiontrax/nutritiontrax/internal/auth"
	"github.com/nutritiontrax/nutritiontrax/internal/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserID = 42

func TestMergeCalories(t *testing.T) {
	eaten := []DailyValue{
		{Date: "2025-06-01", Value: 2100},
		{Date: "2025-06-02", Value: 1850},
	}
	burned := []DailyValue{
		{Date: "2025-06-02", Value: 450},
		{Date: "2025-06-03", Value: 600},
	}

	merged := MergeCalories(eaten, burned)
	require.Len(t, merged, 3)

	// sorted ascending, days missing from one series get a zero
	assert.Equal(t, CaloriesPoint{Date: "2025-06-01", CaloriesEaten: 2100, CaloriesBurned: 0}, merged[0])
	assert.Equal(t, CaloriesPoint{Date: "2025-06-02", CaloriesEaten: 1850, CaloriesBurned: 450}, merged[1])
	assert.Equal(t, CaloriesPoint{Date: "2025-06-03", CaloriesEaten: 0, CaloriesBurned: 600}, merged[2])
}

func TestMergeCalories_Empty(t *testing.T) {
	assert.Empty(t, MergeCalories(nil, nil))
}

type trackRepoMock struct {
	eaten  []DailyValue
	burned []DailyValue
	macros []MacrosPoint
}

func (m *trackRepoMock) DailyCaloriesEaten(_ context.Context, _ int) ([]DailyValue, error) {
	return m.eaten, nil
}

func (m *trackRepoMock) DailyCaloriesBurned(_ context.Context, _ int) ([]DailyValue, error) {
	return m.burned, nil
}

func (m *trackRepoMock) DailyMacros(_ context.Context, _ int) ([]MacrosPoint, error) {
	return m.macros, nil
}

type weightRepoMock struct {
	entries []progress.Entry
}

func (m *weightRepoMock) WeightSeries(_ context.Context, _ int) ([]progress.Entry, error) {
	return m.entries, nil
}

func TestHandler_HandleData(t *testing.T) {
	repo := &trackRepoMock{
		eaten:  []DailyValue{{Date: "2025-06-01", Value: 2100}},
		burned: []DailyValue{{Date: "2025-06-01", Value: 450}},
		macros: []MacrosPoint{{Date: "2025-06-01", Protein: 120, Carbs: 210, TotalFat: 60, SaturatedFat: 18}},
	}
	weights := &weightRepoMock{
		entries: []progress.Entry{
			{UserID: testUserID, WeightLbs: 185.5, RecordedAt: time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)},
			{UserID: testUserID, WeightLbs: 183, RecordedAt: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)},
		},
	}
	h := NewHandler(repo, weights)

	req := httptest.NewRequest("GET", "/track/data", bytes.NewBuffer(nil))
	req = req.WithContext(auth.ContextWithUserID(req.Context(), testUserID))
	rec := httptest.NewRecorder()
	h.HandleData(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp trackDataResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.WeightData, 2)
	assert.Equal(t, WeightPoint{Date: "2025-05-20", WeightLbs: 185.5}, resp.WeightData[0])

	require.Len(t, resp.CaloriesData, 1)
	assert.Equal(t, float64(2100), resp.CaloriesData[0].CaloriesEaten)
	assert.Equal(t, float64(450), resp.CaloriesData[0].CaloriesBurned)

	require.Len(t, resp.MacrosData, 1)
	assert.Equal(t, float64(120), resp.MacrosData[0].Protein)
}

func TestHandler_HandleData_Unauthorized(t *testing.T) {
	h := NewHandler(&trackRepoMock{}, &weightRepoMock{})

	req := httptest.NewRequest("GET", "/track/data", nil)
	rec := httptest.NewRecorder()
	h.HandleData(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
