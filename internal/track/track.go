// Package track assembles the time series behind the progress charts:
// body weight, daily calories eaten vs burned, and daily macros.
package track

import "sort"

// DailyValue is one day's aggregate of a single series.
type DailyValue struct {
	Date  string
	Value float64
}

type WeightPoint struct {
	Date      string  `json:"recorded_date"`
	WeightLbs float64 `json:"weight"`
}

type CaloriesPoint struct {
	Date           string  `json:"date"`
	CaloriesEaten  float64 `json:"calories_eaten"`
	CaloriesBurned float64 `json:"calories_burned"`
}

type MacrosPoint struct {
	Date         string  `json:"date"`
	Protein      float64 `json:"protein"`
	Carbs        float64 `json:"carbs"`
	TotalFat     float64 `json:"total_fat"`
	SaturatedFat float64 `json:"saturated_fat"`
}

// MergeCalories joins the eaten and burned series on date. Days present in
// only one series get a zero for the other, the result comes back sorted by
// date ascending.
func MergeCalories(eaten, burned []DailyValue) []CaloriesPoint {
	byDate := make(map[string]*CaloriesPoint)
	for _, e := range eaten {
		byDate[e.Date] = &CaloriesPoint{Date: e.Date, CaloriesEaten: e.Value}
	}
	for _, b := range burned {
		point, ok := byDate[b.Date]
		if !ok {
			point = &CaloriesPoint{Date: b.Date}
			byDate[b.Date] = point
		}
		point.CaloriesBurned = b.Value
	}

	merged := make([]CaloriesPoint, 0, len(byDate))
	for _, point := range byDate {
		merged = append(merged, *point)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})

	return merged
}
