package track

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/nutritiontrax/nutritiontrax/internal/auth"
	"github.com/nutritiontrax/nutritiontrax/internal/progress"
	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"
	"github.com/nutritiontrax/nutritiontrax/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type trackRepo interface {
	DailyCaloriesEaten(ctx context.Context, userID int) ([]DailyValue, error)
	DailyCaloriesBurned(ctx context.Context, userID int) ([]DailyValue, error)
	DailyMacros(ctx context.Context, userID int) ([]MacrosPoint, error)
}

type weightRepo interface {
	WeightSeries(ctx context.Context, userID int) ([]progress.Entry, error)
}

type Handler struct {
	repo    trackRepo
	weights weightRepo
}

func NewHandler(repo trackRepo, weights weightRepo) *Handler {
	return &Handler{
		repo:    repo,
		weights: weights,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	trackRouter := router.PathPrefix("/track").Subrouter()
	trackRouter.HandleFunc("/data", handler.HandleData).Methods("GET", "OPTIONS").Name("track-data")
}

type trackDataResponse struct {
	WeightData   []WeightPoint   `json:"weightData"`
	CaloriesData []CaloriesPoint `json:"caloriesData"`
	MacrosData   []MacrosPoint   `json:"macrosData"`
}

// HandleData returns all chart series for the user in one response.
func (handler *Handler) HandleData(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.track.data")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	weightEntries, err := handler.weights.WeightSeries(ctx, userID)
	if err != nil {
		log.Errorf("get weight series for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get tracking data", http.StatusInternalServerError)
		return
	}

	eaten, err := handler.repo.DailyCaloriesEaten(ctx, userID)
	if err != nil {
		log.Errorf("get daily calories eaten for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get tracking data", http.StatusInternalServerError)
		return
	}

	burned, err := handler.repo.DailyCaloriesBurned(ctx, userID)
	if err != nil {
		log.Errorf("get daily calories burned for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get tracking data", http.StatusInternalServerError)
		return
	}

	macros, err := handler.repo.DailyMacros(ctx, userID)
	if err != nil {
		log.Errorf("get daily macros for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get tracking data", http.StatusInternalServerError)
		return
	}

	weightData := make([]WeightPoint, 0, len(weightEntries))
	for _, entry := range weightEntries {
		weightData = append(weightData, WeightPoint{
			Date:      entry.RecordedAt.Format("2006-01-02"),
			WeightLbs: entry.WeightLbs,
		})
	}

	respBytes, err := json.Marshal(trackDataResponse{
		WeightData:   weightData,
		CaloriesData: MergeCalories(eaten, burned),
		MacrosData:   macros,
	})
	if err != nil {
		log.Errorf("marshal track data response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusOK)
}
