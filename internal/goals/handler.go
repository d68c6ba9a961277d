package goals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nutritiontrax/nutritiontrax/internal/auth"
	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"
	"github.com/nutritiontrax/nutritiontrax/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type goalsRepo interface {
	List(ctx context.Context, userID int, search string) ([]Goal, error)
	Add(ctx context.Context, goal Goal) (int, error)
	Get(ctx context.Context, userID, goalID int) (*Goal, error)
	LogProgress(ctx context.Context, goalID int, value float64, unit string, complete bool) error
	Delete(ctx context.Context, userID, goalID int) error
}

type Handler struct {
	repo goalsRepo
}

func NewHandler(repo goalsRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	goalsRouter := router.PathPrefix("/goals").Subrouter()
	goalsRouter.HandleFunc("", handler.HandleList).Methods("GET", "OPTIONS").Name("goals")
	goalsRouter.HandleFunc("", handler.HandleAdd).Methods("POST", "OPTIONS").Name("add-goal")
	goalsRouter.HandleFunc("/{id}/progress", handler.HandleProgress).Methods("POST", "OPTIONS").Name("log-goal-progress")
	goalsRouter.HandleFunc("/{id}/cancel", handler.HandleCancel).Methods("POST", "OPTIONS").Name("cancel-goal")
}

type goalsResponse struct {
	Goals []Goal `json:"goals"`
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.list")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	userGoals, err := handler.repo.List(ctx, userID, r.URL.Query().Get("q"))
	if err != nil {
		log.Errorf("list goals for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get goals", http.StatusInternalServerError)
		return
	}

	respBytes, err := json.Marshal(goalsResponse{Goals: userGoals})
	if err != nil {
		log.Errorf("marshal goals response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusOK)
}

type addGoalRequest struct {
	Name        string   `json:"name"`
	Type        string   `json:"goal_type"`
	TargetValue *float64 `json:"target_value"`
	EndDate     *string  `json:"goal_end_date"`
	MetricType  string   `json:"metric_type"`
}

type addGoalResponse struct {
	Goal Goal `json:"goal"`
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.add")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req addGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warnf("add goal for user %d, decode request: %s", userID, err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Type == "" || req.TargetValue == nil {
		pkg.WriteJSONError(w, "missing required fields", http.StatusBadRequest)
		return
	}
	if req.MetricType == "" {
		req.MetricType = MetricNumeric
	}

	goal := Goal{
		UserID:          userID,
		Name:            req.Name,
		Type:            req.Type,
		TargetValue:     *req.TargetValue,
		EndDate:         req.EndDate,
		MetricType:      req.MetricType,
		ChallengeStatus: StatusNone,
	}

	goalID, err := handler.repo.Add(ctx, goal)
	if err != nil {
		log.Errorf("add goal for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to add goal", http.StatusInternalServerError)
		return
	}
	goal.ID = goalID

	respBytes, err := json.Marshal(addGoalResponse{Goal: goal})
	if err != nil {
		log.Errorf("marshal add goal response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d added goal %d [%s]", userID, goalID, goal.Name)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusCreated)
}

type logProgressRequest struct {
	CurrentValue *float64 `json:"current_value"`
	MetricUnit   string   `json:"metric_unit"`
}

type logProgressResponse struct {
	Success      bool `json:"success"`
	GoalComplete bool `json:"goal_complete"`
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.progress")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	goalID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid goal id", http.StatusBadRequest)
		return
	}

	var req logProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warnf("log goal progress for user %d, decode request: %s", userID, err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.CurrentValue == nil {
		pkg.WriteJSONError(w, "current_value is required", http.StatusBadRequest)
		return
	}
	if req.MetricUnit == "" {
		req.MetricUnit = "None"
	}

	goal, err := handler.repo.Get(ctx, userID, goalID)
	if err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			pkg.WriteJSONError(w, "goal not found", http.StatusNotFound)
			return
		}
		log.Errorf("get goal %d for user %d: %s", goalID, userID, err)
		pkg.WriteJSONError(w, "failed to log progress", http.StatusInternalServerError)
		return
	}

	complete := goal.Complete || goal.IsComplete(*req.CurrentValue)
	if err := handler.repo.LogProgress(ctx, goalID, *req.CurrentValue, req.MetricUnit, complete); err != nil {
		// the goal can disappear between the Get above and this write
		if errors.Is(err, ErrGoalNotFound) {
			pkg.WriteJSONError(w, "goal not found", http.StatusNotFound)
			return
		}
		log.Errorf("log progress for goal %d: %s", goalID, err)
		pkg.WriteJSONError(w, "failed to log progress", http.StatusInternalServerError)
		return
	}

	respBytes, err := json.Marshal(logProgressResponse{Success: true, GoalComplete: complete})
	if err != nil {
		log.Errorf("marshal log progress response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusOK)
}

func (handler *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.goals.cancel")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	goalID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid goal id", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, userID, goalID); err != nil {
		if errors.Is(err, ErrGoalNotFound) {
			pkg.WriteJSONError(w, "goal not found", http.StatusNotFound)
			return
		}
		log.Errorf("cancel goal %d for user %d: %s", goalID, userID, err)
		pkg.WriteJSONError(w, "failed to cancel goal", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"success": true}`)
}
