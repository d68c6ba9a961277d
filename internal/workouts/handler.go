package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nutritiontrax/nutritiontrax/internal/auth"
	"github.com/nutritiontrax/nutritiontrax/internal/calories"
	"github.com/nutritiontrax/nutritiontrax/internal/progress"
	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/metrics"
	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"
	"github.com/nutritiontrax/nutritiontrax/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Templates(ctx context.Context, userID int, search string) ([]Workout, error)
	CreateTemplate(ctx context.Context, workout Workout, exercises []TemplateExercise) (*Workout, error)
	UpdateTemplate(ctx context.Context, params UpdateTemplateParams) error
	DeleteTemplate(ctx context.Context, userID, templateID int) error
	Exercises(ctx context.Context, userID, workoutID int) ([]WorkoutExercise, error)
	CatalogInfo(ctx context.Context, exerciseIDs []int) (map[int]CatalogExercise, error)
	Log(ctx context.Context, workout Workout, entries []calories.Entry, perEntryKcal []float64) (int, error)
	Logged(ctx context.Context, filter LoggedFilter) ([]Workout, error)
	DeleteLogged(ctx context.Context, userID, workoutID int) error
}

type progressRepo interface {
	Latest(ctx context.Context, userID int) (*progress.Entry, error)
}

type Handler struct {
	repo           workoutsRepo
	progressRepo   progressRepo
	metricsManager *metrics.Manager
}

func NewHandler(
	repo workoutsRepo,
	progressRepo progressRepo,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		progressRepo:   progressRepo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	workoutsRouter := mainRouter.PathPrefix("/workouts").Subrouter()
	workoutsRouter.HandleFunc("", handler.HandleTemplates).Methods("GET", "OPTIONS").Name("workout-templates")
	workoutsRouter.HandleFunc("", handler.HandleCreateTemplate).Methods("POST", "OPTIONS").Name("create-workout-template")
	workoutsRouter.HandleFunc("/log", handler.HandleLog).Methods("POST", "OPTIONS").Name("log-workout")
	workoutsRouter.HandleFunc("/{id}", handler.HandleUpdateTemplate).Methods("PUT", "OPTIONS").Name("update-workout-template")
	workoutsRouter.HandleFunc("/{id}", handler.HandleDeleteTemplate).Methods("DELETE", "OPTIONS").Name("delete-workout-template")
	workoutsRouter.HandleFunc("/{id}/exercises", handler.HandleExercises).Methods("GET", "OPTIONS").Name("workout-exercises")

	loggedRouter := mainRouter.PathPrefix("/logged-workouts").Subrouter()
	loggedRouter.HandleFunc("", handler.HandleLogged).Methods("GET", "OPTIONS").Name("logged-workouts")
	loggedRouter.HandleFunc("/search", handler.HandleSearchLogged).Methods("GET", "OPTIONS").Name("search-logged-workouts")
	loggedRouter.HandleFunc("/{id}", handler.HandleDeleteLogged).Methods("DELETE", "OPTIONS").Name("delete-logged-workout")
	loggedRouter.HandleFunc("/{id}/exercises", handler.HandleExercises).Methods("GET", "OPTIONS").Name("logged-workout-exercises")
}

func (handler *Handler) HandleTemplates(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.templates")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	templates, err := handler.repo.Templates(ctx, userID, r.URL.Query().Get("search"))
	if err != nil {
		log.Errorf("failed to get workout templates for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get workouts", http.StatusInternalServerError)
		return
	}

	writeWorkoutsResponse(w, templates)
}

type createTemplateRequest struct {
	Name      string             `json:"name"`
	Notes     string             `json:"notes"`
	Exercises []TemplateExercise `json:"exercises"`
}

type createTemplateResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Workout Workout `json:"workout"`
}

func (handler *Handler) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.createTemplate")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("create workout template, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		pkg.WriteJSONError(w, "workout name is required", http.StatusBadRequest)
		return
	}

	createdWorkout, err := handler.repo.CreateTemplate(ctx, Workout{
		UserID: userID,
		Name:   req.Name,
		Notes:  req.Notes,
	}, req.Exercises)
	if err != nil {
		log.Errorf("failed to create workout template for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to create workout template", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(createTemplateResponse{
		Success: true,
		Message: "workout template created successfully",
		Workout: *createdWorkout,
	})
	if err != nil {
		log.Errorf("failed to marshal create template response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d created workout template %d [%s]", userID, createdWorkout.ID, createdWorkout.Name)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

type updateTemplateRequest struct {
	Name            *string            `json:"name"`
	Notes           *string            `json:"notes"`
	AddExercises    []TemplateExercise `json:"add_exercises"`
	RemoveExercises []int              `json:"remove_exercises"`
}

func (handler *Handler) HandleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.updateTemplate")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	templateID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid workout id", http.StatusBadRequest)
		return
	}

	var req updateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("update workout template, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	err = handler.repo.UpdateTemplate(ctx, UpdateTemplateParams{
		UserID:          userID,
		TemplateID:      templateID,
		Name:            req.Name,
		Notes:           req.Notes,
		AddExercises:    req.AddExercises,
		RemoveExercises: req.RemoveExercises,
	})
	if errors.Is(err, ErrWorkoutNotFound) {
		pkg.WriteJSONError(w, "workout template not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to update workout template %d for user %d: %s", templateID, userID, err)
		pkg.WriteJSONError(w, "failed to update workout template", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"success": true, "message": "workout template updated"}`)
}

func (handler *Handler) HandleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteTemplate")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	templateID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid workout id", http.StatusBadRequest)
		return
	}

	err = handler.repo.DeleteTemplate(ctx, userID, templateID)
	if errors.Is(err, ErrWorkoutNotFound) {
		pkg.WriteJSONError(w, "workout template not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to delete workout template %d for user %d: %s", templateID, userID, err)
		pkg.WriteJSONError(w, "failed to delete workout template", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d deleted workout template %d", userID, templateID)
	pkg.WriteJSONResponseOK(w, `{"success": true, "message": "workout template deleted"}`)
}

func (handler *Handler) HandleExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	workoutID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid workout id", http.StatusBadRequest)
		return
	}

	workoutExercises, err := handler.repo.Exercises(ctx, userID, workoutID)
	if errors.Is(err, ErrWorkoutNotFound) {
		pkg.WriteJSONError(w, "workout not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to get exercises of workout %d for user %d: %s", workoutID, userID, err)
		pkg.WriteJSONError(w, "failed to get workout exercises", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(struct {
		Exercises []WorkoutExercise `json:"exercises"`
	}{Exercises: workoutExercises})
	if err != nil {
		log.Errorf("failed to marshal workout exercises: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

type logWorkoutRequest struct {
	TemplateID  int              `json:"template_id"`
	Name        string           `json:"name"`
	Notes       string           `json:"notes"`
	WorkoutDate string           `json:"workout_date"`
	Exercises   []calories.Entry `json:"exercises"`
}

type logWorkoutResponse struct {
	Success       bool    `json:"success"`
	WorkoutID     int     `json:"workout_id"`
	TotalCalories float64 `json:"total_calories"`
}

// HandleLog validates and stores a logged workout. The whole submission is
// bounced if any entry fails validation, nothing is persisted in that case.
func (handler *Handler) HandleLog(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.log")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req logWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("log workout, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.TemplateID == 0 || req.Name == "" || req.WorkoutDate == "" {
		pkg.WriteJSONError(w, "template, name, and date are required", http.StatusBadRequest)
		return
	}

	exerciseIDs := make([]int, 0, len(req.Exercises))
	for _, e := range req.Exercises {
		exerciseIDs = append(exerciseIDs, e.ExerciseID)
	}
	catalogInfo, err := handler.repo.CatalogInfo(ctx, exerciseIDs)
	if err != nil {
		log.Errorf("failed to get catalog info for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to log workout", http.StatusInternalServerError)
		return
	}

	// catalog data overrides whatever the client sent, entries of unknown
	// exercises are dropped the same way unknown ids were skipped before
	entries := make([]calories.Entry, 0, len(req.Exercises))
	for _, e := range req.Exercises {
		info, ok := catalogInfo[e.ExerciseID]
		if !ok {
			log.Warnf("log workout for user %d: unknown exercise %d skipped", userID, e.ExerciseID)
			continue
		}
		e.Name = info.Name
		e.Category = info.Category
		e.CaloriesPerKg = info.CaloriesPerKg
		entries = append(entries, calories.Normalize(e))
	}

	if err := calories.Validate(entries); err != nil {
		var validationErr *calories.ValidationError
		if errors.As(err, &validationErr) {
			pkg.WriteJSONError(w, validationErr.Error(), http.StatusUnprocessableEntity)
			return
		}
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	bodyWeightLbs := calories.DefaultBodyWeightLbs
	latestProgress, err := handler.progressRepo.Latest(ctx, userID)
	switch {
	case err == nil:
		bodyWeightLbs = latestProgress.WeightLbs
	case errors.Is(err, progress.ErrNoEntries):
		// no measurements yet, keep the default
	default:
		log.Errorf("failed to get latest weight for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to log workout", http.StatusInternalServerError)
		return
	}

	totalCalories := calories.EstimateTotal(entries, bodyWeightLbs)
	perEntryKcal := make([]float64, len(entries))
	var totalDuration float64
	for i, e := range entries {
		perEntryKcal[i] = calories.Estimate(e, bodyWeightLbs)
		totalDuration += e.DurationMinutes
	}

	workoutID, err := handler.repo.Log(ctx, Workout{
		UserID:          userID,
		Name:            req.Name,
		Notes:           req.Notes,
		DurationMinutes: int(totalDuration),
		WorkoutDate:     &req.WorkoutDate,
		TotalCalories:   &totalCalories,
	}, entries, perEntryKcal)
	if err != nil {
		log.Errorf("failed to log workout for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to log workout", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterWorkoutsLogged.Inc()

	respJson, err := json.Marshal(logWorkoutResponse{
		Success:       true,
		WorkoutID:     workoutID,
		TotalCalories: totalCalories,
	})
	if err != nil {
		log.Errorf("failed to marshal log workout response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d logged workout %d, %.2f kcal", userID, workoutID, totalCalories)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleLogged(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.logged")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedWorkouts, err := handler.repo.Logged(ctx, LoggedFilter{UserID: userID})
	if err != nil {
		log.Errorf("failed to get logged workouts for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to get logged workouts", http.StatusInternalServerError)
		return
	}

	writeWorkoutsResponse(w, loggedWorkouts)
}

func (handler *Handler) HandleSearchLogged(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.searchLogged")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedWorkouts, err := handler.repo.Logged(ctx, LoggedFilter{
		UserID: userID,
		Name:   r.URL.Query().Get("name"),
		Date:   r.URL.Query().Get("date"),
	})
	if err != nil {
		log.Errorf("failed to search logged workouts for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to search logged workouts", http.StatusInternalServerError)
		return
	}

	writeWorkoutsResponse(w, loggedWorkouts)
}

func (handler *Handler) HandleDeleteLogged(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.deleteLogged")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	workoutID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid workout id", http.StatusBadRequest)
		return
	}

	err = handler.repo.DeleteLogged(ctx, userID, workoutID)
	if errors.Is(err, ErrWorkoutNotFound) {
		pkg.WriteJSONError(w, "workout not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to delete logged workout %d for user %d: %s", workoutID, userID, err)
		pkg.WriteJSONError(w, "failed to delete workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d deleted logged workout %d", userID, workoutID)
	pkg.WriteJSONResponseOK(w, `{"success": true, "message": "workout deleted successfully"}`)
}

func writeWorkoutsResponse(w http.ResponseWriter, workouts []Workout) {
	respJson, err := json.Marshal(struct {
		Workouts []Workout `json:"workouts"`
	}{Workouts: workouts})
	if err != nil {
		log.Errorf("failed to marshal workouts: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}
