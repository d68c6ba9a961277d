package exercises

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nutritiontrax/nutritiontrax/internal/auth"
	"github.com/nutritiontrax/nutritiontrax/internal/calories"
	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"
	"github.com/nutritiontrax/nutritiontrax/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type exercisesRepo interface {
	Subcategories(ctx context.Context) ([]Subcategory, error)
	Add(ctx context.Context, exercise Exercise, subcategoryIDs []int) (*Exercise, error)
	ClosestCardioKcal(ctx context.Context, exerciseKey string) (float64, error)
	Search(ctx context.Context, params SearchParams) ([]Exercise, error)
	Update(ctx context.Context, exercise Exercise, subcategoryIDs []int) error
	Delete(ctx context.Context, id, userID int) error
}

type Handler struct {
	repo exercisesRepo
}

func NewHandler(repo exercisesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	exercisesRouter := mainRouter.PathPrefix("/exercises").Subrouter()
	exercisesRouter.HandleFunc("/subcategories", handler.HandleSubcategories).Methods("GET", "OPTIONS").Name("exercise-subcategories")
	exercisesRouter.HandleFunc("/add", handler.HandleAdd).Methods("POST", "OPTIONS").Name("add-exercise")
	exercisesRouter.HandleFunc("/search", handler.HandleSearch).Methods("GET", "OPTIONS").Name("search-exercises")
	exercisesRouter.HandleFunc("/edit/{id}", handler.HandleEdit).Methods("PUT", "OPTIONS").Name("edit-exercise")
	exercisesRouter.HandleFunc("/delete/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-exercise")
}

func (handler *Handler) HandleSubcategories(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.subcategories")
	defer span.End()

	subcategories, err := handler.repo.Subcategories(ctx)
	if err != nil {
		log.Errorf("failed to get exercise subcategories: %s", err)
		pkg.WriteJSONError(w, "failed to get subcategories", http.StatusInternalServerError)
		return
	}

	// category id -> subcategories of that category
	grouped := make(map[int][]Subcategory)
	for _, s := range subcategories {
		grouped[s.CategoryID] = append(grouped[s.CategoryID], s)
	}

	groupedJson, err := json.Marshal(grouped)
	if err != nil {
		log.Errorf("failed to marshal exercise subcategories: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, groupedJson, http.StatusOK)
}

type addExerciseRequest struct {
	Name           string   `json:"name"`
	CategoryID     int      `json:"category_id"`
	SubcategoryIDs []int    `json:"subcategory_ids"`
	AutoKcal       *bool    `json:"auto_kcal"`
	KcalPerKg      *float64 `json:"kcal_per_kg"`
}

type addExerciseResponse struct {
	Success    bool   `json:"success"`
	ExerciseID int    `json:"exercise_id"`
	Message    string `json:"message"`
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.add")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req addExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add exercise, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.CategoryID == 0 {
		pkg.WriteJSONError(w, "missing name or category", http.StatusBadRequest)
		return
	}

	category, ok := CategoryByID(req.CategoryID)
	if !ok {
		pkg.WriteJSONError(w, "invalid category", http.StatusBadRequest)
		return
	}

	exerciseKey := ExerciseKey(req.Name)

	// the coefficient is estimated unless the user typed one in
	autoKcal := req.AutoKcal == nil || *req.AutoKcal
	var kcalPerKg float64
	if autoKcal {
		var err error
		kcalPerKg, err = handler.autoKcal(ctx, category, exerciseKey)
		if err != nil {
			log.Errorf("failed to estimate kcal for %q: %s", req.Name, err)
			pkg.WriteJSONError(w, "failed to add exercise", http.StatusInternalServerError)
			return
		}
	} else {
		if req.KcalPerKg == nil || *req.KcalPerKg <= 0 {
			pkg.WriteJSONError(w, "kcal_per_kg must be a positive number", http.StatusBadRequest)
			return
		}
		kcalPerKg = *req.KcalPerKg
	}

	addedExercise, err := handler.repo.Add(ctx, Exercise{
		Key:           exerciseKey,
		Name:          req.Name,
		Category:      category,
		CaloriesPerKg: kcalPerKg,
		UserID:        &userID,
	}, req.SubcategoryIDs)
	if err != nil {
		log.Errorf("failed to add exercise %q for user %d: %s", req.Name, userID, err)
		pkg.WriteJSONError(w, "failed to add exercise", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(addExerciseResponse{
		Success:    true,
		ExerciseID: addedExercise.ID,
		Message:    fmt.Sprintf("exercise %q created successfully", req.Name),
	})
	if err != nil {
		log.Errorf("failed to marshal add exercise response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d added exercise %d [%s]", userID, addedExercise.ID, exerciseKey)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (handler *Handler) autoKcal(ctx context.Context, category calories.Category, exerciseKey string) (float64, error) {
	if category.IsStrength() {
		return DefaultStrengthKcal(category), nil
	}

	kcal, err := handler.repo.ClosestCardioKcal(ctx, exerciseKey)
	if errors.Is(err, ErrExerciseNotFound) {
		return fallbackCardioKcalPerKg, nil
	}
	if err != nil {
		return 0, err
	}
	return kcal, nil
}

func (handler *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.search")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	params := SearchParams{
		UserID: userID,
		Name:   r.URL.Query().Get("name"),
	}

	if categoryIDStr := r.URL.Query().Get("category_id"); categoryIDStr != "" {
		categoryID, err := strconv.Atoi(categoryIDStr)
		if err != nil {
			pkg.WriteJSONError(w, "invalid category_id", http.StatusBadRequest)
			return
		}
		category, ok := CategoryByID(categoryID)
		if !ok {
			pkg.WriteJSONError(w, "invalid category_id", http.StatusBadRequest)
			return
		}
		params.Category = category
	}

	if subIDStr := r.URL.Query().Get("subcategory_id"); subIDStr != "" {
		subID, err := strconv.Atoi(subIDStr)
		if err != nil {
			pkg.WriteJSONError(w, "invalid subcategory_id", http.StatusBadRequest)
			return
		}
		params.SubcategoryID = subID
	}

	foundExercises, err := handler.repo.Search(ctx, params)
	if err != nil {
		log.Errorf("failed to search exercises for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to search exercises", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(struct {
		Exercises []Exercise `json:"exercises"`
	}{Exercises: foundExercises})
	if err != nil {
		log.Errorf("failed to marshal exercises: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

type editExerciseRequest struct {
	Name           string  `json:"name"`
	CategoryID     int     `json:"category_id"`
	SubcategoryIDs []int   `json:"subcategory_ids"`
	KcalPerKg      float64 `json:"kcal_per_kg"`
}

func (handler *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.edit")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid exercise id", http.StatusBadRequest)
		return
	}

	var req editExerciseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("edit exercise, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.CategoryID == 0 {
		pkg.WriteJSONError(w, "missing name or category", http.StatusBadRequest)
		return
	}

	category, ok := CategoryByID(req.CategoryID)
	if !ok {
		pkg.WriteJSONError(w, "invalid category", http.StatusBadRequest)
		return
	}

	err = handler.repo.Update(ctx, Exercise{
		ID:            id,
		Key:           ExerciseKey(req.Name),
		Name:          req.Name,
		Category:      category,
		CaloriesPerKg: req.KcalPerKg,
		UserID:        &userID,
	}, req.SubcategoryIDs)
	if errors.Is(err, ErrExerciseNotFound) {
		pkg.WriteJSONError(w, "exercise not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to update exercise %d for user %d: %s", id, userID, err)
		pkg.WriteJSONError(w, "failed to update exercise", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"success": true, "message": "exercise updated successfully"}`)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.exercises.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		pkg.WriteJSONError(w, "invalid exercise id", http.StatusBadRequest)
		return
	}

	err = handler.repo.Delete(ctx, id, userID)
	if errors.Is(err, ErrExerciseNotFound) {
		pkg.WriteJSONError(w, "exercise not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to delete exercise %d for user %d: %s", id, userID, err)
		pkg.WriteJSONError(w, "failed to delete exercise", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d deleted exercise %d", userID, id)
	pkg.WriteJSONResponseOK(w, `{"success": true, "message": "exercise deleted successfully"}`)
}
