package meals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/nutritiontrax/nutritiontrax/internal/auth"
	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/metrics"
	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"
	"github.com/nutritiontrax/nutritiontrax/internal/usda"
	"github.com/nutritiontrax/nutritiontrax/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type mealsRepo interface {
	Meals(ctx context.Context, filter ListFilter) ([]Meal, error)
	Add(ctx context.Context, meal Meal, foods []Food) (int, error)
	Reuse(ctx context.Context, meal Meal, foods []ReuseFood) (int, error)
	Update(ctx context.Context, params UpdateParams) error
	Delete(ctx context.Context, userID, mealID int) error
	SearchSharedFood(ctx context.Context, query string) (*Food, error)
}

type foodSearchClient interface {
	SearchFood(ctx context.Context, query string) (*usda.Food, error)
}

type Handler struct {
	repo           mealsRepo
	foodSearch     foodSearchClient
	metricsManager *metrics.Manager
}

func NewHandler(
	repo mealsRepo,
	foodSearch foodSearchClient,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		foodSearch:     foodSearch,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mealsRouter := mainRouter.PathPrefix("/meals").Subrouter()
	mealsRouter.HandleFunc("/history", handler.HandleHistory).Methods("GET", "OPTIONS").Name("meals-history")
	mealsRouter.HandleFunc("/logged", handler.HandleLogged).Methods("GET", "OPTIONS").Name("logged-meals")
	mealsRouter.HandleFunc("/add", handler.HandleAdd).Methods("POST", "OPTIONS").Name("add-meal")
	mealsRouter.HandleFunc("/reuse", handler.HandleReuse).Methods("POST", "OPTIONS").Name("reuse-meal")
	mealsRouter.HandleFunc("/edit", handler.HandleEdit).Methods("PUT", "OPTIONS").Name("edit-meal")
	mealsRouter.HandleFunc("/delete", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-meal")
	mealsRouter.HandleFunc("/food/search", handler.HandleFoodSearch).Methods("GET", "OPTIONS").Name("food-search")
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.history")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	// only original meals, reused instances are left out of the history
	handler.writeMeals(ctx, w, ListFilter{
		UserID:        userID,
		Search:        r.URL.Query().Get("search"),
		OriginalsOnly: true,
	})
}

func (handler *Handler) HandleLogged(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.logged")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	handler.writeMeals(ctx, w, ListFilter{
		UserID: userID,
		Search: r.URL.Query().Get("search"),
	})
}

func (handler *Handler) writeMeals(ctx context.Context, w http.ResponseWriter, filter ListFilter) {
	userMeals, err := handler.repo.Meals(ctx, filter)
	if err != nil {
		log.Errorf("failed to get meals for user %d: %s", filter.UserID, err)
		pkg.WriteJSONError(w, "failed to get meals", http.StatusInternalServerError)
		return
	}

	mealsJson, err := json.Marshal(userMeals)
	if err != nil {
		log.Errorf("failed to marshal meals: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, mealsJson, http.StatusOK)
}

type addFoodRequest struct {
	Name         string   `json:"name"`
	Calories     *float64 `json:"calories"`
	Protein      *float64 `json:"protein"`
	Carbs        *float64 `json:"carbs"`
	TotalFat     *float64 `json:"total_fat"`
	SaturatedFat *float64 `json:"saturated_fat"`
	Cholesterol  *float64 `json:"cholesterol"`
	Sodium       *float64 `json:"sodium"`
	Sugar        *float64 `json:"sugar"`
	Amount       *float64 `json:"food_amount"`
}

func (f *addFoodRequest) validate() error {
	switch {
	case f.Name == "":
		return errors.New("missing required field in food: name")
	case f.Calories == nil:
		return errors.New("missing required field in food: calories")
	case f.Protein == nil:
		return errors.New("missing required field in food: protein")
	case f.Carbs == nil:
		return errors.New("missing required field in food: carbs")
	case f.TotalFat == nil:
		return errors.New("missing required field in food: total_fat")
	case f.SaturatedFat == nil:
		return errors.New("missing required field in food: saturated_fat")
	case f.Amount == nil:
		return errors.New("missing required field in food: food_amount")
	}
	return nil
}

type addMealRequest struct {
	Name     string           `json:"name"`
	MealType string           `json:"meal_type"`
	MealDate string           `json:"meal_date"`
	Foods    []addFoodRequest `json:"foods"`
}

type mealSavedResponse struct {
	Message string `json:"message"`
	MealID  int    `json:"meal_id"`
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.add")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req addMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add meal, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.MealType == "" {
		pkg.WriteJSONError(w, "missing meal name or meal type", http.StatusBadRequest)
		return
	}
	if len(req.Foods) == 0 {
		pkg.WriteJSONError(w, "no foods provided", http.StatusBadRequest)
		return
	}

	// the whole meal is rejected before anything is stored
	foods := make([]Food, 0, len(req.Foods))
	for _, f := range req.Foods {
		if err := f.validate(); err != nil {
			pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		foods = append(foods, Food{
			Description:  f.Name,
			Calories:     *f.Calories,
			Protein:      *f.Protein,
			Carbs:        *f.Carbs,
			TotalFat:     *f.TotalFat,
			SaturatedFat: *f.SaturatedFat,
			Cholesterol:  f.Cholesterol,
			Sodium:       f.Sodium,
			Sugar:        f.Sugar,
			Amount:       *f.Amount,
		})
	}

	mealID, err := handler.repo.Add(ctx, Meal{
		UserID: userID,
		Date:   ParseMealDate(req.MealDate),
		Type:   req.MealType,
		Name:   req.Name,
	}, foods)
	if err != nil {
		log.Errorf("failed to add meal for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to add meal", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterMealsLogged.Inc()

	respJson, err := json.Marshal(mealSavedResponse{
		Message: "meal added successfully",
		MealID:  mealID,
	})
	if err != nil {
		log.Errorf("failed to marshal add meal response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d added meal %d [%s]", userID, mealID, req.Name)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

type reuseFoodRequest struct {
	FoodID       int      `json:"food_id"`
	Amount       float64  `json:"food_amount"`
	Description  *string  `json:"description"`
	Calories     *float64 `json:"calories"`
	Protein      *float64 `json:"protein"`
	Carbs        *float64 `json:"carbs"`
	TotalFat     *float64 `json:"total_fat"`
	SaturatedFat *float64 `json:"saturated_fat"`
	Cholesterol  *float64 `json:"cholesterol"`
	Sodium       *float64 `json:"sodium"`
	Sugar        *float64 `json:"sugar"`
}

type reuseMealRequest struct {
	MealID   *int               `json:"meal_id"`
	Name     string             `json:"name"`
	MealType string             `json:"meal_type"`
	MealDate string             `json:"meal_date"`
	Foods    []reuseFoodRequest `json:"foods"`
}

func (handler *Handler) HandleReuse(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.reuse")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req reuseMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("reuse meal, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if len(req.Foods) == 0 {
		pkg.WriteJSONError(w, "no foods provided", http.StatusBadRequest)
		return
	}

	mealType := req.MealType
	if mealType == "" {
		mealType = "Custom"
	}

	foods := make([]ReuseFood, 0, len(req.Foods))
	for _, f := range req.Foods {
		reuseFood := ReuseFood{
			FoodID: f.FoodID,
			Amount: f.Amount,
		}
		// search results carry their own nutrition data and become shared foods
		if f.Description != nil && f.Calories != nil {
			reuseFood.NewFood = &Food{
				Description:  *f.Description,
				Calories:     *f.Calories,
				Protein:      floatOrZero(f.Protein),
				Carbs:        floatOrZero(f.Carbs),
				TotalFat:     floatOrZero(f.TotalFat),
				SaturatedFat: floatOrZero(f.SaturatedFat),
				Cholesterol:  f.Cholesterol,
				Sodium:       f.Sodium,
				Sugar:        f.Sugar,
			}
		}
		foods = append(foods, reuseFood)
	}

	mealID, err := handler.repo.Reuse(ctx, Meal{
		UserID:       userID,
		Date:         ParseMealDate(req.MealDate),
		Type:         mealType,
		Name:         req.Name,
		ParentMealID: req.MealID,
	}, foods)
	if err != nil {
		if errors.Is(err, ErrMealNotFound) {
			pkg.WriteJSONError(w, "meal not found", http.StatusNotFound)
			return
		}
		if errors.Is(err, ErrFoodNotFound) {
			pkg.WriteJSONError(w, "food not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to reuse meal for user %d: %s", userID, err)
		pkg.WriteJSONError(w, "failed to log meal", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterMealsLogged.Inc()

	respJson, err := json.Marshal(mealSavedResponse{
		Message: "meal logged successfully",
		MealID:  mealID,
	})
	if err != nil {
		log.Errorf("failed to marshal reuse meal response: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d re-logged meal %d", userID, mealID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

type editFoodAmount struct {
	FoodID int     `json:"food_id"`
	Amount float64 `json:"food_amount"`
}

type editMealRequest struct {
	MealID   int              `json:"meal_id"`
	MealDate *string          `json:"meal_date"`
	Name     *string          `json:"name"`
	MealType *string          `json:"meal_type"`
	Foods    []editFoodAmount `json:"foods"`
}

func (handler *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.edit")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	var req editMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("edit meal, unmarshal json params: %s", err)
		pkg.WriteJSONError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if req.MealID == 0 {
		pkg.WriteJSONError(w, "missing meal_id", http.StatusBadRequest)
		return
	}

	var mealDate *string
	if req.MealDate != nil {
		normalized := ParseMealDate(*req.MealDate)
		mealDate = &normalized
	}

	amounts := make(map[int]float64)
	for _, f := range req.Foods {
		if f.FoodID != 0 && f.Amount > 0 {
			amounts[f.FoodID] = f.Amount
		}
	}

	err := handler.repo.Update(ctx, UpdateParams{
		UserID:  userID,
		MealID:  req.MealID,
		Date:    mealDate,
		Name:    req.Name,
		Type:    req.MealType,
		Amounts: amounts,
	})
	if errors.Is(err, ErrMealNotFound) {
		pkg.WriteJSONError(w, "meal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to update meal %d for user %d: %s", req.MealID, userID, err)
		pkg.WriteJSONError(w, "failed to update meal", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, `{"message": "meal updated successfully"}`)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.delete")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	mealID, err := strconv.Atoi(r.URL.Query().Get("meal_id"))
	if err != nil {
		pkg.WriteJSONError(w, "missing meal_id", http.StatusBadRequest)
		return
	}

	err = handler.repo.Delete(ctx, userID, mealID)
	if errors.Is(err, ErrMealNotFound) {
		pkg.WriteJSONError(w, "meal not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("failed to delete meal %d for user %d: %s", mealID, userID, err)
		pkg.WriteJSONError(w, "failed to delete meal", http.StatusInternalServerError)
		return
	}

	log.Debugf("user %d deleted meal %d", userID, mealID)
	pkg.WriteJSONResponseOK(w, `{"message": "meal deleted successfully"}`)
}

// HandleFoodSearch looks the query up in the shared food catalog first and
// falls back to the USDA FoodData Central API.
func (handler *Handler) HandleFoodSearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.meals.foodSearch")
	defer span.End()

	if _, ok := auth.UserIDFromContext(ctx); !ok {
		pkg.WriteJSONError(w, "no can do", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		pkg.WriteJSONError(w, "missing search query", http.StatusBadRequest)
		return
	}

	handler.metricsManager.CounterFoodSearches.Inc()

	sharedFood, err := handler.repo.SearchSharedFood(ctx, query)
	if err == nil {
		handler.writeFoodSearchResult(w, sharedFood)
		return
	}
	if !errors.Is(err, ErrFoodNotFound) {
		log.Errorf("failed to search shared foods for %q: %s", query, err)
		pkg.WriteJSONError(w, "failed to search foods", http.StatusInternalServerError)
		return
	}

	usdaFood, err := handler.foodSearch.SearchFood(ctx, query)
	if errors.Is(err, usda.ErrFoodNotFound) {
		pkg.WriteJSONError(w, "could not find food, try again", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("food data central search for %q: %s", query, err)
		pkg.WriteJSONError(w, "failed to search foods", http.StatusInternalServerError)
		return
	}

	handler.writeFoodSearchResult(w, &Food{
		ID:           usdaFood.FoodID,
		Description:  usdaFood.Description,
		Calories:     usdaFood.Calories,
		Protein:      usdaFood.Protein,
		Carbs:        usdaFood.Carbs,
		TotalFat:     usdaFood.TotalFat,
		SaturatedFat: usdaFood.SaturatedFat,
		Cholesterol:  usdaFood.Cholesterol,
		Sodium:       usdaFood.Sodium,
		Sugar:        usdaFood.Sugar,
	})
}

func (handler *Handler) writeFoodSearchResult(w http.ResponseWriter, food *Food) {
	foodJson, err := json.Marshal(food)
	if err != nil {
		log.Errorf("failed to marshal food search result: %s", err)
		pkg.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, foodJson, http.StatusOK)
}
