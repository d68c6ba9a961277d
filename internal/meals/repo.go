package meals

import (
	"context"
	"errors"
	"fmt"

	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"
	"github.com/nutritiontrax/nutritiontrax/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrMealNotFound = errors.New("meal not found")
	ErrFoodNotFound = errors.New("food not found")
)

type ListFilter struct {
	UserID int
	Search string
	// OriginalsOnly excludes reused meal instances
	OriginalsOnly bool
}

// ReuseFood attaches a food to a reused meal: either an existing food row by
// id, or a fresh food from a search result which gets stored as shared.
type ReuseFood struct {
	FoodID  int
	Amount  float64
	NewFood *Food
}

type UpdateParams struct {
	UserID int
	MealID int
	Date   *string
	Name   *string
	Type   *string
	// Amounts maps food id to its new amount
	Amounts map[int]float64
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Meals(ctx context.Context, filter ListFilter) (_ []Meal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.meals")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `SELECT meal_id, to_char(meal_date, 'YYYY-MM-DD'), meal_type, meal_name, parent_meal_id
		FROM meals
		WHERE user_id = $1`
	args := []interface{}{filter.UserID}
	if filter.OriginalsOnly {
		query += " AND parent_meal_id IS NULL"
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (meal_name ILIKE $%d OR meal_type ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY meal_date DESC;"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	userMeals := make([]Meal, 0)
	for rows.Next() {
		m := Meal{UserID: filter.UserID}
		if err := rows.Scan(&m.ID, &m.Date, &m.Type, &m.Name, &m.ParentMealID); err != nil {
			return nil, err
		}
		userMeals = append(userMeals, m)
	}

	if err := r.attachFoods(ctx, userMeals); err != nil {
		return nil, err
	}

	return userMeals, nil
}

func (r *Repo) attachFoods(ctx context.Context, userMeals []Meal) error {
	if len(userMeals) == 0 {
		return nil
	}

	mealIDs := make([]int, 0, len(userMeals))
	for i := range userMeals {
		mealIDs = append(mealIDs, userMeals[i].ID)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT mf.meal_id, f.food_id, f.description, f.calories, f.protein, f.carbs,
				f.total_fat, f.saturated_fat, f.cholesterol, f.sodium, f.sugar,
				f.user_id, mf.food_amount
			FROM meal_foods mf
			JOIN food f ON f.food_id = mf.food_id
		WHERE mf.meal_id = ANY($1);`,
		mealIDs,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return err
	}

	foodsByMeal := make(map[int][]Food)
	for rows.Next() {
		var mealID int
		var f Food
		if err := rows.Scan(
			&mealID, &f.ID, &f.Description, &f.Calories, &f.Protein, &f.Carbs,
			&f.TotalFat, &f.SaturatedFat, &f.Cholesterol, &f.Sodium, &f.Sugar,
			&f.UserID, &f.Amount,
		); err != nil {
			return err
		}
		foodsByMeal[mealID] = append(foodsByMeal[mealID], f)
	}

	for i := range userMeals {
		foods := foodsByMeal[userMeals[i].ID]
		if foods == nil {
			foods = make([]Food, 0)
		}
		userMeals[i].Foods = foods
	}

	return nil
}

// Add stores a meal with its user-owned custom foods in one transaction.
func (r *Repo) Add(ctx context.Context, meal Meal, foods []Food) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var mealID int
	if err := tx.QueryRow(
		ctx,
		`INSERT INTO meals (user_id, meal_date, meal_type, meal_name)
			VALUES ($1, $2, $3, $4)
		RETURNING meal_id;`,
		meal.UserID, meal.Date, meal.Type, meal.Name,
	).Scan(&mealID); err != nil {
		return 0, err
	}

	for _, f := range foods {
		var foodID int
		if err := tx.QueryRow(
			ctx,
			`INSERT INTO food
				(description, calories, protein, carbs, total_fat, saturated_fat, cholesterol, sodium, sugar, user_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING food_id;`,
			f.Description, f.Calories, f.Protein, f.Carbs,
			f.TotalFat, f.SaturatedFat, f.Cholesterol, f.Sodium, f.Sugar,
			meal.UserID,
		).Scan(&foodID); err != nil {
			return 0, err
		}

		if _, err := tx.Exec(
			ctx,
			`INSERT INTO meal_foods (meal_id, food_id, food_amount) VALUES ($1, $2, $3);`,
			mealID, foodID, f.Amount,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("meal.id", mealID))

	return mealID, nil
}

// Reuse re-logs a meal instance. Foods from search results are stored as
// shared rows without an owner, existing foods are just linked again.
func (r *Repo) Reuse(ctx context.Context, meal Meal, foods []ReuseFood) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.reuse")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var mealID int
	if err := tx.QueryRow(
		ctx,
		`INSERT INTO meals (user_id, meal_date, meal_type, meal_name, parent_meal_id)
			VALUES ($1, $2, $3, $4, $5)
		RETURNING meal_id;`,
		meal.UserID, meal.Date, meal.Type, meal.Name, meal.ParentMealID,
	).Scan(&mealID); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return 0, ErrMealNotFound
		}
		return 0, err
	}

	for _, f := range foods {
		foodID := f.FoodID
		if f.NewFood != nil {
			if err := tx.QueryRow(
				ctx,
				`INSERT INTO food
					(description, calories, protein, carbs, total_fat, saturated_fat, cholesterol, sodium, sugar, user_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULL)
				RETURNING food_id;`,
				f.NewFood.Description, f.NewFood.Calories, f.NewFood.Protein, f.NewFood.Carbs,
				f.NewFood.TotalFat, f.NewFood.SaturatedFat, f.NewFood.Cholesterol, f.NewFood.Sodium, f.NewFood.Sugar,
			).Scan(&foodID); err != nil {
				return 0, err
			}
		}

		if _, err := tx.Exec(
			ctx,
			`INSERT INTO meal_foods (meal_id, food_id, food_amount) VALUES ($1, $2, $3);`,
			mealID, foodID, f.Amount,
		); err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return 0, ErrFoodNotFound
			}
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("meal.id", mealID))

	return mealID, nil
}

func (r *Repo) Update(ctx context.Context, params UpdateParams) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("meal.id", params.MealID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var mealID int
	err = tx.QueryRow(
		ctx,
		`SELECT meal_id FROM meals WHERE meal_id = $1 AND user_id = $2;`,
		params.MealID, params.UserID,
	).Scan(&mealID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrMealNotFound
	}
	if err != nil {
		return err
	}

	if params.Date != nil || params.Name != nil || params.Type != nil {
		if _, err := tx.Exec(
			ctx,
			`UPDATE meals SET
				meal_date = COALESCE($1::date, meal_date),
				meal_name = COALESCE($2, meal_name),
				meal_type = COALESCE($3, meal_type)
			WHERE meal_id = $4;`,
			params.Date, params.Name, params.Type, params.MealID,
		); err != nil {
			return err
		}
	}

	for foodID, amount := range params.Amounts {
		if _, err := tx.Exec(
			ctx,
			`UPDATE meal_foods SET food_amount = $1 WHERE meal_id = $2 AND food_id = $3;`,
			amount, params.MealID, foodID,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repo) Delete(ctx context.Context, userID, mealID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("meal.id", mealID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM meals WHERE meal_id = $1 AND user_id = $2;`,
		mealID, userID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrMealNotFound
	}

	return nil
}

// SearchSharedFood looks the query up in the shared food catalog.
func (r *Repo) SearchSharedFood(ctx context.Context, query string) (_ *Food, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.meals.searchSharedFood")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("query", query))

	var f Food
	err = r.db.QueryRow(
		ctx,
		`SELECT food_id, description, calories, protein, carbs,
				total_fat, saturated_fat, cholesterol, sodium, sugar
			FROM food
			WHERE user_id IS NULL AND description ILIKE '%' || $1 || '%'
		LIMIT 1;`,
		query,
	).Scan(
		&f.ID, &f.Description, &f.Calories, &f.Protein, &f.Carbs,
		&f.TotalFat, &f.SaturatedFat, &f.Cholesterol, &f.Sodium, &f.Sugar,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFoodNotFound
	}
	if err != nil {
		return nil, err
	}

	return &f, nil
}
