package track

import (
	"context"

	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// DailyCaloriesEaten sums logged food calories per day, scaled by the eaten
// amount per 100g.
func (r *Repo) DailyCaloriesEaten(ctx context.Context, userID int) (_ []DailyValue, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.track.dailyCaloriesEaten")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	return r.dailySeries(ctx, userID,
		`SELECT to_char(m.meal_date::date, 'YYYY-MM-DD'),
				COALESCE(SUM(f.calories * mf.food_amount / 100), 0)
			FROM meals m
			LEFT JOIN meal_foods mf ON m.meal_id = mf.meal_id
			LEFT JOIN food f ON mf.food_id = f.food_id
			WHERE m.user_id = $1
		GROUP BY m.meal_date::date
		ORDER BY m.meal_date::date ASC;`)
}

// DailyCaloriesBurned sums workout calorie totals per day.
func (r *Repo) DailyCaloriesBurned(ctx context.Context, userID int) (_ []DailyValue, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.track.dailyCaloriesBurned")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	return r.dailySeries(ctx, userID,
		`SELECT to_char(w.workout_date::date, 'YYYY-MM-DD'),
				COALESCE(SUM(w.total_calories_burned), 0)
			FROM workouts w
			WHERE w.user_id = $1 AND w.is_template = FALSE
		GROUP BY w.workout_date::date
		ORDER BY w.workout_date::date ASC;`)
}

func (r *Repo) dailySeries(ctx context.Context, userID int, query string) ([]DailyValue, error) {
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	series := make([]DailyValue, 0)
	for rows.Next() {
		var v DailyValue
		if err := rows.Scan(&v.Date, &v.Value); err != nil {
			return nil, err
		}
		series = append(series, v)
	}

	return series, nil
}

// DailyMacros sums macros per day the same way calories are summed.
func (r *Repo) DailyMacros(ctx context.Context, userID int) (_ []MacrosPoint, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.track.dailyMacros")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT to_char(m.meal_date::date, 'YYYY-MM-DD'),
				COALESCE(SUM(f.protein * mf.food_amount / 100), 0),
				COALESCE(SUM(f.carbs * mf.food_amount / 100), 0),
				COALESCE(SUM(f.total_fat * mf.food_amount / 100), 0),
				COALESCE(SUM(f.saturated_fat * mf.food_amount / 100), 0)
			FROM meals m
			LEFT JOIN meal_foods mf ON m.meal_id = mf.meal_id
			LEFT JOIN food f ON mf.food_id = f.food_id
			WHERE m.user_id = $1
		GROUP BY m.meal_date::date
		ORDER BY m.meal_date::date ASC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	macros := make([]MacrosPoint, 0)
	for rows.Next() {
		var m MacrosPoint
		if err := rows.Scan(&m.Date, &m.Protein, &m.Carbs, &m.TotalFat, &m.SaturatedFat); err != nil {
			return nil, err
		}
		macros = append(macros, m)
	}

	return macros, nil
}
