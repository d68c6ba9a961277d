package exercises

import (
	"context"
	"errors"
	"fmt"

	"github.com/nutritiontrax/nutritiontrax/internal/calories"
	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrExerciseNotFound = errors.New("exercise not found")

type SearchParams struct {
	UserID        int
	Name          string
	Category      calories.Category
	SubcategoryID int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Subcategories(ctx context.Context) (_ []Subcategory, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.subcategories")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT subcategory_id, category_id, name
			FROM exercise_subcategories
		ORDER BY category_id, subcategory_id;`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	subcategories := make([]Subcategory, 0)
	for rows.Next() {
		var s Subcategory
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name); err != nil {
			return nil, err
		}
		subcategories = append(subcategories, s)
	}

	return subcategories, nil
}

func (r *Repo) Add(ctx context.Context, exercise Exercise, subcategoryIDs []int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := tx.QueryRow(
		ctx,
		`INSERT INTO exercises (exercise_key, exercise_type, category, calories_per_kg, user_id)
			VALUES ($1, $2, $3, $4, $5)
		RETURNING exercise_id;`,
		exercise.Key, exercise.Name, exercise.Category, exercise.CaloriesPerKg, exercise.UserID,
	).Scan(&exercise.ID); err != nil {
		return nil, err
	}

	for _, subID := range subcategoryIDs {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO exercise_subcategory_links (exercise_id, subcategory_id) VALUES ($1, $2);`,
			exercise.ID, subID,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", exercise.ID))

	return &exercise, nil
}

// ClosestCardioKcal finds the per-kg coefficient of the shared cardio catalog
// exercise whose key is the closest match for the given one. Shortest matching
// key wins, i.e. "running" beats "running_uphill".
func (r *Repo) ClosestCardioKcal(ctx context.Context, exerciseKey string) (_ float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.closestCardioKcal")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.key", exerciseKey))

	var kcal float64
	err = r.db.QueryRow(
		ctx,
		`SELECT calories_per_kg
			FROM exercises
			WHERE user_id IS NULL AND exercise_key ILIKE '%' || $1 || '%'
		ORDER BY LENGTH(exercise_key) ASC
		LIMIT 1;`,
		exerciseKey,
	).Scan(&kcal)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrExerciseNotFound
	}
	if err != nil {
		return 0, err
	}

	return kcal, nil
}

func (r *Repo) Search(ctx context.Context, params SearchParams) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.search")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `SELECT e.exercise_id, e.exercise_key, e.exercise_type, e.category, e.calories_per_kg
		FROM exercises e
		WHERE e.user_id = $1`
	args := []interface{}{params.UserID}

	if params.Name != "" {
		args = append(args, "%"+params.Name+"%")
		query += fmt.Sprintf(" AND e.exercise_type ILIKE $%d", len(args))
	}
	if params.Category != "" {
		args = append(args, params.Category)
		query += fmt.Sprintf(" AND e.category = $%d", len(args))
	}
	if params.SubcategoryID > 0 {
		args = append(args, params.SubcategoryID)
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM exercise_subcategory_links esl
			WHERE esl.exercise_id = e.exercise_id AND esl.subcategory_id = $%d
		)`, len(args))
	}
	query += " ORDER BY e.exercise_type ASC;"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	exercises, err := r.rows2exercises(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachSubcategories(ctx, exercises); err != nil {
		return nil, err
	}

	return exercises, nil
}

func (r *Repo) Update(ctx context.Context, exercise Exercise, subcategoryIDs []int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exercise.ID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(
		ctx,
		`UPDATE exercises
			SET exercise_key = $1, exercise_type = $2, category = $3, calories_per_kg = $4
		WHERE exercise_id = $5 AND user_id = $6;`,
		exercise.Key, exercise.Name, exercise.Category, exercise.CaloriesPerKg, exercise.ID, exercise.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}

	if _, err := tx.Exec(
		ctx,
		`DELETE FROM exercise_subcategory_links WHERE exercise_id = $1;`,
		exercise.ID,
	); err != nil {
		return err
	}

	for _, subID := range subcategoryIDs {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO exercise_subcategory_links (exercise_id, subcategory_id) VALUES ($1, $2);`,
			exercise.ID, subID,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM exercises WHERE exercise_id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}

	return nil
}

func (r *Repo) rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	exercises := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(&e.ID, &e.Key, &e.Name, &e.Category, &e.CaloriesPerKg); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}
	return exercises, nil
}

func (r *Repo) attachSubcategories(ctx context.Context, exercises []Exercise) error {
	if len(exercises) == 0 {
		return nil
	}

	ids := make([]int, 0, len(exercises))
	for i := range exercises {
		ids = append(ids, exercises[i].ID)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT esl.exercise_id, esc.subcategory_id, esc.category_id, esc.name
			FROM exercise_subcategory_links esl
			JOIN exercise_subcategories esc ON esl.subcategory_id = esc.subcategory_id
		WHERE esl.exercise_id = ANY($1);`,
		ids,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return err
	}

	subsByExercise := make(map[int][]Subcategory)
	for rows.Next() {
		var exerciseID int
		var s Subcategory
		if err := rows.Scan(&exerciseID, &s.ID, &s.CategoryID, &s.Name); err != nil {
			return err
		}
		subsByExercise[exerciseID] = append(subsByExercise[exerciseID], s)
	}

	for i := range exercises {
		exercises[i].Subcategories = subsByExercise[exercises[i].ID]
	}

	return nil
}
