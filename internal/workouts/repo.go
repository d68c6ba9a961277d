package workouts

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

var ErrWorkoutNotFound = errors.New("workout not found")

type UpdateTemplateParams struct {
	UserID          int
	TemplateID      int
	Name            *string
	Notes           *string
	AddExercises    []TemplateExercise
	RemoveExercises []int
}

type LoggedFilter struct {
	UserID int
	Name   string
	// Date filters on the workout date, formatted YYYY-MM-DD
	Date string
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Templates(ctx context.Context, userID int, search string) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.templates")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `SELECT workout_id, name, notes, duration
		FROM workouts
		WHERE user_id = $1 AND is_template = TRUE`
	args := []interface{}{userID}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += " AND name ILIKE $2"
	}
	query += " ORDER BY name;"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	templates := make([]Workout, 0)
	for rows.Next() {
		w := Workout{UserID: userID, IsTemplate: true}
		if err := rows.Scan(&w.ID, &w.Name, &w.Notes, &w.DurationMinutes); err != nil {
			return nil, err
		}
		templates = append(templates, w)
	}

	return templates, nil
}

func (r *Repo) CreateTemplate(ctx context.Context, workout Workout, exercises []TemplateExercise) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.createTemplate")
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
		`INSERT INTO workouts (user_id, name, notes, duration, is_template)
			VALUES ($1, $2, $3, 0, TRUE)
		RETURNING workout_id;`,
		workout.UserID, workout.Name, workout.Notes,
	).Scan(&workout.ID); err != nil {
		return nil, err
	}

	for _, e := range exercises {
		if e.ExerciseID == 0 {
			continue
		}
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO workout_exercises (workout_id, exercise_id, exercise_duration)
				VALUES ($1, $2, $3);`,
			workout.ID, e.ExerciseID, e.DurationMinutes,
		); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", workout.ID))
	workout.IsTemplate = true

	return &workout, nil
}

func (r *Repo) UpdateTemplate(ctx context.Context, params UpdateTemplateParams) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.updateTemplate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", params.TemplateID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var templateID int
	err = tx.QueryRow(
		ctx,
		`SELECT workout_id FROM workouts
			WHERE workout_id = $1 AND user_id = $2 AND is_template = TRUE;`,
		params.TemplateID, params.UserID,
	).Scan(&templateID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrWorkoutNotFound
	}
	if err != nil {
		return err
	}

	if params.Name != nil || params.Notes != nil {
		if _, err := tx.Exec(
			ctx,
			`UPDATE workouts SET
				name = COALESCE($1, name),
				notes = COALESCE($2, notes)
			WHERE workout_id = $3;`,
			params.Name, params.Notes, params.TemplateID,
		); err != nil {
			return err
		}
	}

	if len(params.RemoveExercises) > 0 {
		if _, err := tx.Exec(
			ctx,
			`DELETE FROM workout_exercises
				WHERE workout_id = $1 AND exercise_id = ANY($2);`,
			params.TemplateID, params.RemoveExercises,
		); err != nil {
			return err
		}
	}

	for _, e := range params.AddExercises {
		if e.ExerciseID == 0 {
			continue
		}
		// adding an exercise twice keeps the first link
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO workout_exercises (workout_id, exercise_id, exercise_duration)
				SELECT $1, $2, $3
				WHERE NOT EXISTS (
					SELECT 1 FROM workout_exercises
					WHERE workout_id = $1 AND exercise_id = $2
				);`,
			params.TemplateID, e.ExerciseID, e.DurationMinutes,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repo) DeleteTemplate(ctx context.Context, userID, templateID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteTemplate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", templateID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workouts
			WHERE workout_id = $1 AND user_id = $2 AND is_template = TRUE;`,
		templateID, userID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}

// Exercises returns the catalog info and per-workout data of a workout's
// exercises, for templates and logged workouts alike. Ownership is checked
// against the workout itself.
func (r *Repo) Exercises(ctx context.Context, userID, workoutID int) (_ []WorkoutExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	var ownedID int
	err = r.db.QueryRow(
		ctx,
		`SELECT workout_id FROM workouts WHERE workout_id = $1 AND user_id = $2;`,
		workoutID, userID,
	).Scan(&ownedID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT e.exercise_id, e.exercise_type, e.category, e.calories_per_kg,
				we.sets, we.reps, we.weight, we.max_weight, we.distance,
				we.exercise_duration, we.intensity, we.calories_burned
			FROM workout_exercises we
			JOIN exercises e ON we.exercise_id = e.exercise_id
		WHERE we.workout_id = $1;`,
		workoutID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	exercises := make([]WorkoutExercise, 0)
	for rows.Next() {
		var e WorkoutExercise
		if err := rows.Scan(
			&e.ExerciseID, &e.Name, &e.Category, &e.CaloriesPerKg,
			&e.Sets, &e.Reps, &e.Weight, &e.MaxWeight, &e.Distance,
			&e.DurationMinutes, &e.Intensity, &e.CaloriesBurned,
		); err != nil {
			return nil, err
		}
		exercises = append(exercises, e)
	}

	return exercises, nil
}

// CatalogInfo fetches the catalog data of the given exercises in one query.
// Unknown ids are simply absent from the result map.
func (r *Repo) CatalogInfo(ctx context.Context, exerciseIDs []int) (_ map[int]CatalogExercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.catalogInfo")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT exercise_id, exercise_type, category, calories_per_kg
			FROM exercises
		WHERE exercise_id = ANY($1);`,
		exerciseIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	info := make(map[int]CatalogExercise)
	for rows.Next() {
		var e CatalogExercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Category, &e.CaloriesPerKg); err != nil {
			return nil, err
		}
		info[e.ID] = e
	}

	return info, nil
}

// Log stores a logged workout with its exercises and the computed totals in
// one transaction. Either everything is persisted or nothing is.
func (r *Repo) Log(ctx context.Context, workout Workout, entries []calories.Entry, perEntryKcal []float64) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.log")
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

	var workoutID int
	if err := tx.QueryRow(
		ctx,
		`INSERT INTO workouts (user_id, name, notes, duration, workout_date, total_calories_burned, is_template)
			VALUES ($1, $2, $3, $4, $5, $6, FALSE)
		RETURNING workout_id;`,
		workout.UserID, workout.Name, workout.Notes, workout.DurationMinutes, workout.WorkoutDate, workout.TotalCalories,
	).Scan(&workoutID); err != nil {
		return 0, err
	}

	for i, e := range entries {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO workout_exercises
				(workout_id, exercise_id, exercise_duration, sets, reps, weight, max_weight, distance, intensity, calories_burned)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`,
			workoutID, e.ExerciseID, e.DurationMinutes,
			e.Sets, e.Reps, e.Weight, e.MaxWeight, e.Distance,
			e.Intensity, perEntryKcal[i],
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", workoutID))

	return workoutID, nil
}

func (r *Repo) Logged(ctx context.Context, filter LoggedFilter) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.logged")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `SELECT workout_id, name, notes, duration,
			to_char(workout_date, 'YYYY-MM-DD'), total_calories_burned
		FROM workouts
		WHERE user_id = $1 AND is_template = FALSE`
	args := []interface{}{filter.UserID}
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args))
	}
	if filter.Date != "" {
		args = append(args, filter.Date)
		query += fmt.Sprintf(" AND workout_date = $%d::date", len(args))
	}
	query += " ORDER BY workout_date DESC;"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	workouts := make([]Workout, 0)
	for rows.Next() {
		w := Workout{UserID: filter.UserID}
		if err := rows.Scan(
			&w.ID, &w.Name, &w.Notes, &w.DurationMinutes, &w.WorkoutDate, &w.TotalCalories,
		); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}

	return workouts, nil
}

func (r *Repo) DeleteLogged(ctx context.Context, userID, workoutID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deleteLogged")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM workouts
			WHERE workout_id = $1 AND user_id = $2 AND is_template = FALSE;`,
		workoutID, userID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}

	return nil
}
