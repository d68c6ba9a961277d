package goals

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
	ErrGoalNotFound      = errors.New("goal not found")
	ErrChallengeNotFound = errors.New("challenge not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns the user's active goals with the latest logged metric attached.
// Pending and declined challenges stay out, so do goals past their end date.
func (r *Repo) List(ctx context.Context, userID int, search string) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	query := `SELECT g.goal_id, g.name, g.goal_type, g.target_value,
			to_char(g.goal_end_date, 'YYYY-MM-DD'), g.goal_complete, g.metric_type,
			g.challenge_status, g.date_added, m.current_value, m.metric_unit
		FROM goals g
		LEFT JOIN LATERAL (
			SELECT current_value, metric_unit
			FROM goal_metrics
			WHERE goal_id = g.goal_id
			ORDER BY recorded_date DESC
			LIMIT 1
		) m ON TRUE
		WHERE g.user_id = $1
			AND g.challenge_status NOT IN ('pending', 'declined')
			AND (g.goal_end_date IS NULL OR g.goal_end_date >= CURRENT_DATE)`
	args := []interface{}{userID}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND g.name ILIKE $%d", len(args))
	}
	query += " ORDER BY g.date_added DESC;"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	userGoals := make([]Goal, 0)
	for rows.Next() {
		g := Goal{UserID: userID}
		if err := rows.Scan(
			&g.ID, &g.Name, &g.Type, &g.TargetValue,
			&g.EndDate, &g.Complete, &g.MetricType,
			&g.ChallengeStatus, &g.DateAdded, &g.CurrentValue, &g.MetricUnit,
		); err != nil {
			return nil, err
		}
		userGoals = append(userGoals, g)
	}

	return userGoals, nil
}

func (r *Repo) Add(ctx context.Context, goal Goal) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var goalID int
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO goals
			(user_id, name, goal_type, target_value, goal_end_date,
				metric_type, goal_complete, challenge_status, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5::date, $6, FALSE, 'none', $1)
		RETURNING goal_id;`,
		goal.UserID, goal.Name, goal.Type, goal.TargetValue, goal.EndDate, goal.MetricType,
	).Scan(&goalID); err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int("goal.id", goalID))

	return goalID, nil
}

func (r *Repo) Get(ctx context.Context, userID, goalID int) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("goal.id", goalID))

	g := Goal{ID: goalID, UserID: userID}
	err = r.db.QueryRow(
		ctx,
		`SELECT name, goal_type, target_value, to_char(goal_end_date, 'YYYY-MM-DD'),
				goal_complete, metric_type, challenge_status
			FROM goals
		WHERE goal_id = $1 AND user_id = $2;`,
		goalID, userID,
	).Scan(&g.Name, &g.Type, &g.TargetValue, &g.EndDate, &g.Complete, &g.MetricType, &g.ChallengeStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGoalNotFound
	}
	if err != nil {
		return nil, err
	}

	return &g, nil
}

// LogProgress stores a metric row and flips the goal complete in the same
// transaction when the logged value finished it.
func (r *Repo) LogProgress(ctx context.Context, goalID int, value float64, unit string, complete bool) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.logProgress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("goal.id", goalID))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err := tx.Exec(
		ctx,
		`INSERT INTO goal_metrics (goal_id, current_value, metric_unit, recorded_date)
			VALUES ($1, $2, $3, NOW());`,
		goalID, value, unit,
	); err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return ErrGoalNotFound
		}
		return err
	}

	if complete {
		if _, err := tx.Exec(
			ctx,
			`UPDATE goals SET goal_complete = TRUE WHERE goal_id = $1;`,
			goalID,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *Repo) Delete(ctx context.Context, userID, goalID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("goal.id", goalID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM goals WHERE goal_id = $1 AND user_id = $2;`,
		goalID, userID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}

	return nil
}

// CreateChallenge stores a pending goal on the challenged user's account.
// Goal.UserID is the friend being challenged.
func (r *Repo) CreateChallenge(ctx context.Context, fromUserID int, goal Goal) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.createChallenge")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var goalID int
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO goals
			(user_id, name, goal_type, target_value, goal_end_date, metric_type,
				goal_complete, challenged_user_id, challenge_status, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5::date, $6, FALSE, $1, 'pending', $7)
		RETURNING goal_id;`,
		goal.UserID, goal.Name, goal.Type, goal.TargetValue, goal.EndDate, goal.MetricType, fromUserID,
	).Scan(&goalID); err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int("goal.id", goalID))

	return goalID, nil
}

func (r *Repo) AcceptChallenge(ctx context.Context, userID, goalID int) error {
	return r.setChallengeStatus(ctx, userID, goalID, StatusAccepted)
}

func (r *Repo) DeclineChallenge(ctx context.Context, userID, goalID int) error {
	return r.setChallengeStatus(ctx, userID, goalID, StatusDeclined)
}

func (r *Repo) setChallengeStatus(ctx context.Context, userID, goalID int, status string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.setChallengeStatus")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("goal.id", goalID),
		attribute.String("challenge.status", status),
	)

	tag, err := r.db.Exec(
		ctx,
		`UPDATE goals SET challenge_status = $1
			WHERE goal_id = $2 AND challenged_user_id = $3 AND challenge_status = 'pending';`,
		status, goalID, userID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrChallengeNotFound
	}

	return nil
}

// PendingChallenges returns challenges sent to the user that wait for an
// answer, newest first.
func (r *Repo) PendingChallenges(ctx context.Context, userID int) (_ []Challenge, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.pendingChallenges")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT g.goal_id, g.name, g.goal_type, g.target_value,
				to_char(g.goal_end_date, 'YYYY-MM-DD'), g.metric_type, g.date_added,
				u.id, u.username
			FROM goals g
			JOIN users u ON u.id = g.created_by_user_id
			WHERE g.challenged_user_id = $1 AND g.challenge_status = 'pending'
		ORDER BY g.date_added DESC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	challenges := make([]Challenge, 0)
	for rows.Next() {
		var c Challenge
		if err := rows.Scan(
			&c.GoalID, &c.Name, &c.Type, &c.TargetValue,
			&c.EndDate, &c.MetricType, &c.DateAdded,
			&c.FromUserID, &c.FromUsername,
		); err != nil {
			return nil, err
		}
		challenges = append(challenges, c)
	}

	return challenges, nil
}
