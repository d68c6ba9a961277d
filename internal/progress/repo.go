package progress

import (
	"context"
	"errors"
	"time"

	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrNoEntries = errors.New("no progress entries")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, entry Entry) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO progress_tracking (user_id, weight, height, recorded_date)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		entry.UserID, entry.WeightLbs, entry.HeightInches, entry.RecordedAt,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, errors.New("unexpected error [no rows next]")
	}

	if err := rows.Scan(&entry.ID); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("progress.id", entry.ID))

	return &entry, nil
}

// Latest returns the most recent body measurement for the user,
// or ErrNoEntries if they never reported one
func (r *Repo) Latest(ctx context.Context, userID int) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.latest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, weight, height, recorded_date
			FROM progress_tracking
			WHERE user_id = $1
		ORDER BY recorded_date DESC
		LIMIT 1;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries, err := r.rows2entries(rows)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	return &entries[0], nil
}

// List returns all measurements of the user, most recent first
func (r *Repo) List(ctx context.Context, userID int) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, weight, height, recorded_date
			FROM progress_tracking
			WHERE user_id = $1
		ORDER BY recorded_date DESC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.rows2entries(rows)
}

// WeightSeries returns (recorded date, weight) pairs in ascending date order
func (r *Repo) WeightSeries(ctx context.Context, userID int) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.weightSeries")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, weight, height, recorded_date
			FROM progress_tracking
			WHERE user_id = $1
		ORDER BY recorded_date ASC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.rows2entries(rows)
}

func (r *Repo) rows2entries(rows pgx.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var id, userID int
		var weight, height float64
		var recordedAt time.Time
		if err := rows.Scan(&id, &userID, &weight, &height, &recordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			ID:           id,
			UserID:       userID,
			WeightLbs:    weight,
			HeightInches: height,
			RecordedAt:   recordedAt,
		})
	}

	if entries == nil {
		entries = make([]Entry, 0)
	}

	return entries, nil
}
