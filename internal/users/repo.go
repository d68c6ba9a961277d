package users

import (
	"context"
	"errors"
	"time"

	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"
	"github.com/nutritiontrax/nutritiontrax/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already taken")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, username, passwordHash, dob string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	createdAt := time.Now()
	rows, err := r.db.Query(
		ctx,
		`INSERT INTO users (username, password_hash, dob, created_at)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		username, passwordHash, dob, createdAt,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	if !rows.Next() {
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("user.id", id))

	return &User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		DOB:          &dob,
		CreatedAt:    createdAt,
	}, nil
}

func (r *Repo) GetByUsername(ctx context.Context, username string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByUsername")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, username, password_hash, nickname, to_char(dob, 'YYYY-MM-DD'), created_at
			FROM users
			WHERE username = $1;`,
		username,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	users, err := r.rows2users(rows)
	if err != nil {
		return nil, err
	}

	if len(users) != 1 {
		return nil, ErrUserNotFound
	}

	return &users[0], nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, username, password_hash, nickname, to_char(dob, 'YYYY-MM-DD'), created_at
			FROM users
			WHERE id = $1;`,
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	users, err := r.rows2users(rows)
	if err != nil {
		return nil, err
	}

	if len(users) != 1 {
		return nil, ErrUserNotFound
	}

	return &users[0], nil
}

// UpdateProfile changes nickname and/or date of birth, nil means keep as is
func (r *Repo) UpdateProfile(ctx context.Context, id int, nickname, dob *string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.updateProfile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", id))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE users SET
			nickname = COALESCE($1, nickname),
			dob = COALESCE($2::date, dob)
		WHERE id = $3;`,
		nickname, dob, id,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Search finds users whose username contains the query, excluding the searching user
func (r *Repo) Search(ctx context.Context, query string, excludeUserID int) (_ []User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.search")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("query", query))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, username, password_hash, nickname, to_char(dob, 'YYYY-MM-DD'), created_at
			FROM users
			WHERE username ILIKE '%' || $1 || '%' AND id != $2
		ORDER BY username;`,
		query, excludeUserID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return r.rows2users(rows)
}

func (r *Repo) rows2users(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		var id int
		var username, passwordHash string
		var nickname, dob *string
		var createdAt time.Time
		if err := rows.Scan(&id, &username, &passwordHash, &nickname, &dob, &createdAt); err != nil {
			return nil, err
		}
		users = append(users, User{
			ID:           id,
			Username:     username,
			PasswordHash: passwordHash,
			Nickname:     nickname,
			DOB:          dob,
			CreatedAt:    createdAt,
		})
	}

	if users == nil {
		users = make([]User, 0)
	}

	return users, nil
}
