package friends

import (
	"context"
	"errors"

	"github.com/nutritiontrax/nutritiontrax/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrRequestExists      = errors.New("friend request already exists")
	ErrRequestNotFound    = errors.New("friend request not found")
	ErrFriendshipNotFound = errors.New("friendship not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Friends returns accepted friendships in both directions.
func (r *Repo) Friends(ctx context.Context, userID int) (_ []Friend, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.friends.friends")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT u.id, u.username, u.nickname
			FROM friends f
			JOIN users u ON f.friend_id = u.id
			WHERE f.user_id = $1 AND f.status = 'accepted'
		UNION
		SELECT u.id, u.username, u.nickname
			FROM friends f
			JOIN users u ON f.user_id = u.id
			WHERE f.friend_id = $1 AND f.status = 'accepted';`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	userFriends := make([]Friend, 0)
	for rows.Next() {
		var f Friend
		if err := rows.Scan(&f.UserID, &f.Username, &f.Nickname); err != nil {
			return nil, err
		}
		userFriends = append(userFriends, f)
	}

	return userFriends, nil
}

// PendingRequests returns friend requests sent to the user, newest first.
func (r *Repo) PendingRequests(ctx context.Context, userID int) (_ []PendingRequest, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.friends.pendingRequests")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT f.friendship_id, u.id, u.username, u.nickname, f.created_at
			FROM friends f
			JOIN users u ON f.user_id = u.id
			WHERE f.friend_id = $1 AND f.status = 'pending'
		ORDER BY f.created_at DESC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	requests := make([]PendingRequest, 0)
	for rows.Next() {
		var req PendingRequest
		if err := rows.Scan(
			&req.FriendshipID, &req.User.UserID, &req.User.Username, &req.User.Nickname, &req.CreatedAt,
		); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// SearchUsers finds other users by username, with the friendship status
// towards the searching user attached.
func (r *Repo) SearchUsers(ctx context.Context, userID int, query string) (_ []SearchResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.friends.searchUsers")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("query", query))

	rows, err := r.db.Query(
		ctx,
		`SELECT u.id, u.username, u.nickname, f.status
			FROM users u
			LEFT JOIN friends f
				ON (f.user_id = u.id AND f.friend_id = $1)
				OR (f.user_id = $1 AND f.friend_id = u.id)
			WHERE u.username ILIKE '%' || $2 || '%' AND u.id != $1
		LIMIT 20;`,
		userID, query,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0)
	for rows.Next() {
		var res SearchResult
		if err := rows.Scan(&res.UserID, &res.Username, &res.Nickname, &res.FriendshipStatus); err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return results, nil
}

// Request stores a pending friend request, refusing duplicates in either
// direction.
func (r *Repo) Request(ctx context.Context, userID, friendID int) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.friends.request")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var exists bool
	if err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (
			SELECT 1 FROM friends
			WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
		);`,
		userID, friendID,
	).Scan(&exists); err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrRequestExists
	}

	var friendshipID int
	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO friends (user_id, friend_id, status)
			VALUES ($1, $2, 'pending')
		RETURNING friendship_id;`,
		userID, friendID,
	).Scan(&friendshipID); err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int("friendship.id", friendshipID))

	return friendshipID, nil
}

func (r *Repo) Accept(ctx context.Context, userID, friendshipID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.friends.accept")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("friendship.id", friendshipID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE friends SET status = 'accepted', updated_at = NOW()
			WHERE friendship_id = $1 AND friend_id = $2 AND status = 'pending';`,
		friendshipID, userID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}

	return nil
}

// Decline deletes a pending request sent to the user.
func (r *Repo) Decline(ctx context.Context, userID, friendshipID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.friends.decline")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("friendship.id", friendshipID))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM friends
			WHERE friendship_id = $1 AND friend_id = $2 AND status = 'pending';`,
		friendshipID, userID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrRequestNotFound
	}

	return nil
}

// Remove deletes an accepted friendship regardless of who requested it.
func (r *Repo) Remove(ctx context.Context, userID, friendUserID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.friends.remove")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM friends
			WHERE ((user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1))
				AND status = 'accepted';`,
		userID, friendUserID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return ErrFriendshipNotFound
	}

	return nil
}

func (r *Repo) AreFriends(ctx context.Context, userID, otherUserID int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.friends.areFriends")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var exists bool
	if err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (
			SELECT 1 FROM friends
			WHERE ((user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1))
				AND status = 'accepted'
		);`,
		userID, otherUserID,
	).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}
