package auth

import (
	"context"
	"errors"
)

// TokenHeader carries the session token on authenticated requests
const TokenHeader = "X-NTRAX-TOKEN"

// ErrNotLoggedIn is returned when the provided token has no active session
var ErrNotLoggedIn = errors.New("not logged in")

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

type Checker interface {
	// LoggedUserID returns the id of the user holding the session token,
	// or ErrNotLoggedIn when the token has no active session
	LoggedUserID(ctx context.Context, token string) (int, error)
}
