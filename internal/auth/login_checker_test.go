package auth

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginChecker_LoggedUserID(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	checker := NewLoginChecker(time.Hour, rdb)
	require.NotNil(t, checker)

	ctx := context.Background()
	now := time.Now()

	mock.ExpectGet(sessionKeyPrefix + "fresh-token").SetVal(sessionValue(42, now))
	userID, err := checker.LoggedUserID(ctx, "fresh-token")
	require.NoError(t, err)
	assert.Equal(t, 42, userID)

	// expired session
	mock.ExpectGet(sessionKeyPrefix + "stale-token").
		SetVal(sessionValue(42, now.Add(-2*time.Hour)))
	_, err = checker.LoggedUserID(ctx, "stale-token")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	// unknown token
	mock.ExpectGet(sessionKeyPrefix + "unknown-token").RedisNil()
	_, err = checker.LoggedUserID(ctx, "unknown-token")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
