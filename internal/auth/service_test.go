package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// INFO: https://github.com/go-redis/redis/issues/1029
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func TestAuthService_Login(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(time.Hour, db)
	require.NotNil(t, authService)
	assert.NotNil(t, authService.redisClient)
	assert.Equal(t, time.Hour, authService.ttl)

	testToken := "test_token"
	randStringFunc := func(s int) (string, error) {
		return testToken, nil
	}
	authService.RandStringFunc = randStringFunc

	now := time.Now()
	userID := 42
	sessionKey := sessionKeyPrefix + testToken
	mock.ExpectSet(sessionKey, sessionValue(userID, now), 0).
		SetVal(sessionValue(userID, now))
	mock.ExpectSAdd(tokensSetKey, testToken).SetVal(1)

	token, err := authService.Login(context.Background(), userID, now)
	require.NoError(t, err)
	require.Equal(t, testToken, token)
}

func TestAuthService_Logout(t *testing.T) {
	db, mock := redismock.NewClientMock()
	defer db.Close()

	authService := NewAuthService(time.Hour, db)
	require.NotNil(t, authService)

	now := time.Now()
	testToken := "test_token"
	sessionKey := sessionKeyPrefix + testToken
	mock.ExpectGet(sessionKey).SetVal(sessionValue(42, now))
	mock.ExpectDel(sessionKey).SetVal(1)
	mock.ExpectSRem(tokensSetKey, testToken).SetVal(1)

	loggedOut, err := authService.Logout(context.Background(), testToken)
	require.NoError(t, err)
	assert.True(t, loggedOut)
}

func TestAuthService_ScanAndClean(t *testing.T) {
	ttl := time.Hour
	now := time.Now()
	then := now.Add(-2 * time.Hour)

	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()

	authService := NewAuthService(ttl, rdb)
	require.NotNil(t, authService)

	// expected calls
	t1, t2 := "token1", "token2"
	mock.ExpectSMembers(tokensSetKey).SetVal([]string{t1, t2})
	mock.ExpectGet(sessionKeyPrefix + t1).SetVal(sessionValue(1, now))
	mock.ExpectGet(sessionKeyPrefix + t2).SetVal(sessionValue(2, then))
	// expect deleted only t2, old life
	mock.ExpectDel(sessionKeyPrefix + t2).SetVal(1)
	mock.ExpectSRem(tokensSetKey, t2).SetVal(1)

	authService.ScanAndClean(context.Background())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParseSessionValue(t *testing.T) {
	now := time.Now()

	userID, createdAt, err := parseSessionValue(sessionValue(42, now))
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
	assert.Equal(t, now.Unix(), createdAt.Unix())

	_, _, err = parseSessionValue("gibberish")
	require.Error(t, err)

	_, _, err = parseSessionValue(fmt.Sprintf("abc:%d", now.Unix()))
	require.Error(t, err)
}
