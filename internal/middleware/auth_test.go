package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nutritiontrax/nutritiontrax/internal/auth"
	"github.com/nutritiontrax/nutritiontrax/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddlewareHandler_AuthCheck(t *testing.T) {
	loginChecker := auth.NewLoginTestChecker()
	loginChecker.LoggedSessions["valid-token"] = 42
	authMiddleware := middleware.NewAuthMiddlewareHandler(loginChecker)

	testCases := []struct {
		name               string
		path               string
		method             string
		token              string
		expectedStatusCode int
		expectedUserID     int
	}{
		{
			name:               "AllowedPathWithoutToken",
			path:               "/login",
			method:             "POST",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "SessionPathWithoutToken",
			path:               "/session",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "ProtectedPathWithoutToken",
			path:               "/meals/history",
			method:             "GET",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "ValidToken",
			path:               "/meals/history",
			method:             "GET",
			token:              "valid-token",
			expectedStatusCode: http.StatusOK,
			expectedUserID:     42,
		},
		{
			name:               "InvalidToken",
			path:               "/meals/history",
			method:             "GET",
			token:              "invalid-token",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "OptionsPreflight",
			path:               "/meals/history",
			method:             "OPTIONS",
			expectedStatusCode: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, tc.path, nil)
			require.NoError(t, err)
			if tc.token != "" {
				req.Header.Add(auth.TokenHeader, tc.token)
			}

			var gotUserID int
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUserID, _ = auth.UserIDFromContext(r.Context())
			})

			rr := httptest.NewRecorder()
			authMiddleware.AuthCheck()(handler).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
			if tc.expectedUserID != 0 {
				assert.Equal(t, tc.expectedUserID, gotUserID)
			}
		})
	}
}
