package auth

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticator(t *testing.T) {
	revoked := newFakeRevocations()
	tm := NewTokenManager("test-secret", time.Hour, revoked)

	handler := Authenticator(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserIDFromContext(r.Context())
		require.True(t, ok)
		fmt.Fprintf(w, "%d", userID)
	}))

	validToken, err := tm.Issue(7)
	require.NoError(t, err)

	expiredTM := NewTokenManager("test-secret", -time.Minute, revoked)
	expiredToken, err := expiredTM.Issue(7)
	require.NoError(t, err)

	revokedToken, err := tm.Issue(7)
	require.NoError(t, err)
	require.NoError(t, tm.Revoke(revokedToken))

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
		wantBody   string
	}{
		{"NoHeader", "", http.StatusUnauthorized, `{"message":"Unauthenticated."}`},
		{"WrongScheme", "Basic abc", http.StatusUnauthorized, `{"message":"Unauthenticated."}`},
		{"EmptyToken", "Bearer ", http.StatusUnauthorized, `{"message":"Unauthenticated."}`},
		{"Garbage", "Bearer not-a-token", http.StatusUnauthorized, `{"message":"Unauthenticated."}`},
		{"Expired", "Bearer " + expiredToken, http.StatusUnauthorized, `{"message":"Unauthenticated."}`},
		{"Revoked", "Bearer " + revokedToken, http.StatusUnauthorized, `{"message":"Unauthenticated."}`},
		{"Valid", "Bearer " + validToken, http.StatusOK, "7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	_, ok := BearerToken(req)
	assert.False(t, ok)

	req.Header.Set("Authorization", "bearer abc123")
	token, ok := BearerToken(req)
	require.True(t, ok)
	assert.Equal(t, "abc123", token)
}
