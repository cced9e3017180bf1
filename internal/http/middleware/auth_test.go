package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfmendes/contas/internal/auth"
	"github.com/rfmendes/contas/internal/http/middleware"
)

func TestAuth(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour, time.Hour)
	userID := uuid.New()

	token, err := tokens.Access(userID)
	require.NoError(t, err)

	var gotUserID uuid.UUID

	handler := middleware.Auth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = middleware.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	type testCase struct {
		name       string
		authHeader string
		wantStatus int
	}

	tests := []testCase{
		{name: "valid token", authHeader: "Bearer " + token, wantStatus: http.StatusOK},
		{name: "missing header", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", authHeader: "Basic " + token, wantStatus: http.StatusUnauthorized},
		{name: "empty token", authHeader: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", authHeader: "Bearer garbage", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = uuid.Nil

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, userID, gotUserID)
			} else {
				assert.Equal(t, uuid.Nil, gotUserID)
			}
		})
	}
}

func TestAuth_VerificationTokenRejected(t *testing.T) {
	tokens := auth.NewTokens("test-secret", time.Hour, time.Hour)

	token, err := tokens.Verification(uuid.New())
	require.NoError(t, err)

	handler := middleware.Auth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
