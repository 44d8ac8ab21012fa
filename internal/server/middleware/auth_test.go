package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeValidator accepts a single known token.
type fakeValidator struct {
	token  string
	userID uuid.UUID
}

func (v *fakeValidator) ValidateToken(token string) (UserIDGetter, error) {
	if token != v.token {
		return nil, fmt.Errorf("invalid token")
	}
	return fakeClaims{userID: v.userID}, nil
}

type fakeClaims struct {
	userID uuid.UUID
}

func (c fakeClaims) GetUserID() uuid.UUID { return c.userID }

// protectedEcho wraps a handler that records whether it ran and which user
// ID the middleware injected.
func protectedEcho(validator TokenValidator) (http.Handler, *bool, *uuid.UUID) {
	called := new(bool)
	seen := new(uuid.UUID)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		if id, err := GetUserID(r); err == nil {
			*seen = id
		}
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(validator)(handler), called, seen
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	userID := uuid.New()
	handler, called, seen := protectedEcho(&fakeValidator{token: "good-token", userID: userID})

	tests := []struct {
		name   string
		header string
	}{
		{"canonical scheme", "Bearer good-token"},
		{"lowercase scheme", "bearer good-token"},
		{"mixed case scheme", "BeArEr good-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*called = false
			req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, *called)
			assert.Equal(t, userID, *seen)
		})
	}
}

func TestAuthMiddleware_RejectsBadCredentials(t *testing.T) {
	handler, called, _ := protectedEcho(&fakeValidator{token: "good-token", userID: uuid.New()})

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"no scheme", "good-token"},
		{"scheme only", "Bearer"},
		{"empty token", "Bearer "},
		{"wrong scheme", "Basic good-token"},
		{"unknown token", "Bearer forged-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			*called = false
			req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.False(t, *called, "handler must not run without valid credentials")
			assert.Contains(t, w.Body.String(), "unauthorized")
		})
	}
}

func TestGetUserID(t *testing.T) {
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req = req.WithContext(WithUserID(req.Context(), userID))

	got, err := GetUserID(req)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestGetUserID_MissingFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)

	got, err := GetUserID(req)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, got)
}
