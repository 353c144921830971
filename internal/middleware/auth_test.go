package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"task-tracker/internal/model"
	"task-tracker/internal/service"
)

func newTestVerifier(t *testing.T) (*service.TokenIssuer, string) {
	t.Helper()

	issuer := service.NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)
	token, err := issuer.IssueAccess(model.User{ID: 7, Email: "ada@example.com"})
	require.NoError(t, err)
	return issuer, token
}

type verifierAdapter struct {
	issuer *service.TokenIssuer
}

func (v verifierAdapter) VerifyAccessToken(raw string) (service.Claims, error) {
	return v.issuer.VerifyAccess(raw)
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	issuer, token := newTestVerifier(t)
	mw := NewAuthMiddleware(verifierAdapter{issuer})

	var seen AuthUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		require.True(t, ok)
		seen = user
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid bearer token passes identity to the handler", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		mw.RequireAuth(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, int64(7), seen.ID)
		require.Equal(t, "ada@example.com", seen.Email)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()

		mw.RequireAuth(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed scheme is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic "+token)
		rec := httptest.NewRecorder()

		mw.RequireAuth(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()

		mw.RequireAuth(next).ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
