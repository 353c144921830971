package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"task-tracker/internal/model"
	"task-tracker/internal/service"
)

type accessVerifier interface {
	VerifyAccessToken(raw string) (service.Claims, error)
}

type contextKey string

const authUserContextKey contextKey = "auth_user"

// AuthUser is the request-scoped identity attached by RequireAuth.
type AuthUser struct {
	ID    int64
	Email string
}

type AuthMiddleware struct {
	verifier accessVerifier
}

func NewAuthMiddleware(verifier accessVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth validates the bearer access token and stores the caller's
// identity in the request context. Invalid and expired tokens collapse to the
// same outward response.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeUnauthorized(w, "missing or invalid authorization header")
			return
		}

		claims, err := m.verifier.VerifyAccessToken(strings.TrimSpace(header[7:]))
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authUserContextKey, AuthUser{ID: userID, Email: claims.Email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserFromContext(ctx context.Context) (AuthUser, bool) {
	user, ok := ctx.Value(authUserContextKey).(AuthUser)
	return user, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}
