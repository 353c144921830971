package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"task-tracker/internal/middleware"
	"task-tracker/internal/model"
	"task-tracker/internal/service"
	"task-tracker/pkg/apierror"
)

const (
	refreshCookieName = "refresh_token"
	stateCookieName   = "oauth_state"
)

// federatedExchanger is the provider-side contract the handler needs for the
// Google flow; implemented by provider.GoogleProvider.
type federatedExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (service.FederatedAssertion, error)
}

type AuthHandler struct {
	service     *service.AuthService
	google      federatedExchanger
	refreshTTL  time.Duration
	frontendURL string
}

// NewAuthHandler wires the auth endpoints. google may be nil when the
// deployment has no OAuth credentials configured.
func NewAuthHandler(service *service.AuthService, google federatedExchanger, refreshTTL time.Duration, frontendURL string) *AuthHandler {
	return &AuthHandler{
		service:     service,
		google:      google,
		refreshTTL:  refreshTTL,
		frontendURL: frontendURL,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	payload.Email = strings.TrimSpace(payload.Email)
	if err := validateEmail(payload.Email); err != nil {
		writeError(w, err)
		return
	}
	if err := validatePassword(payload.Password); err != nil {
		writeError(w, err)
		return
	}

	var name *string
	if trimmed := strings.TrimSpace(payload.Name); trimmed != "" {
		if len(trimmed) < 2 || len(trimmed) > 50 {
			writeError(w, apierror.New("BAD_REQUEST", "name must be between 2 and 50 characters", "name", http.StatusBadRequest))
			return
		}
		name = &trimmed
	}

	auth, err := h.service.Register(r.Context(), payload.Email, payload.Password, name)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, auth.RefreshToken)
	writeSuccess(w, http.StatusCreated, auth)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	payload.Email = strings.TrimSpace(payload.Email)
	if payload.Email == "" || payload.Password == "" {
		writeError(w, apierror.New("BAD_REQUEST", "email and password are required", "", http.StatusBadRequest))
		return
	}

	auth, err := h.service.Login(r.Context(), service.LocalCredential{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, auth.RefreshToken)
	writeSuccess(w, http.StatusOK, auth)
}

// Refresh rotates the token pair. The refresh token is taken from the JSON
// body when present, falling back to the httpOnly cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RefreshRequest
	_ = json.NewDecoder(r.Body).Decode(&payload)

	token := strings.TrimSpace(payload.RefreshToken)
	if token == "" {
		if cookie, err := r.Cookie(refreshCookieName); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		writeError(w, apierror.New("BAD_REQUEST", "refresh_token is required", "refresh_token", http.StatusBadRequest))
		return
	}

	userID, err := h.service.VerifyRefreshToken(token)
	if err != nil {
		writeError(w, model.ErrInvalidRefreshToken)
		return
	}

	auth, err := h.service.RefreshTokens(r.Context(), userID, token)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, auth.RefreshToken)
	writeSuccess(w, http.StatusOK, auth)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	if err := h.service.Logout(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	h.clearRefreshCookie(w)
	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	var payload model.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if err := validatePassword(payload.CurrentPassword); err != nil {
		writeError(w, err)
		return
	}
	if err := validatePassword(payload.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), user.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Password changed successfully"})
}

func (h *AuthHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	var payload model.SetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if err := validatePassword(payload.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.SetInitialPassword(r.Context(), user.ID, payload.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Password set successfully"})
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("UNAUTHORIZED", "authentication required", "", http.StatusUnauthorized))
		return
	}

	profile, err := h.service.Profile(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, profile)
}

// GoogleStart redirects to the provider's consent screen with a one-shot
// anti-CSRF state nonce stored in a short-lived cookie.
func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, apierror.New("NOT_CONFIGURED", "google login is not configured", "", http.StatusServiceUnavailable))
		return
	}

	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/api/v1/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback finishes the OAuth flow: code exchange, federated login, and
// a redirect to the frontend with the access token. The refresh token travels
// only in the httpOnly cookie on this path.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, apierror.New("NOT_CONFIGURED", "google login is not configured", "", http.StatusServiceUnavailable))
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		writeError(w, apierror.New("BAD_REQUEST", "invalid oauth state", "", http.StatusBadRequest))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, apierror.New("BAD_REQUEST", "missing authorization code", "", http.StatusBadRequest))
		return
	}

	assertion, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		writeError(w, apierror.New("UNAUTHORIZED", "google authentication failed", "", http.StatusUnauthorized))
		return
	}

	auth, err := h.service.Login(r.Context(), assertion)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, auth.RefreshToken)

	redirect := strings.TrimRight(h.frontendURL, "/") + "/auth/callback?token=" + url.QueryEscape(auth.AccessToken)
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/v1/auth",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func validateEmail(email string) error {
	if email == "" {
		return apierror.New("BAD_REQUEST", "email is required", "email", http.StatusBadRequest)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apierror.New("BAD_REQUEST", "email is not valid", "email", http.StatusBadRequest)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return apierror.New("BAD_REQUEST", "password must be at least 6 characters long", "password", http.StatusBadRequest)
	}
	if len(password) > 100 {
		return apierror.New("BAD_REQUEST", "password must not exceed 100 characters", "password", http.StatusBadRequest)
	}
	return nil
}
