//go:build integration

package integration

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"task-tracker/internal/model"
)

func TestRegisterLoginAndProfile(t *testing.T) {
	server := newServer(t, nil)

	registered := registerUser(t, server.URL, "ada@example.com", "password123")

	loginResp, loginEnv := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)

	var auth model.AuthResponse
	decodeData(t, loginEnv, &auth)
	require.Equal(t, registered.User.ID, auth.User.ID)

	// The refresh token also arrives as an httpOnly cookie.
	var refreshCookie *http.Cookie
	for _, c := range loginResp.Cookies() {
		if c.Name == "refresh_token" {
			refreshCookie = c
		}
	}
	require.NotNil(t, refreshCookie)
	require.True(t, refreshCookie.HttpOnly)
	require.Equal(t, auth.RefreshToken, refreshCookie.Value)

	profileResp, profileEnv := doJSON(t, http.MethodGet, server.URL+"/api/v1/auth/profile", nil, auth.AccessToken)
	require.Equal(t, http.StatusOK, profileResp.StatusCode)

	var profile model.Profile
	decodeData(t, profileEnv, &profile)
	require.Equal(t, "ada@example.com", profile.Email)
	require.True(t, profile.HasPassword)
	require.False(t, profile.HasGoogleAccount)
}

func TestLoginFailuresShareOneResponse(t *testing.T) {
	server := newServer(t, nil)

	registerUser(t, server.URL, "ada@example.com", "password123")

	missingResp, missingEnv := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	}, "")
	wrongResp, wrongEnv := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	}, "")

	require.Equal(t, http.StatusUnauthorized, missingResp.StatusCode)
	require.Equal(t, http.StatusUnauthorized, wrongResp.StatusCode)
	require.NotNil(t, missingEnv.Error)
	require.NotNil(t, wrongEnv.Error)
	require.Equal(t, missingEnv.Error.Code, wrongEnv.Error.Code)
	require.Equal(t, missingEnv.Error.Message, wrongEnv.Error.Message)
}

func TestRefreshRotationOverHTTP(t *testing.T) {
	server := newServer(t, nil)

	first := registerUser(t, server.URL, "ada@example.com", "password123")

	secondResp, secondEnv := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/refresh", map[string]string{
		"refresh_token": first.RefreshToken,
	}, "")
	require.Equal(t, http.StatusOK, secondResp.StatusCode)

	var second model.AuthResponse
	decodeData(t, secondEnv, &second)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	replayResp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/refresh", map[string]string{
		"refresh_token": first.RefreshToken,
	}, "")
	require.Equal(t, http.StatusUnauthorized, replayResp.StatusCode)

	currentResp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/refresh", map[string]string{
		"refresh_token": second.RefreshToken,
	}, "")
	require.Equal(t, http.StatusOK, currentResp.StatusCode)
}

func TestLogoutEndsTheSession(t *testing.T) {
	server := newServer(t, nil)

	auth := registerUser(t, server.URL, "ada@example.com", "password123")

	logoutResp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/logout", nil, auth.AccessToken)
	require.Equal(t, http.StatusOK, logoutResp.StatusCode)

	refreshResp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/refresh", map[string]string{
		"refresh_token": auth.RefreshToken,
	}, "")
	require.Equal(t, http.StatusUnauthorized, refreshResp.StatusCode)
}

func TestChangeAndSetPasswordEndpoints(t *testing.T) {
	server := newServer(t, nil)

	auth := registerUser(t, server.URL, "ada@example.com", "old-password")

	wrongResp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/change-password", map[string]string{
		"current_password": "not-the-password",
		"new_password":     "new-password",
	}, auth.AccessToken)
	require.Equal(t, http.StatusUnauthorized, wrongResp.StatusCode)

	changeResp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/change-password", map[string]string{
		"current_password": "old-password",
		"new_password":     "new-password",
	}, auth.AccessToken)
	require.Equal(t, http.StatusOK, changeResp.StatusCode)

	// set-password is only for accounts that have no password yet.
	setResp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/set-password", map[string]string{
		"new_password": "another-password",
	}, auth.AccessToken)
	require.Equal(t, http.StatusBadRequest, setResp.StatusCode)
}

func TestGoogleLoginFlow(t *testing.T) {
	google := &fakeGoogle{}
	name := "Grace Hopper"
	google.assertion.Email = "grace@example.com"
	google.assertion.GoogleID = "google-789"
	google.assertion.Name = &name

	server := newServer(t, google)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	startResp, err := client.Get(server.URL + "/api/v1/auth/google")
	require.NoError(t, err)
	t.Cleanup(func() { _ = startResp.Body.Close() })
	require.Equal(t, http.StatusTemporaryRedirect, startResp.StatusCode)

	var state string
	for _, c := range startResp.Cookies() {
		if c.Name == "oauth_state" {
			state = c.Value
		}
	}
	require.NotEmpty(t, state)

	callbackReq, err := http.NewRequest(http.MethodGet,
		server.URL+"/api/v1/auth/google/callback?state="+state+"&code=test-code", nil)
	require.NoError(t, err)
	callbackReq.AddCookie(&http.Cookie{Name: "oauth_state", Value: state})

	callbackResp, err := client.Do(callbackReq)
	require.NoError(t, err)
	t.Cleanup(func() { _ = callbackResp.Body.Close() })
	require.Equal(t, http.StatusFound, callbackResp.StatusCode)

	location := callbackResp.Header.Get("Location")
	require.True(t, strings.HasPrefix(location, testFrontendURL+"/auth/callback?token="))

	var refreshCookie *http.Cookie
	for _, c := range callbackResp.Cookies() {
		if c.Name == "refresh_token" {
			refreshCookie = c
		}
	}
	require.NotNil(t, refreshCookie)
	require.True(t, refreshCookie.HttpOnly)

	// The cookie-held refresh token rotates like any other.
	refreshResp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/auth/refresh", map[string]string{
		"refresh_token": refreshCookie.Value,
	}, "")
	require.Equal(t, http.StatusOK, refreshResp.StatusCode)
}

func TestGoogleEndpointsWithoutConfiguration(t *testing.T) {
	server := newServer(t, nil)

	resp, err := http.Get(server.URL + "/api/v1/auth/google")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
