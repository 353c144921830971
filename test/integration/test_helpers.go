//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"task-tracker/internal/config"
	"task-tracker/internal/handler"
	"task-tracker/internal/middleware"
	"task-tracker/internal/model"
	"task-tracker/internal/repository"
	"task-tracker/internal/router"
	"task-tracker/internal/service"
)

const testFrontendURL = "http://localhost:5173"

// fakeGoogle stands in for the real OAuth provider so the federated flow can
// run against httptest servers.
type fakeGoogle struct {
	assertion service.FederatedAssertion
}

func (f fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example.com/consent?state=" + state
}

func (f fakeGoogle) Exchange(_ context.Context, code string) (service.FederatedAssertion, error) {
	return f.assertion, nil
}

func newServer(t *testing.T, google *fakeGoogle) *httptest.Server {
	t.Helper()

	users := repository.NewMemoryUserStore()
	todos := repository.NewMemoryTodoStore()

	issuer := service.NewTokenIssuer("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)
	authService := service.NewAuthService(users, service.NewPasswordHasher(), issuer)
	todoService := service.NewTodoService(todos)

	authHandler := handler.NewAuthHandler(authService, nil, 24*time.Hour, testFrontendURL)
	if google != nil {
		authHandler = handler.NewAuthHandler(authService, *google, 24*time.Hour, testFrontendURL)
	}
	todoHandler := handler.NewTodoHandler(todoService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	cfg := &config.Config{
		ServerPort:     "8080",
		RequestTimeout: 30 * time.Second,
		CORSOrigins:    []string{"*"},
	}

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth: authHandler,
		Todo: todoHandler,
	})

	server := httptest.NewServer(appRouter)
	t.Cleanup(server.Close)
	return server
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
}

func doJSON(t *testing.T, method string, url string, body any, accessToken string) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func decodeData(t *testing.T, env envelope, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func registerUser(t *testing.T, serverURL string, email string, password string) model.AuthResponse {
	t.Helper()

	resp, env := doJSON(t, http.MethodPost, serverURL+"/api/v1/auth/register", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var auth model.AuthResponse
	decodeData(t, env, &auth)
	require.NotEmpty(t, auth.AccessToken)
	require.NotEmpty(t, auth.RefreshToken)
	return auth
}
