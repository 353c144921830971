//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"task-tracker/internal/model"
)

func TestTodoLifecycle(t *testing.T) {
	server := newServer(t, nil)

	auth := registerUser(t, server.URL, "ada@example.com", "password123")

	createResp, createEnv := doJSON(t, http.MethodPost, server.URL+"/api/v1/todos/", map[string]string{
		"title": "write the report",
	}, auth.AccessToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)

	var todo model.Todo
	decodeData(t, createEnv, &todo)
	require.Equal(t, "write the report", todo.Title)
	require.False(t, todo.Completed)

	todoURL := fmt.Sprintf("%s/api/v1/todos/%d", server.URL, todo.ID)

	patchResp, patchEnv := doJSON(t, http.MethodPatch, todoURL, map[string]any{
		"completed": true,
	}, auth.AccessToken)
	require.Equal(t, http.StatusOK, patchResp.StatusCode)

	var patched model.Todo
	decodeData(t, patchEnv, &patched)
	require.True(t, patched.Completed)

	listResp, listEnv := doJSON(t, http.MethodGet, server.URL+"/api/v1/todos/", nil, auth.AccessToken)
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var todos []model.Todo
	decodeData(t, listEnv, &todos)
	require.Len(t, todos, 1)

	deleteResp, _ := doJSON(t, http.MethodDelete, todoURL, nil, auth.AccessToken)
	require.Equal(t, http.StatusOK, deleteResp.StatusCode)

	getResp, _ := doJSON(t, http.MethodGet, todoURL, nil, auth.AccessToken)
	require.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestTodosRequireAuth(t *testing.T) {
	server := newServer(t, nil)

	resp, err := http.Get(server.URL + "/api/v1/todos/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTodosAreTenantScoped(t *testing.T) {
	server := newServer(t, nil)

	ada := registerUser(t, server.URL, "ada@example.com", "password123")
	grace := registerUser(t, server.URL, "grace@example.com", "password456")

	createResp, createEnv := doJSON(t, http.MethodPost, server.URL+"/api/v1/todos/", map[string]string{
		"title": "ada's task",
	}, ada.AccessToken)
	require.Equal(t, http.StatusCreated, createResp.StatusCode)

	var todo model.Todo
	decodeData(t, createEnv, &todo)

	todoURL := fmt.Sprintf("%s/api/v1/todos/%d", server.URL, todo.ID)

	// Another user's rows are indistinguishable from missing ones.
	getResp, _ := doJSON(t, http.MethodGet, todoURL, nil, grace.AccessToken)
	require.Equal(t, http.StatusNotFound, getResp.StatusCode)

	deleteResp, _ := doJSON(t, http.MethodDelete, todoURL, nil, grace.AccessToken)
	require.Equal(t, http.StatusNotFound, deleteResp.StatusCode)

	listResp, listEnv := doJSON(t, http.MethodGet, server.URL+"/api/v1/todos/", nil, grace.AccessToken)
	require.Equal(t, http.StatusOK, listResp.StatusCode)

	var todos []model.Todo
	decodeData(t, listEnv, &todos)
	require.Empty(t, todos)
}
