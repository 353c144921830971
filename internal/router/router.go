package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"task-tracker/internal/config"
	"task-tracker/internal/handler"
	"task-tracker/internal/middleware"
)

type Handlers struct {
	Auth *handler.AuthHandler
	Todo *handler.TodoHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, handlers Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", handlers.Auth.Register)
			auth.Post("/login", handlers.Auth.Login)
			auth.Post("/refresh", handlers.Auth.Refresh)
			auth.Get("/google", handlers.Auth.GoogleStart)
			auth.Get("/google/callback", handlers.Auth.GoogleCallback)
			auth.With(authMiddleware.RequireAuth).Post("/logout", handlers.Auth.Logout)
			auth.With(authMiddleware.RequireAuth).Post("/change-password", handlers.Auth.ChangePassword)
			auth.With(authMiddleware.RequireAuth).Post("/set-password", handlers.Auth.SetPassword)
			auth.With(authMiddleware.RequireAuth).Get("/profile", handlers.Auth.Profile)
		})

		api.Route("/todos", func(todos chi.Router) {
			todos.Use(authMiddleware.RequireAuth)
			todos.Post("/", handlers.Todo.Create)
			todos.Get("/", handlers.Todo.List)
			todos.Get("/{id}", handlers.Todo.Get)
			todos.Patch("/{id}", handlers.Todo.Update)
			todos.Delete("/{id}", handlers.Todo.Delete)
		})
	})

	return r
}
