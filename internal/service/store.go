package service

import (
	"context"

	"task-tracker/internal/model"
)

// UserStore is the narrow credential-store contract the auth core depends on.
// Implemented by repository.UserRepository; tests substitute an in-memory fake.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (model.User, error)
	Create(ctx context.Context, nu model.NewUser) (model.User, error)
	UpdateRefreshToken(ctx context.Context, userID int64, token *string) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	LinkGoogleAccount(ctx context.Context, userID int64, googleID string, picture *string) error
}

// TodoStore is the persistence contract for task rows.
type TodoStore interface {
	Create(ctx context.Context, userID int64, title string) (model.Todo, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Todo, error)
	FindByID(ctx context.Context, id int64, userID int64) (model.Todo, error)
	Update(ctx context.Context, t model.Todo) (model.Todo, error)
	Delete(ctx context.Context, id int64, userID int64) error
}
