package service

import (
	"context"

	"task-tracker/internal/model"
)

// TodoService is user-scoped task CRUD. Ownership is enforced by the store:
// every lookup carries the caller's user id, so rows belonging to other users
// are indistinguishable from missing ones.
type TodoService struct {
	todos TodoStore
}

func NewTodoService(todos TodoStore) *TodoService {
	return &TodoService{todos: todos}
}

func (s *TodoService) Create(ctx context.Context, userID int64, title string) (model.Todo, error) {
	return s.todos.Create(ctx, userID, title)
}

func (s *TodoService) List(ctx context.Context, userID int64) ([]model.Todo, error) {
	return s.todos.ListByUser(ctx, userID)
}

func (s *TodoService) Get(ctx context.Context, id int64, userID int64) (model.Todo, error) {
	return s.todos.FindByID(ctx, id, userID)
}

func (s *TodoService) Update(ctx context.Context, id int64, userID int64, patch model.UpdateTodoRequest) (model.Todo, error) {
	todo, err := s.todos.FindByID(ctx, id, userID)
	if err != nil {
		return model.Todo{}, err
	}

	if patch.Title != nil {
		todo.Title = *patch.Title
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}

	return s.todos.Update(ctx, todo)
}

func (s *TodoService) Delete(ctx context.Context, id int64, userID int64) error {
	return s.todos.Delete(ctx, id, userID)
}
