package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"task-tracker/internal/model"
)

// TodoRepository persists task rows. Every query carries the owning user id so
// one tenant can never read or mutate another tenant's rows.
type TodoRepository struct {
	pool *pgxpool.Pool
}

func NewTodoRepository(pool *pgxpool.Pool) *TodoRepository {
	return &TodoRepository{pool: pool}
}

func (r *TodoRepository) Create(ctx context.Context, userID int64, title string) (model.Todo, error) {
	var t model.Todo
	err := r.pool.QueryRow(ctx,
		`INSERT INTO todos (user_id, title)
		 VALUES ($1, $2)
		 RETURNING id, user_id, title, completed, created_at, updated_at`,
		userID, title).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return t, nil
}

func (r *TodoRepository) ListByUser(ctx context.Context, userID int64) ([]model.Todo, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, title, completed, created_at, updated_at
		 FROM todos WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]model.Todo, 0)
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (r *TodoRepository) FindByID(ctx context.Context, id int64, userID int64) (model.Todo, error) {
	var t model.Todo
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, completed, created_at, updated_at
		 FROM todos WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Completed, &t.CreatedAt, &t.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Todo{}, model.ErrTodoNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("find todo by id: %w", err)
	}
	return t, nil
}

func (r *TodoRepository) Update(ctx context.Context, t model.Todo) (model.Todo, error) {
	var updated model.Todo
	err := r.pool.QueryRow(ctx,
		`UPDATE todos SET title = $3, completed = $4, updated_at = $5
		 WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, title, completed, created_at, updated_at`,
		t.ID, t.UserID, t.Title, t.Completed, time.Now().UTC()).
		Scan(&updated.ID, &updated.UserID, &updated.Title, &updated.Completed,
			&updated.CreatedAt, &updated.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Todo{}, model.ErrTodoNotFound
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("update todo: %w", err)
	}
	return updated, nil
}

func (r *TodoRepository) Delete(ctx context.Context, id int64, userID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM todos WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrTodoNotFound
	}
	return nil
}
