package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"task-tracker/internal/model"
)

// MemoryUserStore is an in-memory credential store used by tests and local
// development. It mirrors the single-row atomicity of the SQL store: every
// method takes the lock once and mutates at most one record.
type MemoryUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: map[int64]model.User{}}
}

func (s *MemoryUserStore) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == strings.TrimSpace(email) {
			return user, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *MemoryUserStore) FindByGoogleID(_ context.Context, googleID string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.GoogleID != nil && *user.GoogleID == googleID {
			return user, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *MemoryUserStore) Create(_ context.Context, nu model.NewUser) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.TrimSpace(nu.Email)
	for _, user := range s.users {
		if user.Email == email {
			return model.User{}, model.ErrEmailTaken
		}
		if nu.GoogleID != nil && user.GoogleID != nil && *user.GoogleID == *nu.GoogleID {
			return model.User{}, model.ErrEmailTaken
		}
	}

	s.nextID++
	now := time.Now().UTC()
	user := model.User{
		ID:            s.nextID,
		Email:         email,
		PasswordHash:  nu.PasswordHash,
		GoogleID:      nu.GoogleID,
		Name:          nu.Name,
		Picture:       nu.Picture,
		EmailVerified: nu.EmailVerified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryUserStore) UpdateRefreshToken(_ context.Context, userID int64, token *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	user.RefreshToken = token
	user.UpdatedAt = time.Now().UTC()
	s.users[userID] = user
	return nil
}

func (s *MemoryUserStore) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	user.PasswordHash = &passwordHash
	user.UpdatedAt = time.Now().UTC()
	s.users[userID] = user
	return nil
}

func (s *MemoryUserStore) LinkGoogleAccount(_ context.Context, userID int64, googleID string, picture *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return model.ErrUserNotFound
	}
	user.GoogleID = &googleID
	if user.Picture == nil {
		user.Picture = picture
	}
	user.EmailVerified = true
	user.UpdatedAt = time.Now().UTC()
	s.users[userID] = user
	return nil
}

// Count reports the number of stored users.
func (s *MemoryUserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// MemoryTodoStore is the in-memory counterpart of TodoRepository.
type MemoryTodoStore struct {
	mu     sync.Mutex
	nextID int64
	todos  map[int64]model.Todo
}

func NewMemoryTodoStore() *MemoryTodoStore {
	return &MemoryTodoStore{todos: map[int64]model.Todo{}}
}

func (s *MemoryTodoStore) Create(_ context.Context, userID int64, title string) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := time.Now().UTC()
	todo := model.Todo{
		ID:        s.nextID,
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.todos[todo.ID] = todo
	return todo, nil
}

func (s *MemoryTodoStore) ListByUser(_ context.Context, userID int64) ([]model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos := make([]model.Todo, 0)
	for id := int64(1); id <= s.nextID; id++ {
		if todo, ok := s.todos[id]; ok && todo.UserID == userID {
			todos = append(todos, todo)
		}
	}
	return todos, nil
}

func (s *MemoryTodoStore) FindByID(_ context.Context, id int64, userID int64) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, ok := s.todos[id]
	if !ok || todo.UserID != userID {
		return model.Todo{}, model.ErrTodoNotFound
	}
	return todo, nil
}

func (s *MemoryTodoStore) Update(_ context.Context, t model.Todo) (model.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.todos[t.ID]
	if !ok || existing.UserID != t.UserID {
		return model.Todo{}, model.ErrTodoNotFound
	}
	existing.Title = t.Title
	existing.Completed = t.Completed
	existing.UpdatedAt = time.Now().UTC()
	s.todos[t.ID] = existing
	return existing, nil
}

func (s *MemoryTodoStore) Delete(_ context.Context, id int64, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, ok := s.todos[id]
	if !ok || todo.UserID != userID {
		return model.ErrTodoNotFound
	}
	delete(s.todos, id)
	return nil
}
