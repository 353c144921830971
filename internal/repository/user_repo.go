package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"task-tracker/internal/model"
)

// UserRepository is the credential store. Every mutation touches a single row,
// so callers get per-record atomicity without an explicit transaction API.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, email, password_hash, google_id, name, picture,
	        email_verified, refresh_token, created_at, updated_at`

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.GoogleID, &u.Name, &u.Picture,
			&u.EmailVerified, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, strings.TrimSpace(email)).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.GoogleID, &u.Name, &u.Picture,
			&u.EmailVerified, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindByGoogleID(ctx context.Context, googleID string) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE google_id = $1`, googleID).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.GoogleID, &u.Name, &u.Picture,
			&u.EmailVerified, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by google id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, nu model.NewUser) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, google_id, name, picture, email_verified)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userColumns,
		strings.TrimSpace(nu.Email), nu.PasswordHash, nu.GoogleID, nu.Name, nu.Picture, nu.EmailVerified).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.GoogleID, &u.Name, &u.Picture,
			&u.EmailVerified, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return model.User{}, model.ErrEmailTaken
	}
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// UpdateRefreshToken overwrites the single stored refresh token. A nil token
// clears the active session.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID int64, token *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $2, updated_at = $3 WHERE id = $1`,
		userID, token, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		userID, passwordHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// LinkGoogleAccount attaches a federated identity to an existing local account
// and marks the email verified, since the provider asserts ownership of it.
func (r *UserRepository) LinkGoogleAccount(ctx context.Context, userID int64, googleID string, picture *string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users
		 SET google_id = $2,
		     picture = COALESCE(picture, $3),
		     email_verified = TRUE,
		     updated_at = $4
		 WHERE id = $1`,
		userID, googleID, picture, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("link google account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
