package model

import "errors"

var (
	// Account related errors
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("user with this email already exists")

	// Credential related errors. ErrInvalidCredentials covers both "no such
	// user" and "wrong password" so responses cannot be used to enumerate
	// accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordNotSet     = errors.New("account has no password set")
	ErrPasswordAlreadySet = errors.New("password already set")
	ErrNoFallbackAuth     = errors.New("no alternative authentication method")

	// Token related errors
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")

	// Todo related errors
	ErrTodoNotFound = errors.New("todo not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
