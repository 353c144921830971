package model

import "time"

// User is the identity record for one account. An account always carries at
// least one authentication method: a bcrypt password hash, a linked Google
// account, or both. RefreshToken holds the single currently valid refresh
// token; nil means no active session.
type User struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  *string   `json:"-"`
	GoogleID      *string   `json:"-"`
	Name          *string   `json:"name"`
	Picture       *string   `json:"picture"`
	EmailVerified bool      `json:"email_verified"`
	RefreshToken  *string   `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewUser carries the fields the caller controls at creation time. The id and
// timestamps are assigned by the store.
type NewUser struct {
	Email         string
	PasswordHash  *string
	GoogleID      *string
	Name          *string
	Picture       *string
	EmailVerified bool
}

// UserSummary is the public projection of a user embedded in auth responses.
type UserSummary struct {
	ID      int64   `json:"id"`
	Email   string  `json:"email"`
	Name    *string `json:"name"`
	Picture *string `json:"picture"`
}

// Profile is the authenticated user's own view of their account, including
// which authentication methods are available.
type Profile struct {
	ID               int64   `json:"id"`
	Email            string  `json:"email"`
	Name             *string `json:"name"`
	Picture          *string `json:"picture"`
	EmailVerified    bool    `json:"email_verified"`
	HasPassword      bool    `json:"has_password"`
	HasGoogleAccount bool    `json:"has_google_account"`
}

func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Name: u.Name, Picture: u.Picture}
}

func (u User) Profile() Profile {
	return Profile{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Picture:          u.Picture,
		EmailVerified:    u.EmailVerified,
		HasPassword:      u.PasswordHash != nil,
		HasGoogleAccount: u.GoogleID != nil,
	}
}
