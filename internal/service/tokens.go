package service

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"task-tracker/internal/model"
)

// Claims is the fixed payload carried by both token kinds: the user id as a
// decimal string in the standard subject claim, plus the account email.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the subject as a user id. A subject that is absent or does
// not parse to a positive integer means the token was not minted here.
func (c Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrTokenInvalid
	}
	return id, nil
}

// TokenIssuer creates and verifies the signed access/refresh token pair.
// The two kinds are signed with distinct secrets so a leaked access-token
// secret cannot be used to mint refresh tokens.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(accessSecret string, refreshSecret string, accessTTL time.Duration, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (ti *TokenIssuer) IssueAccess(user model.User) (string, error) {
	return ti.sign(user, ti.accessSecret, ti.accessTTL)
}

func (ti *TokenIssuer) IssueRefresh(user model.User) (string, error) {
	return ti.sign(user, ti.refreshSecret, ti.refreshTTL)
}

func (ti *TokenIssuer) VerifyAccess(raw string) (Claims, error) {
	return ti.verify(raw, ti.accessSecret)
}

func (ti *TokenIssuer) VerifyRefresh(raw string) (Claims, error) {
	return ti.verify(raw, ti.refreshSecret)
}

func (ti *TokenIssuer) sign(user model.User, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: strconv.FormatInt(user.ID, 10),
			// The jti keeps tokens minted within the same second distinct,
			// which rotation relies on.
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (ti *TokenIssuer) verify(raw string, secret []byte) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrTokenInvalid
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, model.ErrTokenExpired
		}
		return Claims{}, model.ErrTokenInvalid
	}
	if !parsed.Valid {
		return Claims{}, model.ErrTokenInvalid
	}

	// Reject well-signed tokens with a malformed payload instead of trusting
	// whatever shape the claims arrived in.
	if _, err := claims.UserID(); err != nil {
		return Claims{}, model.ErrTokenInvalid
	}

	return claims, nil
}
