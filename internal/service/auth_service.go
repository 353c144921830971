package service

import (
	"context"
	"errors"
	"fmt"

	"task-tracker/internal/model"
)

// Credential is the closed set of ways a caller can authenticate: a local
// email/password pair or a provider-verified federated assertion.
type Credential interface {
	credential()
}

type LocalCredential struct {
	Email    string
	Password string
}

// FederatedAssertion is the verified identity tuple handed over by the OAuth
// transport after a successful provider flow. The core never talks to the
// provider itself.
type FederatedAssertion struct {
	Email    string
	GoogleID string
	Name     *string
	Picture  *string
}

func (LocalCredential) credential()    {}
func (FederatedAssertion) credential() {}

// AuthService orchestrates registration, both login paths, refresh-token
// rotation and the password management flows. It is stateless apart from the
// credential store; each call is an independent request-scoped unit of work.
type AuthService struct {
	users    UserStore
	hasher   *PasswordHasher
	tokens   *TokenIssuer
	resolver *IdentityResolver
}

func NewAuthService(users UserStore, hasher *PasswordHasher, tokens *TokenIssuer) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		resolver: NewIdentityResolver(users),
	}
}

// Register creates a local account and immediately logs it in, so the caller
// observes registration and first session as one step.
func (s *AuthService) Register(ctx context.Context, email string, password string, name *string) (model.AuthResponse, error) {
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return model.AuthResponse{}, model.ErrEmailTaken
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return model.AuthResponse{}, fmt.Errorf("check existing email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	// The unique index backs up the lookup above: a racing duplicate insert
	// still surfaces as ErrEmailTaken.
	user, err := s.users.Create(ctx, model.NewUser{
		Email:         email,
		PasswordHash:  &hash,
		Name:          name,
		EmailVerified: false,
	})
	if err != nil {
		return model.AuthResponse{}, err
	}

	return s.startSession(ctx, user)
}

// Login authenticates one of the closed credential variants and starts a
// session, overwriting any previously stored refresh token.
func (s *AuthService) Login(ctx context.Context, cred Credential) (model.AuthResponse, error) {
	switch c := cred.(type) {
	case LocalCredential:
		return s.loginLocal(ctx, c)
	case FederatedAssertion:
		return s.loginFederated(ctx, c)
	default:
		return model.AuthResponse{}, fmt.Errorf("unsupported credential type %T", cred)
	}
}

func (s *AuthService) loginLocal(ctx context.Context, cred LocalCredential) (model.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, cred.Email)
	if errors.Is(err, model.ErrUserNotFound) {
		// Same error for a missing account, a password-less account, and a
		// wrong password: responses must not reveal which check failed.
		return model.AuthResponse{}, model.ErrInvalidCredentials
	}
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("find user for login: %w", err)
	}

	if user.PasswordHash == nil || !s.hasher.Verify(cred.Password, *user.PasswordHash) {
		return model.AuthResponse{}, model.ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

func (s *AuthService) loginFederated(ctx context.Context, assertion FederatedAssertion) (model.AuthResponse, error) {
	user, err := s.resolver.Resolve(ctx, assertion)
	if err != nil {
		return model.AuthResponse{}, err
	}

	return s.startSession(ctx, user)
}

// RefreshTokens exchanges a valid refresh token for a new pair. Overwriting
// the single stored value is the rotation: the presented token stops matching
// and can never be replayed. Two concurrent calls with the same token may both
// succeed; the pair whose write lands last wins and both verify until expiry.
func (s *AuthService) RefreshTokens(ctx context.Context, userID int64, presented string) (model.AuthResponse, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.AuthResponse{}, model.ErrInvalidRefreshToken
	}
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("find user for refresh: %w", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != presented {
		return model.AuthResponse{}, model.ErrInvalidRefreshToken
	}

	return s.startSession(ctx, user)
}

// Logout clears the stored refresh token. Calling it for a user with no active
// session is a no-op.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.users.UpdateRefreshToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword string, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user for password change: %w", err)
	}

	if user.PasswordHash == nil {
		return model.ErrPasswordNotSet
	}

	if !s.hasher.Verify(currentPassword, *user.PasswordHash) {
		return model.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("store new password: %w", err)
	}
	return nil
}

// SetInitialPassword adds a password to a federated-only account. It refuses
// to run when a password already exists (use ChangePassword) and when the
// account has no federated identity, which would otherwise risk locking the
// user out of every method on a bad password.
func (s *AuthService) SetInitialPassword(ctx context.Context, userID int64, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user for initial password: %w", err)
	}

	if user.PasswordHash != nil {
		return model.ErrPasswordAlreadySet
	}

	if user.GoogleID == nil {
		return model.ErrNoFallbackAuth
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("store initial password: %w", err)
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (model.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return user.Profile(), nil
}

// VerifyAccessToken exposes access-token verification to the transport layer.
func (s *AuthService) VerifyAccessToken(raw string) (Claims, error) {
	return s.tokens.VerifyAccess(raw)
}

// VerifyRefreshToken parses a presented refresh token and returns the user id
// it was issued to. The match against the stored token happens in
// RefreshTokens; this only proves the token was minted here and is unexpired.
func (s *AuthService) VerifyRefreshToken(raw string) (int64, error) {
	claims, err := s.tokens.VerifyRefresh(raw)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}

// startSession issues a fresh token pair and persists the refresh token as the
// user's single active session.
func (s *AuthService) startSession(ctx context.Context, user model.User) (model.AuthResponse, error) {
	access, err := s.tokens.IssueAccess(user)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := s.tokens.IssueRefresh(user)
	if err != nil {
		return model.AuthResponse{}, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, &refresh); err != nil {
		return model.AuthResponse{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return model.AuthResponse{
		User:         user.Summary(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
