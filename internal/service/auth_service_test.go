package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"task-tracker/internal/model"
	"task-tracker/internal/repository"
)

func newTestAuthService(t *testing.T) (*AuthService, *repository.MemoryUserStore) {
	t.Helper()

	users := repository.NewMemoryUserStore()
	issuer := NewTokenIssuer("access-secret", "refresh-secret", 15*time.Minute, 168*time.Hour)
	return NewAuthService(users, NewPasswordHasher(), issuer), users
}

func googleAssertion(email string, googleID string) FederatedAssertion {
	name := "Ada Lovelace"
	picture := "https://example.com/ada.png"
	return FederatedAssertion{Email: email, GoogleID: googleID, Name: &name, Picture: &picture}
}

func TestRegisterThenLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newTestAuthService(t)

	registered, err := svc.Register(ctx, "ada@example.com", "password123", nil)
	require.NoError(t, err)
	require.NotEmpty(t, registered.AccessToken)
	require.NotEmpty(t, registered.RefreshToken)

	auth, err := svc.Login(ctx, LocalCredential{Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)
	require.Equal(t, registered.User.ID, auth.User.ID)

	// Claims on the issued access token carry the correct user id.
	claims, err := svc.VerifyAccessToken(auth.AccessToken)
	require.NoError(t, err)
	userID, err := claims.UserID()
	require.NoError(t, err)
	require.Equal(t, auth.User.ID, userID)
	require.Equal(t, "ada@example.com", claims.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, users := newTestAuthService(t)

	_, err := svc.Register(ctx, "ada@example.com", "password123", nil)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ada@example.com", "different-pass", nil)
	require.ErrorIs(t, err, model.ErrEmailTaken)
	require.Equal(t, 1, users.Count())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newTestAuthService(t)

	_, err := svc.Register(ctx, "ada@example.com", "password123", nil)
	require.NoError(t, err)

	_, missingErr := svc.Login(ctx, LocalCredential{Email: "nobody@example.com", Password: "password123"})
	_, wrongPassErr := svc.Login(ctx, LocalCredential{Email: "ada@example.com", Password: "wrong-password"})

	require.ErrorIs(t, missingErr, model.ErrInvalidCredentials)
	require.ErrorIs(t, wrongPassErr, model.ErrInvalidCredentials)
	require.Equal(t, missingErr.Error(), wrongPassErr.Error())

	// A password-less federated account fails local login the same way.
	_, err = svc.Login(ctx, googleAssertion("grace@example.com", "google-123"))
	require.NoError(t, err)
	_, noPassErr := svc.Login(ctx, LocalCredential{Email: "grace@example.com", Password: "password123"})
	require.ErrorIs(t, noPassErr, model.ErrInvalidCredentials)
	require.Equal(t, missingErr.Error(), noPassErr.Error())
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newTestAuthService(t)

	first, err := svc.Register(ctx, "ada@example.com", "password123", nil)
	require.NoError(t, err)

	second, err := svc.RefreshTokens(ctx, first.User.ID, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The superseded token is dead after rotation.
	_, err = svc.RefreshTokens(ctx, first.User.ID, first.RefreshToken)
	require.ErrorIs(t, err, model.ErrInvalidRefreshToken)

	// The current one keeps working.
	third, err := svc.RefreshTokens(ctx, first.User.ID, second.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, second.RefreshToken, third.RefreshToken)
}

func TestRefreshForUnknownUserOrNoSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newTestAuthService(t)

	_, err := svc.RefreshTokens(ctx, 9999, "whatever")
	require.ErrorIs(t, err, model.ErrInvalidRefreshToken)
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newTestAuthService(t)

	auth, err := svc.Register(ctx, "ada@example.com", "password123", nil)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, auth.User.ID))

	_, err = svc.RefreshTokens(ctx, auth.User.ID, auth.RefreshToken)
	require.ErrorIs(t, err, model.ErrInvalidRefreshToken)

	// Logout is idempotent.
	require.NoError(t, svc.Logout(ctx, auth.User.ID))
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newTestAuthService(t)

	auth, err := svc.Register(ctx, "ada@example.com", "old-password", nil)
	require.NoError(t, err)

	t.Run("wrong current password leaves the hash unchanged", func(t *testing.T) {
		err := svc.ChangePassword(ctx, auth.User.ID, "not-the-password", "new-password")
		require.ErrorIs(t, err, model.ErrInvalidCredentials)

		_, err = svc.Login(ctx, LocalCredential{Email: "ada@example.com", Password: "old-password"})
		require.NoError(t, err)
	})

	t.Run("correct current password rotates the hash", func(t *testing.T) {
		require.NoError(t, svc.ChangePassword(ctx, auth.User.ID, "old-password", "new-password"))

		_, err := svc.Login(ctx, LocalCredential{Email: "ada@example.com", Password: "old-password"})
		require.ErrorIs(t, err, model.ErrInvalidCredentials)
		_, err = svc.Login(ctx, LocalCredential{Email: "ada@example.com", Password: "new-password"})
		require.NoError(t, err)
	})

	t.Run("password-less account cannot change a password", func(t *testing.T) {
		fed, err := svc.Login(ctx, googleAssertion("grace@example.com", "google-123"))
		require.NoError(t, err)

		err = svc.ChangePassword(ctx, fed.User.ID, "anything", "new-password")
		require.ErrorIs(t, err, model.ErrPasswordNotSet)
	})
}

func TestSetInitialPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, users := newTestAuthService(t)

	t.Run("federated-only account gains a password", func(t *testing.T) {
		fed, err := svc.Login(ctx, googleAssertion("grace@example.com", "google-123"))
		require.NoError(t, err)

		require.NoError(t, svc.SetInitialPassword(ctx, fed.User.ID, "fresh-password"))

		_, err = svc.Login(ctx, LocalCredential{Email: "grace@example.com", Password: "fresh-password"})
		require.NoError(t, err)

		// A second attempt must go through change-password instead.
		err = svc.SetInitialPassword(ctx, fed.User.ID, "another-password")
		require.ErrorIs(t, err, model.ErrPasswordAlreadySet)
	})

	t.Run("local account already has a password", func(t *testing.T) {
		auth, err := svc.Register(ctx, "ada@example.com", "password123", nil)
		require.NoError(t, err)

		err = svc.SetInitialPassword(ctx, auth.User.ID, "fresh-password")
		require.ErrorIs(t, err, model.ErrPasswordAlreadySet)
	})

	t.Run("account with no fallback method is refused", func(t *testing.T) {
		// Seed a pathological record with neither method directly in the store.
		orphan, err := users.Create(ctx, model.NewUser{Email: "orphan@example.com"})
		require.NoError(t, err)

		err = svc.SetInitialPassword(ctx, orphan.ID, "fresh-password")
		require.ErrorIs(t, err, model.ErrNoFallbackAuth)
	})
}

func TestFederatedLoginIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, users := newTestAuthService(t)

	first, err := svc.Login(ctx, googleAssertion("grace@example.com", "google-123"))
	require.NoError(t, err)
	second, err := svc.Login(ctx, googleAssertion("grace@example.com", "google-123"))
	require.NoError(t, err)

	require.Equal(t, first.User.ID, second.User.ID)
	require.Equal(t, 1, users.Count())
}

func TestFederatedLoginLinksExistingLocalAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, users := newTestAuthService(t)

	local, err := svc.Register(ctx, "ada@example.com", "password123", nil)
	require.NoError(t, err)

	fed, err := svc.Login(ctx, googleAssertion("ada@example.com", "google-456"))
	require.NoError(t, err)
	require.Equal(t, local.User.ID, fed.User.ID)
	require.Equal(t, 1, users.Count())

	profile, err := svc.Profile(ctx, local.User.ID)
	require.NoError(t, err)
	require.True(t, profile.HasPassword)
	require.True(t, profile.HasGoogleAccount)
	require.True(t, profile.EmailVerified)

	// Both methods now authenticate the same account.
	_, err = svc.Login(ctx, LocalCredential{Email: "ada@example.com", Password: "password123"})
	require.NoError(t, err)
}

func TestProfileReportsAuthMethods(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newTestAuthService(t)

	auth, err := svc.Register(ctx, "ada@example.com", "password123", nil)
	require.NoError(t, err)

	profile, err := svc.Profile(ctx, auth.User.ID)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", profile.Email)
	require.True(t, profile.HasPassword)
	require.False(t, profile.HasGoogleAccount)
	require.False(t, profile.EmailVerified)
}
