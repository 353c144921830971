package service

import (
	"context"
	"errors"
	"fmt"

	"task-tracker/internal/model"
)

// IdentityResolver reconciles a verified federated assertion against the
// credential store. Linking policy: when the asserted email already belongs to
// a local account, the Google identity is silently attached to it and the
// email is marked verified. Repeat logins resolve by google id first and are
// idempotent.
type IdentityResolver struct {
	users UserStore
}

func NewIdentityResolver(users UserStore) *IdentityResolver {
	return &IdentityResolver{users: users}
}

func (r *IdentityResolver) Resolve(ctx context.Context, assertion FederatedAssertion) (model.User, error) {
	user, err := r.users.FindByGoogleID(ctx, assertion.GoogleID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, fmt.Errorf("resolve federated identity: %w", err)
	}

	user, err = r.users.FindByEmail(ctx, assertion.Email)
	if err == nil {
		if err := r.users.LinkGoogleAccount(ctx, user.ID, assertion.GoogleID, assertion.Picture); err != nil {
			return model.User{}, fmt.Errorf("link google account: %w", err)
		}

		user.GoogleID = &assertion.GoogleID
		user.EmailVerified = true
		if user.Picture == nil {
			user.Picture = assertion.Picture
		}
		return user, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, fmt.Errorf("resolve federated identity: %w", err)
	}

	// First federated login: the account starts password-less, with the
	// provider vouching for the email.
	created, err := r.users.Create(ctx, model.NewUser{
		Email:         assertion.Email,
		GoogleID:      &assertion.GoogleID,
		Name:          assertion.Name,
		Picture:       assertion.Picture,
		EmailVerified: true,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("create federated user: %w", err)
	}
	return created, nil
}
