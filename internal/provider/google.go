// Package provider adapts external federated-identity providers to the
// assertion tuple the auth core consumes.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"task-tracker/internal/service"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProvider runs the authorization-code flow against Google and turns the
// resulting userinfo document into a FederatedAssertion. Only the transport
// layer talks to it; the auth core sees the assertion alone.
type GoogleProvider struct {
	oauth *oauth2.Config
}

func NewGoogleProvider(clientID string, clientSecret string, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthCodeURL returns the consent-screen URL for the given anti-CSRF state.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

type googleUserinfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Exchange redeems the authorization code and fetches the user's profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (service.FederatedAssertion, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return service.FederatedAssertion{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	resp, err := p.oauth.Client(ctx, token).Get(googleUserinfoURL)
	if err != nil {
		return service.FederatedAssertion{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return service.FederatedAssertion{}, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}

	var info googleUserinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return service.FederatedAssertion{}, fmt.Errorf("decode userinfo: %w", err)
	}

	if info.ID == "" || info.Email == "" {
		return service.FederatedAssertion{}, fmt.Errorf("userinfo response missing id or email")
	}

	assertion := service.FederatedAssertion{
		Email:    info.Email,
		GoogleID: info.ID,
	}
	if info.Name != "" {
		assertion.Name = &info.Name
	}
	if info.Picture != "" {
		assertion.Picture = &info.Picture
	}

	return assertion, nil
}
