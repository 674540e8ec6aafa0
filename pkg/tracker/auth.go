package tracker

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// Credentials authenticate against the tracker's OAuth2 token endpoint with
// the resource-owner password grant.
type Credentials struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Email        string
	Password     string
}

func (c Credentials) config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Login exchanges the credentials for a token and returns a source that
// refreshes it as needed. ctx is retained for refreshes and should outlive
// the client.
func Login(ctx context.Context, cred Credentials) (oauth2.TokenSource, error) {
	cfg := cred.config()
	tok, err := cfg.PasswordCredentialsToken(ctx, cred.Email, cred.Password)
	if err != nil {
		return nil, fmt.Errorf("tracker login: %w", err)
	}
	return cfg.TokenSource(ctx, tok), nil
}

// StaticToken returns a source that always yields the given bearer token.
func StaticToken(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}
