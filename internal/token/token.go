// Package token obtains OAuth2 access tokens for the agent API using the
// password grant, with the credentials layout of the stups tooling.
package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
)

const (
	// EnvAccessTokens holds pre-issued tokens as "name=token[,name=token]".
	EnvAccessTokens = "OAUTH2_ACCESS_TOKENS"
	// TokenName is the entry looked up in EnvAccessTokens.
	TokenName = "lizzy"
	// KeyringService is the OS keyring service holding user passwords.
	KeyringService = "lizzy-client"
)

// InvalidCredentialsError covers every reason a token could not be obtained.
type InvalidCredentialsError struct {
	Reason string
	Err    error
}

func (e *InvalidCredentialsError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *InvalidCredentialsError) Unwrap() error {
	return e.Err
}

type clientCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

type userCredentials struct {
	Username string `json:"application_username"`
	Password string `json:"application_password"`
}

// Provider fetches tokens. The zero value uses http.DefaultClient and the
// process environment.
type Provider struct {
	HTTPClient *http.Client
	Getenv     func(string) string
}

func New() *Provider {
	return &Provider{}
}

// Token returns an access token for scopes. A token published through
// OAUTH2_ACCESS_TOKENS wins; otherwise the client and user credentials in
// credentialsDir are exchanged at tokenURL.
func (p *Provider) Token(ctx context.Context, tokenURL string, scopes []string, credentialsDir string) (string, error) {
	if static := p.staticToken(); static != "" {
		tok, err := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: static}).Token()
		if err != nil {
			return "", &InvalidCredentialsError{Reason: "invalid static token", Err: err}
		}
		return tok.AccessToken, nil
	}

	var client clientCredentials
	if err := readJSON(filepath.Join(credentialsDir, "client.json"), &client); err != nil {
		return "", &InvalidCredentialsError{Reason: "failed to read client credentials", Err: err}
	}
	var user userCredentials
	if err := readJSON(filepath.Join(credentialsDir, "user.json"), &user); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", &InvalidCredentialsError{Reason: "failed to read user credentials", Err: err}
	}
	if user.Username == "" {
		return "", &InvalidCredentialsError{Reason: "no application username configured"}
	}
	if user.Password == "" {
		password, err := keyring.Get(KeyringService, user.Username)
		if err != nil {
			return "", &InvalidCredentialsError{Reason: fmt.Sprintf("no password for %s", user.Username), Err: err}
		}
		user.Password = password
	}

	cfg := &oauth2.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  withScheme(tokenURL),
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		Scopes: scopes,
	}
	if p.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.HTTPClient)
	}

	tok, err := cfg.PasswordCredentialsToken(ctx, user.Username, user.Password)
	if err != nil {
		var retrieve *oauth2.RetrieveError
		if errors.As(err, &retrieve) && retrieve.Response != nil {
			side := "Client"
			if retrieve.Response.StatusCode >= 500 {
				side = "Server"
			}
			return "", &InvalidCredentialsError{
				Reason: fmt.Sprintf("%d %s Error", retrieve.Response.StatusCode, side),
				Err:    err,
			}
		}
		return "", &InvalidCredentialsError{Reason: "failed to fetch token", Err: err}
	}
	if tok.AccessToken == "" {
		return "", &InvalidCredentialsError{Reason: `"access_token" not on json.`}
	}
	return tok.AccessToken, nil
}

// StorePassword keeps the password of username in the OS keyring.
func StorePassword(username, password string) error {
	if err := keyring.Set(KeyringService, username, password); err != nil {
		return fmt.Errorf("failed to store password in keyring: %w", err)
	}
	return nil
}

func (p *Provider) staticToken() string {
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, entry := range strings.Split(getenv(EnvAccessTokens), ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if ok && name == TokenName && value != "" {
			return value
		}
	}
	return ""
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	return nil
}

func withScheme(u string) string {
	if strings.Contains(u, "://") {
		return u
	}
	return "https://" + u
}
