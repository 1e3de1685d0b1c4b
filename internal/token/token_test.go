package token

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func credentialsDir(t *testing.T, user map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	write := func(name string, v any) {
		data, _ := json.Marshal(v)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("client.json", map[string]string{"client_id": "cid", "client_secret": "csecret"})
	if user != nil {
		write("user.json", user)
	}
	return dir
}

func noEnv(string) string { return "" }

func tokenServer(t *testing.T, wantPassword string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, secret, ok := r.BasicAuth()
		if !ok || id != "cid" || secret != "csecret" {
			t.Errorf("expected client basic auth, got %q %q", id, secret)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.Form.Get("grant_type") != "password" {
			t.Errorf("expected password grant, got %s", r.Form.Get("grant_type"))
		}
		if r.Form.Get("scope") != "uid write" {
			t.Errorf("expected scopes, got %q", r.Form.Get("scope"))
		}
		if r.Form.Get("password") != wantPassword {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"4CC3557OCC3N","token_type":"Bearer","expires_in":3600}`))
	}))
}

func TestTokenPasswordGrant(t *testing.T) {
	server := tokenServer(t, "secret")
	defer server.Close()

	dir := credentialsDir(t, map[string]string{"application_username": "robot", "application_password": "secret"})
	p := &Provider{HTTPClient: server.Client(), Getenv: noEnv}

	tok, err := p.Token(context.Background(), server.URL, []string{"uid", "write"}, dir)
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok != "4CC3557OCC3N" {
		t.Fatalf("expected token, got %s", tok)
	}
}

func TestTokenRejected(t *testing.T) {
	server := tokenServer(t, "secret")
	defer server.Close()

	dir := credentialsDir(t, map[string]string{"application_username": "robot", "application_password": "wrong"})
	p := &Provider{HTTPClient: server.Client(), Getenv: noEnv}

	_, err := p.Token(context.Background(), server.URL, []string{"uid", "write"}, dir)
	var invalid *InvalidCredentialsError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCredentialsError, got %v", err)
	}
	if invalid.Reason != "401 Client Error" {
		t.Fatalf("unexpected reason %q", invalid.Reason)
	}
}

func TestTokenPasswordFromKeyring(t *testing.T) {
	keyring.MockInit()
	server := tokenServer(t, "from-keyring")
	defer server.Close()

	if err := StorePassword("robot", "from-keyring"); err != nil {
		t.Fatal(err)
	}
	dir := credentialsDir(t, map[string]string{"application_username": "robot"})
	p := &Provider{HTTPClient: server.Client(), Getenv: noEnv}

	tok, err := p.Token(context.Background(), server.URL, []string{"uid", "write"}, dir)
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok != "4CC3557OCC3N" {
		t.Fatalf("expected token, got %s", tok)
	}
}

func TestTokenMissingCredentials(t *testing.T) {
	keyring.MockInit()
	p := &Provider{Getenv: noEnv}

	_, err := p.Token(context.Background(), "https://token.example", nil, t.TempDir())
	var invalid *InvalidCredentialsError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCredentialsError, got %v", err)
	}

	dir := credentialsDir(t, map[string]string{"application_username": "nobody"})
	_, err = p.Token(context.Background(), "https://token.example", nil, dir)
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidCredentialsError without password, got %v", err)
	}
}

func TestTokenFromEnvironment(t *testing.T) {
	p := &Provider{Getenv: func(key string) string {
		if key == EnvAccessTokens {
			return "other=abc, lizzy=7E5770K3N"
		}
		return ""
	}}

	tok, err := p.Token(context.Background(), "https://unused.example", nil, t.TempDir())
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if tok != "7E5770K3N" {
		t.Fatalf("expected static token, got %s", tok)
	}
}
