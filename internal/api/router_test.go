package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/balaji-balu/lizzy-client/internal/api/middleware"
	"github.com/balaji-balu/lizzy-client/internal/api/store"
	"github.com/balaji-balu/lizzy-client/pkg/model"
)

func newTestRouter(token string) (http.Handler, *store.Store) {
	st := store.New()
	r := NewRouter(RouterConfig{
		Store:    st,
		Recorder: &middleware.Recorder{},
		Token:    token,
		Version:  func() string { return "9.9" },
		Output:   func() string { return "line one\nline two" },
	})
	return r, st
}

func TestBearerAuth(t *testing.T) {
	r, _ := newTestRouter("secret")

	for _, tc := range []struct {
		auth string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer wrong", http.StatusUnauthorized},
		{"Bearer secret", http.StatusOK},
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/stacks", nil)
		if tc.auth != "" {
			req.Header.Set("Authorization", tc.auth)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("auth %q: expected %d, got %d", tc.auth, tc.want, w.Code)
		}
	}
}

func TestEnvelopeHeaders(t *testing.T) {
	r, _ := newTestRouter("")
	req := httptest.NewRequest(http.MethodGet, "/api/stacks", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Lizzy-Version"); got != "9.9" {
		t.Fatalf("expected version 9.9, got %q", got)
	}
	if got := w.Header().Get("X-Lizzy-Output"); got != `line one\nline two` {
		t.Fatalf("expected escaped output, got %q", got)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Fatalf("expected empty list, got %s", body)
	}
}

func TestGetStackWithoutStatus(t *testing.T) {
	r, st := newTestRouter("")
	st.Put(model.Stack{StackName: "kio", Version: "1"}, "")
	st.Script("kio-1", "")

	req := httptest.NewRequest(http.MethodGet, "/api/stacks/kio-1", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), `"status"`) {
		t.Fatalf("expected no status field, got %s", w.Body.String())
	}
}

func TestGetStackNotFound(t *testing.T) {
	r, _ := newTestRouter("")
	req := httptest.NewRequest(http.MethodGet, "/api/stacks/nope-1", nil)
	req.Header.Set("Authorization", "Bearer x")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"detail":"Stack not found"`) {
		t.Fatalf("expected problem body, got %s", w.Body.String())
	}
}
