package senza

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadStackName(t *testing.T) {
	path := writeFile(t, "senza.yaml", "\nSenzaInfo:\n  StackName: insidefile\n")

	name, err := ReadStackName(path)
	if err != nil {
		t.Fatalf("ReadStackName failed: %v", err)
	}
	if name != "insidefile" {
		t.Fatalf("expected insidefile, got %s", name)
	}
}

func TestReadStackNameInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"no senza info", "NotValid: impossible\n", ErrMissingSenzaInfo},
		{"no stack name", "SenzaInfo:\n  Parameters: []\n", ErrMissingStackName},
		{"senza info list", "SenzaInfo: [Something]\n", ErrMissingStackName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "senza.yaml", tt.content)
			_, err := ReadStackName(path)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseKeepsRawDefinition(t *testing.T) {
	raw := "SenzaInfo: [Something]\n"
	def, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if def.Raw != raw {
		t.Fatalf("expected raw %q, got %q", raw, def.Raw)
	}
}

func TestLoadFromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/senza.yaml" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("SenzaInfo:\n  StackName: remote\n"))
	}))
	defer server.Close()

	def, err := Load(context.Background(), server.URL+"/senza.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	name, err := def.StackName()
	if err != nil {
		t.Fatal(err)
	}
	if name != "remote" {
		t.Fatalf("expected remote, got %s", name)
	}

	if _, err := Load(context.Background(), server.URL+"/missing.yaml"); err == nil {
		t.Fatal("expected error for missing remote definition")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestReadParameterFile(t *testing.T) {
	path := writeFile(t, "params.yaml", "param1: value1\nImageVersion: \"42\"\nzone: b\n")

	params, err := ReadParameterFile(path)
	if err != nil {
		t.Fatalf("ReadParameterFile failed: %v", err)
	}
	want := []string{"param1=value1", "ImageVersion=42", "zone=b"}
	if diff := cmp.Diff(want, params); diff != "" {
		t.Fatalf("parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestReadParameterFileRejectsNested(t *testing.T) {
	path := writeFile(t, "params.yaml", "param1:\n  nested: true\n")
	if _, err := ReadParameterFile(path); err == nil {
		t.Fatal("expected error for nested parameter")
	}
}
