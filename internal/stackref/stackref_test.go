package stackref

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func definitionFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "senza.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   []Reference
	}{
		{
			name:   "single name",
			tokens: []string{"foobar-stack"},
			want:   []Reference{{Name: "foobar-stack"}},
		},
		{
			name:   "name and version",
			tokens: []string{"foobar-stack", "1"},
			want:   []Reference{{Name: "foobar-stack", Version: "1"}},
		},
		{
			name:   "version then new name",
			tokens: []string{"foobar-stack", "1", "other-stack"},
			want: []Reference{
				{Name: "foobar-stack", Version: "1"},
				{Name: "other-stack"},
			},
		},
		{
			name:   "extra versions",
			tokens: []string{"foobar-stack", "v1", "v2", "v99", "other-stack"},
			want: []Reference{
				{Name: "foobar-stack", Version: "v1"},
				{Name: "foobar-stack", Version: "v2"},
				{Name: "foobar-stack", Version: "v99"},
				{Name: "other-stack"},
			},
		},
		{
			name:   "names only pair up",
			tokens: []string{"a", "b"},
			want:   []Reference{{Name: "a", Version: "b"}},
		},
		{
			name:   "empty",
			tokens: nil,
			want:   []Reference{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.tokens)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("references mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResolveDefinitionFile(t *testing.T) {
	path := definitionFile(t, "\nSenzaInfo:\n  StackName: insidefile\n")

	got, err := Resolve([]string{path, "v3", "v4"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want := []Reference{
		{Name: "insidefile", Version: "v3"},
		{Name: "insidefile", Version: "v4"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}

	// the version slot is taken literally, even when it names a file
	got, err = Resolve([]string{"foobar", path})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	want = []Reference{{Name: "foobar", Version: path}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("references mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveNames(t *testing.T) {
	got, err := ResolveNames([]string{"foo", "bar"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"foo", "bar"}, got); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	path := definitionFile(t, "\nSenzaInfo:\n  StackName: insidefile\n")
	got, err = ResolveNames([]string{"foobar", path})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"foobar", "insidefile"}, got); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	dir := t.TempDir()
	got, err = ResolveNames([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{dir}, got); diff != "" {
		t.Fatalf("directories should be kept literally (-want +got):\n%s", diff)
	}
}

func TestResolveInvalidDefinition(t *testing.T) {
	for name, content := range map[string]string{
		"missing senza info": "\nNotValid: impossible\n",
		"not yaml":           "{{INVALID}}:file",
	} {
		t.Run(name, func(t *testing.T) {
			path := definitionFile(t, content)

			_, err := Resolve([]string{path})
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsInvalidDefinition(err) {
				t.Fatalf("expected InvalidDefinitionError, got %T", err)
			}
			if !strings.HasPrefix(err.Error(), "Invalid definition") {
				t.Fatalf("unexpected message %q", err.Error())
			}

			if _, err := ResolveNames([]string{path}); !IsInvalidDefinition(err) {
				t.Fatalf("expected InvalidDefinitionError from ResolveNames, got %v", err)
			}
		})
	}
}

func TestAllVersioned(t *testing.T) {
	if !AllVersioned([]Reference{{Name: "a", Version: "1"}}) {
		t.Fatal("expected all versioned")
	}
	if AllVersioned([]Reference{{Name: "a", Version: "1"}, {Name: "b"}}) {
		t.Fatal("expected not all versioned")
	}
}

func TestReferenceID(t *testing.T) {
	if got := (Reference{Name: "stack", Version: "v1"}).ID(); got != "stack-v1" {
		t.Fatalf("expected stack-v1, got %s", got)
	}
	if got := (Reference{Name: "stack"}).ID(); got != "stack" {
		t.Fatalf("expected stack, got %s", got)
	}
}
