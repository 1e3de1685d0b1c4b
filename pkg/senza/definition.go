// Package senza loads Senza deployment definitions and parameter files.
package senza

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
)

var (
	ErrMissingSenzaInfo = errors.New(`"SenzaInfo" entry is missing`)
	ErrMissingStackName = errors.New(`"SenzaInfo.StackName" entry is missing`)
)

// Definition is a parsed Senza definition. Raw is what gets shipped to the
// agent as senza_yaml.
type Definition struct {
	Raw      string
	Document map[string]any
}

// Parse decodes a definition and checks that it carries a SenzaInfo section.
func Parse(data []byte) (*Definition, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}
	if _, ok := doc["SenzaInfo"]; !ok {
		return nil, ErrMissingSenzaInfo
	}
	return &Definition{Raw: string(data), Document: doc}, nil
}

// ParseFile reads and parses the definition at path.
func ParseFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Load accepts a local path or an http(s) URL.
func Load(ctx context.Context, location string) (*Definition, error) {
	if !strings.Contains(location, "://") {
		def, err := ParseFile(location)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", location, err)
		}
		return def, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("%q not found: %w", location, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%q not found: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%q not found: %s", location, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", location, err)
	}
	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", location, err)
	}
	return def, nil
}

// StackName returns SenzaInfo.StackName.
func (d *Definition) StackName() (string, error) {
	info := lookup(d.Document["SenzaInfo"], "StackName")
	name, ok := info.(string)
	if !ok || name == "" {
		return "", ErrMissingStackName
	}
	return name, nil
}

func lookup(node any, key string) any {
	switch m := node.(type) {
	case map[string]any:
		return m[key]
	case map[any]any:
		return m[key]
	}
	return nil
}

// ReadStackName returns the stack name declared by the definition file at path.
func ReadStackName(path string) (string, error) {
	def, err := ParseFile(path)
	if err != nil {
		return "", err
	}
	return def.StackName()
}
