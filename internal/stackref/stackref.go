// Package stackref turns command line stack references into (name, version)
// pairs. A reference is a stack name, a version, or the path of a Senza
// definition standing in for the stack name it declares.
package stackref

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/balaji-balu/lizzy-client/pkg/model"
	"github.com/balaji-balu/lizzy-client/pkg/senza"
)

var versionToken = regexp.MustCompile(`^v[0-9][a-zA-Z0-9-]*$`)

// Reference identifies a stack. An empty Version means "any version".
type Reference struct {
	Name    string
	Version string
}

func (r Reference) HasVersion() bool {
	return r.Version != ""
}

// ID is the agent identifier for the reference.
func (r Reference) ID() string {
	return model.StackID(r.Name, r.Version)
}

func (r Reference) String() string {
	return r.ID()
}

// InvalidDefinitionError reports a file argument that is not a usable
// definition.
type InvalidDefinitionError struct {
	Path string
	Err  error
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("Invalid definition %s", e.Path)
}

func (e *InvalidDefinitionError) Unwrap() error {
	return e.Err
}

// IsVersion reports whether token looks like an extra version of the
// previous stack ("v1", "v42-hotfix").
func IsVersion(token string) bool {
	return versionToken.MatchString(token)
}

// Resolve pairs tokens left to right. A name consumes the following token as
// its version; tokens matching IsVersion after a resolved name add further
// versions of that same stack:
//
//	foobar-stack v1 v2 other-stack -> (foobar-stack,v1) (foobar-stack,v2) (other-stack,)
func Resolve(tokens []string) ([]Reference, error) {
	refs := make([]Reference, 0, len(tokens))
	lastName := ""

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]
		if lastName != "" && IsVersion(token) {
			refs = append(refs, Reference{Name: lastName, Version: token})
			continue
		}

		name, err := resolveName(token)
		if err != nil {
			return nil, err
		}

		version := ""
		if i+1 < len(tokens) {
			i++
			version = tokens[i]
		}
		refs = append(refs, Reference{Name: name, Version: version})
		lastName = name
	}
	return refs, nil
}

// ResolveNames maps every token to a stack name without pairing versions.
// It is what list uses to build the agent's references filter.
func ResolveNames(tokens []string) ([]string, error) {
	names := make([]string, 0, len(tokens))
	for _, token := range tokens {
		name, err := resolveName(token)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// resolveName returns the declared stack name when token is a regular file
// and the token itself otherwise.
func resolveName(token string) (string, error) {
	info, err := os.Stat(token)
	if err != nil || !info.Mode().IsRegular() {
		return token, nil
	}

	name, err := senza.ReadStackName(token)
	if err != nil {
		return "", &InvalidDefinitionError{Path: token, Err: err}
	}
	return name, nil
}

// AllVersioned reports whether every reference names a single version.
func AllVersioned(refs []Reference) bool {
	for _, ref := range refs {
		if !ref.HasVersion() {
			return false
		}
	}
	return true
}

// IsInvalidDefinition reports whether err came from an unusable definition file.
func IsInvalidDefinition(err error) bool {
	var invalid *InvalidDefinitionError
	return errors.As(err, &invalid)
}
