package orchestrator

import (
	"errors"

	"github.com/balaji-balu/lizzy-client/internal/agent"
)

// FatalError ends a command with Message printed as is.
type FatalError struct {
	Message string
	Err     error
}

func (e *FatalError) Error() string {
	return e.Message
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatal(msg string, err error) *FatalError {
	return &FatalError{Message: msg, Err: err}
}

// ErrorLines renders err for the terminal. Connection failures give the
// short reason, agent errors the prefixed agent detail.
func ErrorLines(err error) []string {
	var connErr *agent.ConnectionError
	if errors.As(err, &connErr) {
		return []string{"Error: " + connErr.Reason()}
	}
	var agentErr *agent.AgentError
	if errors.As(err, &agentErr) {
		return agentErr.Lines()
	}
	var fatalErr *FatalError
	if errors.As(err, &fatalErr) {
		return []string{fatalErr.Message}
	}
	return []string{"Error: " + err.Error()}
}
