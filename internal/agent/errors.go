package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/balaji-balu/lizzy-client/pkg/model"
)

// ErrStatusMissing is returned by the poller when the agent answers without
// a status field. It is retried like a failed request.
var ErrStatusMissing = errors.New("stack has no status")

// ConnectionError indicates the agent could not be reached.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %s", e.URL, e.Reason())
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Reason is the short, human readable cause without request details.
func (e *ConnectionError) Reason() string {
	err := e.Err
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Err != nil {
		err = opErr.Err
	}
	return err.Error()
}

// AgentError is a non-2xx answer from the agent.
type AgentError struct {
	StatusCode int
	Detail     string
	Title      string
}

func (e *AgentError) Error() string {
	return e.Message()
}

// Message is the agent's detail, or "<status> <title>" when it sent none.
func (e *AgentError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Title)
}

// Lines returns the message prefixed the way agent output is displayed.
func (e *AgentError) Lines() []string {
	return prefixLines(e.Message())
}

func newAgentError(statusCode int, body []byte) *AgentError {
	var payload model.ErrorBody
	if err := json.Unmarshal(body, &payload); err != nil {
		detail := strings.TrimSpace(string(body))
		if detail == "" {
			detail = fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode))
		}
		return &AgentError{StatusCode: statusCode, Detail: detail, Title: http.StatusText(statusCode)}
	}

	agentErr := &AgentError{StatusCode: statusCode, Detail: payload.Detail, Title: payload.Title}
	if payload.Status != 0 {
		agentErr.StatusCode = payload.Status
	}
	if agentErr.Title == "" {
		agentErr.Title = http.StatusText(statusCode)
	}
	return agentErr
}

// IsConnectionError reports whether err is a transport failure.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsNotFound reports whether the agent answered 404.
func IsNotFound(err error) bool {
	var agentErr *AgentError
	return errors.As(err, &agentErr) && agentErr.StatusCode == http.StatusNotFound
}
