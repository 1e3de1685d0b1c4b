package agent

import (
	"strings"

	"github.com/balaji-balu/lizzy-client/pkg/model"
)

// Outcome is the logical meaning of an agent status string.
type Outcome int

const (
	InProgress Outcome = iota
	Success
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "in_progress"
	}
}

// IsTerminal is the poller's stop rule: the status ends in _FAILED or
// _COMPLETE. Case sensitive.
func IsTerminal(status string) bool {
	return strings.HasSuffix(status, "_FAILED") || strings.HasSuffix(status, "_COMPLETE")
}

// IsRollback reports a stack that completed by rolling back.
func IsRollback(status string) bool {
	return strings.HasSuffix(status, model.StatusRollbackComplete)
}

// Classify maps a status onto an outcome. Rollbacks and removed stacks count
// as failures even though they end in _COMPLETE.
func Classify(status string) Outcome {
	switch {
	case strings.HasSuffix(status, "_FAILED"),
		IsRollback(status),
		strings.HasSuffix(status, model.StatusDeleteComplete):
		return Failure
	case strings.HasSuffix(status, "_COMPLETE"):
		return Success
	default:
		return InProgress
	}
}
