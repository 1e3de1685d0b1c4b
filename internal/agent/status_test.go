package agent

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		status   string
		terminal bool
		outcome  Outcome
	}{
		{"CREATE_COMPLETE", true, Success},
		{"UPDATE_COMPLETE", true, Success},
		{"CREATE_IN_PROGRESS", false, InProgress},
		{"CF:SOME_STATE", false, InProgress},
		{"CREATE_FAILED", true, Failure},
		{"ROLLBACK_COMPLETE", true, Failure},
		{"UPDATE_ROLLBACK_COMPLETE", true, Failure},
		{"DELETE_COMPLETE", true, Failure},
		{"create_complete", false, InProgress},
		{"COMPLETE", false, InProgress},
		{"", false, InProgress},
	}
	for _, tt := range tests {
		if got := IsTerminal(tt.status); got != tt.terminal {
			t.Errorf("IsTerminal(%q) = %v, want %v", tt.status, got, tt.terminal)
		}
		if got := Classify(tt.status); got != tt.outcome {
			t.Errorf("Classify(%q) = %s, want %s", tt.status, got, tt.outcome)
		}
	}
}

func TestFormatOutput(t *testing.T) {
	header := http.Header{}
	if got := FormatOutput(header); got != "" {
		t.Errorf("expected no output, got %q", got)
	}

	header.Set(HeaderOutput, `Creating stack\nDone\n`)
	if got := FormatOutput(header); got != "[AGENT] Creating stack\n[AGENT] Done" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestAgentErrorLines(t *testing.T) {
	err := newAgentError(400, []byte(`{"detail": "first\nsecond", "status": 400, "title": "Bad Request"}`))
	if diff := cmp.Diff([]string{"[AGENT] first", "[AGENT] second"}, err.Lines()); diff != "" {
		t.Errorf("unexpected lines (-want +got):\n%s", diff)
	}
}
