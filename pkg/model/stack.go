package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Stack is a snapshot of a stack as reported by the agent. The client never
// mutates it.
type Stack struct {
	StackName    string    `json:"stack_name"`
	Version      string    `json:"version"`
	Status       string    `json:"status,omitempty"`
	CreationTime Timestamp `json:"creation_time"`
	Description  string    `json:"description,omitempty"`
}

// ID is the agent-side identifier of the stack, "<stack_name>-<version>".
func (s Stack) ID() string {
	return StackID(s.StackName, s.Version)
}

// StackID joins a stack name and version into an agent identifier. An empty
// version yields the bare name.
func StackID(name, version string) string {
	if version == "" {
		return name
	}
	return name + "-" + version
}

// Timestamp accepts both the ISO 8601 strings and the epoch seconds the
// agent has used for creation_time across releases. A value in none of the
// known forms decodes to the zero time and is kept for Unparsed.
type Timestamp struct {
	time.Time
	raw string
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time, t.raw = time.Time{}, ""
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] != '"' {
		secs, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			t.raw = string(data)
			return nil
		}
		t.Time = time.Unix(0, int64(secs*float64(time.Second))).UTC()
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	t.raw = raw
	return nil
}

// Unparsed returns the value that could not be read as a time, if any.
func (t Timestamp) Unparsed() string {
	return t.raw
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// Epoch returns the timestamp as fractional unix seconds.
func (t Timestamp) Epoch() float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}
