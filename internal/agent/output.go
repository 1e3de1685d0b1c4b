package agent

import (
	"net/http"
	"strings"
)

const (
	HeaderOutput  = "X-Lizzy-Output"
	HeaderVersion = "X-Lizzy-Version"

	// OutputPrefix marks lines that come from the agent.
	OutputPrefix = "[AGENT] "
)

// FormatOutput unescapes the agent log carried in X-Lizzy-Output and
// prefixes every line.
func FormatOutput(header http.Header) string {
	raw := header.Get(HeaderOutput)
	if raw == "" {
		return ""
	}
	raw = strings.ReplaceAll(raw, `\n`, "\n")
	return strings.Join(prefixLines(raw), "\n")
}

func prefixLines(text string) []string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = OutputPrefix + line
	}
	return lines
}
