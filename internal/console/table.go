package console

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatTSV  = "tsv"
)

var Formats = []string{FormatText, FormatJSON, FormatTSV}

// Table is a list of rows keyed by column name.
type Table struct {
	Columns []string
	Titles  map[string]string
	Rows    []map[string]any
}

// Render writes the table in the given format.
func (t Table) Render(w io.Writer, format string, now time.Time) error {
	switch format {
	case "", FormatText:
		return t.renderText(w, now)
	case FormatJSON:
		return t.renderJSON(w)
	case FormatTSV:
		return t.renderTSV(w)
	default:
		return fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

func (t Table) title(col string) string {
	if title, ok := t.Titles[col]; ok {
		return strings.ToUpper(title)
	}
	return strings.ToUpper(strings.ReplaceAll(col, "_", " "))
}

func (t Table) renderText(w io.Writer, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	titles := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		titles[i] = t.title(col)
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))

	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			cells[i] = textValue(row[col], now)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func (t Table) renderJSON(w io.Writer) error {
	rows := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		out := make(map[string]any, len(t.Columns))
		for _, col := range t.Columns {
			v := row[col]
			if ts, ok := v.(time.Time); ok {
				v = ts.UTC().Format(time.RFC3339)
			}
			out[col] = v
		}
		rows = append(rows, out)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func (t Table) renderTSV(w io.Writer) error {
	if _, err := fmt.Fprintln(w, strings.Join(t.Columns, "\t")); err != nil {
		return err
	}
	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			v := row[col]
			if ts, ok := v.(time.Time); ok {
				v = ts.UTC().Format(time.RFC3339)
			}
			cells[i] = plainValue(v)
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func plainValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

func textValue(v any, now time.Time) string {
	if ts, ok := v.(time.Time); ok {
		if ts.IsZero() {
			return ""
		}
		return Age(ts, now) + " ago"
	}
	return plainValue(v)
}

// Age is a short human readable duration between t and now, e.g. "3h" or
// "12d".
func Age(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
