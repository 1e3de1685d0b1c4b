// Package console renders command output: progress actions and tables.
package console

import (
	"fmt"
	"io"
)

// Action prints "<message>" and completes the line with OK or an error.
// Progress dots may be added in between.
type Action struct {
	w    io.Writer
	done bool
}

func StartAction(w io.Writer, format string, args ...any) *Action {
	fmt.Fprintf(w, format, args...)
	return &Action{w: w}
}

// Progress prints one dot.
func (a *Action) Progress() {
	if !a.done {
		fmt.Fprint(a.w, ".")
	}
}

// Println writes a line of its own while the action is running.
func (a *Action) Println(args ...any) {
	fmt.Fprintln(a.w, args...)
}

func (a *Action) OK() {
	a.finish("OK")
}

// Fail ends the action with msg instead of OK.
func (a *Action) Fail(msg string) {
	a.finish(msg)
}

func (a *Action) finish(msg string) {
	if a.done {
		return
	}
	a.done = true
	fmt.Fprintf(a.w, " %s\n", msg)
}

// Done reports whether OK or Fail was called.
func (a *Action) Done() bool {
	return a.done
}
