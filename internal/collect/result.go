// Package collect walks a title's membership list, normalizes each
// player, and accumulates the rows into a per-title dataset.
package collect

import "fmt"

// Result tracks counts and per-player diagnostics from one title run.
type Result struct {
	Recorded int
	Skipped  int
	Errors   []string
}

// AddErrorf records a formatted diagnostic.
func (r *Result) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("recorded=%d skipped=%d errors=%d",
		r.Recorded, r.Skipped, len(r.Errors))
}
