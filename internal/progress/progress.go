// Package progress defines the narrow callback contract used to surface
// coarse-grained progress to an external observer. Calls are synchronous and
// fire-and-forget: the core never blocks on or fails because of a reporter,
// and a missing reporter is a no-op.
package progress

import (
	"fmt"
	"io"
)

// Reporter receives coarse progress checkpoints: at most one call per
// batch and per page, in page order. Percent is clamped to 0..100.
type Reporter interface {
	Report(message string, percent int)
}

// Func adapts a plain function to a Reporter.
type Func func(message string, percent int)

// Report implements Reporter.
func (f Func) Report(message string, percent int) {
	f(message, percent)
}

// Nop is a Reporter that discards all reports.
type Nop struct{}

// Report implements Reporter.
func (Nop) Report(string, int) {}

// OrNop returns r, or Nop when r is nil, so call sites never nil-check.
func OrNop(r Reporter) Reporter {
	if r == nil {
		return Nop{}
	}
	return r
}

// Writer reports progress as lines on an io.Writer, typically stderr.
type Writer struct {
	W io.Writer
}

// Report implements Reporter. Write errors are ignored: progress output
// must never affect processing.
func (w Writer) Report(message string, percent int) {
	_, _ = fmt.Fprintf(w.W, "[%3d%%] %s\n", Clamp(percent), message)
}

// Clamp constrains a percentage to the 0..100 range.
func Clamp(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
