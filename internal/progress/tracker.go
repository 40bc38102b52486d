package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Reporter receives the start and outcome of each long-running step.
type Reporter interface {
	Start(msg string)
	Done(msg string)
	Fail(msg string)
}

// Nop discards progress.
type Nop struct{}

func (Nop) Start(string) {}
func (Nop) Done(string)  {}
func (Nop) Fail(string)  {}

// Tracker animates a spinner while a step runs and prints one line per
// finished step. Without a terminal it prints only the finished lines.
// A Tracker is not safe for concurrent use.
type Tracker struct {
	w       io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	spin    *spinner.Spinner
}

// NewTracker returns a Tracker writing to w.
func NewTracker(w io.Writer, caps TerminalCapabilities) *Tracker {
	t := &Tracker{w: w, caps: caps, symbols: SelectSymbols(caps)}
	if caps.IsTTY {
		t.spin = spinner.New(spinner.CharSets[t.symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(w))
	}
	return t
}

// Start begins a step.
func (t *Tracker) Start(msg string) {
	if t.spin == nil {
		return
	}
	t.spin.Suffix = " " + msg
	t.spin.Start()
}

// Done ends the current step successfully.
func (t *Tracker) Done(msg string) {
	t.finish(t.symbols.Checkmark, msg)
}

// Fail ends the current step with a failure.
func (t *Tracker) Fail(msg string) {
	t.finish(t.symbols.Failure, msg)
}

// Writer returns a writer to t's output that clears the spinner line before
// each write and resumes the spinner after it. Log output goes through it so
// the two never share a line.
func (t *Tracker) Writer() io.Writer {
	return pausingWriter{t: t}
}

type pausingWriter struct {
	t *Tracker
}

func (w pausingWriter) Write(p []byte) (int, error) {
	spin := w.t.spin
	if spin == nil || !spin.Active() {
		return w.t.w.Write(p)
	}
	spin.Stop()
	defer spin.Start()
	return w.t.w.Write(p)
}

func (t *Tracker) finish(symbol, msg string) {
	if t.spin != nil {
		t.spin.Stop()
	}
	fmt.Fprintf(t.w, "%s %s\n", symbol, msg)
}
