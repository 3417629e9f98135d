// Package progress provides reporters for per-repository status events.
// Reporting is purely observational and has no bearing on ingestion
// correctness.
package progress

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// BarReporter renders a terminal progress bar over the candidate directory
// set, with the current repository and phase shown in the description.
type BarReporter struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
}

// NewBarReporter creates a reporter writing to stderr.
func NewBarReporter() *BarReporter {
	return &BarReporter{writer: os.Stderr}
}

// Enabled reports whether a progress bar should be rendered at all:
// only when stderr is a TTY (piped output, CI environments get none).
func Enabled() bool {
	return isatty.IsTerminal(os.Stderr.Fd())
}

// Begin announces the total number of candidate directories.
func (r *BarReporter) Begin(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("analyzing repositories"),
		progressbar.OptionSetWriter(r.writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Phase updates the bar description with the repository and its phase.
func (r *BarReporter) Phase(repository, phase string) {
	if r.bar == nil {
		return
	}
	r.bar.Describe(phase + " " + repository)
}

// Done advances the bar by one finished candidate.
func (r *BarReporter) Done(string) {
	if r.bar == nil {
		return
	}
	_ = r.bar.Add(1)
}

// Finish completes the bar.
func (r *BarReporter) Finish() {
	if r.bar == nil {
		return
	}
	_ = r.bar.Finish()
}

// NopReporter discards all progress events. Used when stderr is not a TTY
// and in tests.
type NopReporter struct{}

// NewNopReporter creates a reporter that discards everything.
func NewNopReporter() *NopReporter { return &NopReporter{} }

func (*NopReporter) Begin(int)            {}
func (*NopReporter) Phase(string, string) {}
func (*NopReporter) Done(string)          {}
func (*NopReporter) Finish()              {}
