// Package output provides adapters for writing application output.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gitledger/gitledger/internal/domain"
)

// Writer writes the batch summary to the configured output destination.
// By default, it writes to stdout.
type Writer struct {
	out io.Writer
}

// NewWriter creates a new Writer that writes to stdout.
func NewWriter() *Writer {
	return &Writer{out: os.Stdout}
}

// NewWriterWithOutput creates a new Writer with a custom output destination.
// This is useful for testing.
func NewWriterWithOutput(out io.Writer) *Writer {
	return &Writer{out: out}
}

// WriteSummary writes the run summary: elapsed time, stored repositories,
// ignored repositories, and every skipped directory with its path and
// reason. Every candidate directory appears either as stored or as skipped;
// nothing is silently dropped.
func (w *Writer) WriteSummary(summary *domain.BatchSummary, ignored []string) error {
	if _, err := fmt.Fprintf(w.out, "# Done in %s\n\n", summary.Elapsed.Round(time.Millisecond)); err != nil {
		return err
	}

	names := make([]string, 0, len(summary.Stored))
	for _, repo := range summary.Stored {
		names = append(names, fmt.Sprintf("%s (%d commits)", repo.Name, repo.CommitCount))
	}
	if _, err := fmt.Fprintf(w.out, "# %d repositories in the table\n\n%s\n\n",
		len(summary.Stored), strings.Join(names, ", ")); err != nil {
		return err
	}

	if len(ignored) > 0 {
		if _, err := fmt.Fprintf(w.out, "# %d ignored repositories:\n\n%s\n\n",
			len(ignored), strings.Join(ignored, ", ")); err != nil {
			return err
		}
	}

	if len(summary.Skipped) > 0 {
		if _, err := fmt.Fprintf(w.out,
			"# %d directories were not stored. Maybe empty, or not a git repository?\n\n",
			len(summary.Skipped)); err != nil {
			return err
		}
		for _, skipped := range summary.Skipped {
			if _, err := fmt.Fprintf(w.out, "%s: %v\n", skipped.Path, skipped.Reason); err != nil {
				return err
			}
		}
	}

	return nil
}
