package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/philowalk/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// Plain ASCII formatting is used so the output can be piped to files.
type SimpleWriter struct {
	baseWriter

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.WalkReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeAttempts(&sb, report)
	w.writeFooter(&sb, report)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.WalkReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          PHILOWALK REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if report.ID != 0 {
		sb.WriteString(fmt.Sprintf("Walk ID:        %d\n", report.ID))
	}
	if w.verbose && report.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run ID:         %s\n", report.RunID))
	}
	sb.WriteString(fmt.Sprintf("Start Topic:    %s\n", report.StartTopic()))
	sb.WriteString(fmt.Sprintf("Started:        %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:       %s\n", report.Duration().Round(time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Attempts:       %d\n", len(report.Attempts)))
	sb.WriteString(fmt.Sprintf("Pages Visited:  %d\n", report.HopCount()))

	if report.Reached {
		sb.WriteString(fmt.Sprintf("Status:         Reached Philosophy in %d steps\n", report.TotalSteps))
	} else {
		sb.WriteString("Status:         Did not reach Philosophy\n")
	}

	sb.WriteString("\n")
}

// writeAttempts writes the path taken by each attempt.
func (w *SimpleWriter) writeAttempts(sb *strings.Builder, report *model.WalkReport) {
	for i, attempt := range report.Attempts {
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("ATTEMPT %d: %s (%s)\n", i+1, attempt.StartTopic, attempt.Outcome.Label()))
		sb.WriteString(strings.Repeat("-", 70))
		sb.WriteString("\n\n")

		if len(attempt.Hops) == 0 {
			sb.WriteString("  No articles visited\n")
		}
		for _, hop := range attempt.Hops {
			sb.WriteString(fmt.Sprintf("  %3d  %s", hop.Index, hop.Title))
			if w.verbose && hop.Cached {
				sb.WriteString(" (cached)")
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")

		switch attempt.Outcome {
		case model.OutcomeReached:
			sb.WriteString("  " + FinalLine(attempt.Steps) + "\n")
		case model.OutcomeRestarted:
			sb.WriteString("  " + Notice(attempt.FailureKind) + "\n")
			if w.verbose && attempt.FailureMessage != "" {
				sb.WriteString(fmt.Sprintf("  Error: %s\n", attempt.FailureMessage))
			}
		case model.OutcomeCancelled:
			sb.WriteString("  Walk interrupted\n")
		case model.OutcomeInProgress:
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, _ *model.WalkReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by philowalk\n")
	sb.WriteString("https://github.com/nao1215/philowalk\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
