package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/philowalk/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in JSON format.
func (w *JSONWriter) Write(report *model.WalkReport) (int, error) {
	return w.writeJSON(report)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONReport wraps a walk report with metadata about the tool that
// produced it.
type JSONReport struct {
	// Version is the philowalk version that generated this report.
	Version string `json:"version"`

	// Report is the full walk report.
	Report *model.WalkReport `json:"report"`

	// Path is the title sequence of the last attempt, for quick access.
	Path []string `json:"path"`
}

// NewJSONReport creates a JSONReport wrapper with version information.
func NewJSONReport(report *model.WalkReport, version string) *JSONReport {
	path := make([]string, 0)
	if last := report.CurrentAttempt(); last != nil {
		path = last.Titles()
	}
	return &JSONReport{
		Version: version,
		Report:  report,
		Path:    path,
	}
}

// FullJSONWriter outputs complete reports with metadata wrapper.
type FullJSONWriter struct {
	*JSONWriter

	// version is the philowalk version string.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the report wrapped with metadata.
func (w *FullJSONWriter) Write(report *model.WalkReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}

// WriteAll outputs the reports as one JSON array, in the order given.
// An empty slice is written as [].
func (w *FullJSONWriter) WriteAll(reports []*model.WalkReport) (int, error) {
	wrapped := make([]*JSONReport, 0, len(reports))
	for _, r := range reports {
		wrapped = append(wrapped, NewJSONReport(r, w.version))
	}
	return w.writeJSON(wrapped)
}
