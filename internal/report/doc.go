// Package report provides report generation and output functionality.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: Markdown with tables and a mermaid chart for sharing
//
// Walk reports live in the model package; this package only renders them.
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter.
//
// ProgressPrinter is different: it implements the walk engine's Observer
// and prints titles and notices while a walk is running. HistoryWriter
// renders the rows stored in the walk history database.
package report
