package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/philowalk/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing. It uses
// nao1215/markdown for tables, alerts and the mermaid outcome chart.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.WalkReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeAttempts(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.WalkReport) {
	md.H1("Philowalk Report")
	md.PlainText("")

	rows := [][]string{
		{"Start Topic", "`" + report.StartTopic() + "`"},
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Attempts", strconv.Itoa(len(report.Attempts))},
		{"Pages Visited", strconv.Itoa(report.HopCount())},
		{"Status", w.getStatusText(report)},
	}
	if report.RunID != "" {
		rows = append(rows, []string{"Run ID", "`" + report.RunID + "`"})
	}
	if report.ID != 0 {
		rows = append([][]string{{"Walk ID", strconv.FormatInt(report.ID, 10)}}, rows...)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.WalkReport) string {
	if report.Reached {
		return "✅ Reached Philosophy in " + strconv.Itoa(report.TotalSteps) + " steps"
	}
	if last := report.CurrentAttempt(); last != nil && last.Outcome == model.OutcomeCancelled {
		return "⚠️ Interrupted"
	}
	return "❌ Did not reach Philosophy"
}

// writeSummary writes the outcome summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.WalkReport) {
	md.H2("Outcome Summary")
	md.PlainText("")

	counts := report.OutcomeCounts()
	rows := make([][]string, 0, len(model.Outcomes()))
	for _, o := range model.Outcomes() {
		if counts[o] == 0 {
			continue
		}
		rows = append(rows, []string{o.Label(), strconv.Itoa(counts[o])})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(report.Attempts)) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Attempts"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(report.Attempts) > 1 {
		w.writePieChart(md, counts)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of attempt outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.Outcome]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Attempt Outcomes"),
		piechart.WithShowData(true),
	)

	for _, o := range model.Outcomes() {
		if counts[o] > 0 {
			chart.LabelAndIntValue(o.Label(), uint64(counts[o]))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes a Tip when Philosophy was reached and a Warning otherwise.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.WalkReport) {
	if report.Reached {
		md.Tip(FinalLine(report.TotalSteps))
	} else {
		md.Warningf("Philosophy was not reached after %d attempt(s).", len(report.Attempts))
	}
	md.PlainText("")
}

// writeAttempts writes one path table per attempt.
func (w *MarkdownWriter) writeAttempts(md *markdown.Markdown, report *model.WalkReport) {
	md.H2("Attempts")
	md.PlainText("")

	if len(report.Attempts) == 0 {
		md.PlainText("No attempts were made.")
		md.PlainText("")
		return
	}

	for i, attempt := range report.Attempts {
		md.PlainTextf("### %d. %s (%s)", i+1, attempt.StartTopic, attempt.Outcome.Label())
		md.PlainText("")
		w.writePathTable(md, attempt)

		if attempt.Outcome == model.OutcomeRestarted {
			md.Note(Notice(attempt.FailureKind))
			md.PlainText("")
			if attempt.FailureMessage != "" {
				md.Details("Error", attempt.FailureMessage)
				md.PlainText("")
			}
		}
	}
}

// writePathTable writes the visited articles of one attempt.
func (w *MarkdownWriter) writePathTable(md *markdown.Markdown, attempt *model.Attempt) {
	if len(attempt.Hops) == 0 {
		md.PlainText("No articles visited.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(attempt.Hops))
	for i, hop := range attempt.Hops {
		next := hop.Next
		if next == "" {
			next = "-"
		}
		rows[i] = []string{strconv.Itoa(hop.Index), hop.Title, next}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Step", "Title", "First Link"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [philowalk](https://github.com/nao1215/philowalk)*")
}
