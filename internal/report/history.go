package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/philowalk/internal/database"
)

// HistoryWriter renders rows from the walk history database.
type HistoryWriter struct {
	baseWriter

	markdown bool
}

// NewHistoryWriter creates a HistoryWriter. When asMarkdown is true the
// output is markdown tables, otherwise aligned plain text.
func NewHistoryWriter(output io.Writer, asMarkdown bool) *HistoryWriter {
	return &HistoryWriter{
		baseWriter: newBaseWriter(output),
		markdown:   asMarkdown,
	}
}

// WriteHistory outputs a list of stored walks.
func (w *HistoryWriter) WriteHistory(walks []database.WalkSummary) (int, error) {
	header := []string{"ID", "Started", "Start Topic", "Attempts", "Result"}
	rows := make([][]string, len(walks))
	for i, s := range walks {
		rows[i] = []string{
			strconv.FormatInt(s.ID, 10),
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.StartTopic,
			strconv.Itoa(s.Attempts),
			historyResult(s),
		}
	}

	if w.markdown {
		return w.writeMarkdownTable("Walk History", "No walks recorded yet.", header, rows)
	}
	if len(walks) == 0 {
		return fmt.Fprintln(w.output, "No walks recorded yet.")
	}
	return w.writeTextTable(header, rows)
}

// WriteTitles outputs the most visited article titles.
func (w *HistoryWriter) WriteTitles(titles []database.TitleCount) (int, error) {
	header := []string{"Title", "Visits"}
	rows := make([][]string, len(titles))
	for i, tc := range titles {
		rows[i] = []string{tc.Title, strconv.Itoa(tc.Visits)}
	}

	if w.markdown {
		return w.writeMarkdownTable("Most Visited Articles", "No articles visited yet.", header, rows)
	}
	if len(titles) == 0 {
		return fmt.Fprintln(w.output, "No articles visited yet.")
	}
	return w.writeTextTable(header, rows)
}

// historyResult summarises how a stored walk ended.
func historyResult(s database.WalkSummary) string {
	if s.Reached {
		return fmt.Sprintf("Philosophy in %d steps", s.TotalSteps)
	}
	if s.FinalTitle != "" {
		return "stopped at " + s.FinalTitle
	}
	return "not reached"
}

func (w *HistoryWriter) writeMarkdownTable(title, empty string, header []string, rows [][]string) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H2(title)
	md.PlainText("")
	if len(rows) == 0 {
		md.PlainText(empty)
	} else {
		md.Table(markdown.TableSet{Header: header, Rows: rows})
	}
	md.PlainText("")
	return len(md.String()), md.Build()
}

func (w *HistoryWriter) writeTextTable(header []string, rows [][]string) (int, error) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			if i == len(cells)-1 {
				sb.WriteString(cell)
				continue
			}
			sb.WriteString(cell + strings.Repeat(" ", widths[i]-len(cell)))
		}
		sb.WriteString("\n")
	}

	writeRow(header)
	for _, row := range rows {
		writeRow(row)
	}

	return w.output.Write([]byte(sb.String()))
}
