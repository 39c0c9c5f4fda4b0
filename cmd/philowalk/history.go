package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nao1215/philowalk/internal/config"
	"github.com/nao1215/philowalk/internal/database"
	"github.com/nao1215/philowalk/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of walks listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded walks",
		Long: `History lists the walks recorded in the local database, newest first.

With --id it prints the full report of one walk. With --titles it lists the
articles visited most often across all walks.

Examples:
  # List the last 20 walks
  philowalk history

  # Show walk 12 as Markdown
  philowalk history --id 12 --markdown

  # The ten most visited articles
  philowalk history --titles --limit 10

  # Drop cached links older than a day
  philowalk history --purge-cache 24h`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().Int64("id", 0, "Show the full report of the walk with this id")
	cmd.Flags().Bool("titles", false, "List the most visited articles")
	cmd.Flags().IntP("limit", "l", defaultHistoryLimit, "Maximum number of rows (0 = all)")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (mutually exclusive with --json)")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Directory of the history database")
	cmd.Flags().Duration("purge-cache", 0, "Delete cached links older than this duration")

	return cmd
}

// historyOptions holds the parsed history flags.
type historyOptions struct {
	id         int64
	titles     bool
	limit      int
	asJSON     bool
	asMarkdown bool
	dbDir      string
	purgeTTL   time.Duration
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	opts, err := parseHistoryFlags(cmd)
	if err != nil {
		return err
	}
	if opts.asJSON && opts.asMarkdown {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}

	setupLogger(cmd, getVerboseFlag(cmd))

	dbPath := filepath.Join(opts.dbDir, database.FileName)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "No walks recorded yet.")
		return nil
	}

	dbOpts := database.DefaultOptions()
	dbOpts.CreateIfNotExists = false
	db, err := database.Open(opts.dbDir, dbOpts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	switch {
	case opts.purgeTTL > 0:
		n, err := db.PurgeLinks(ctx, opts.purgeTTL)
		if err != nil {
			return fmt.Errorf("failed to purge link cache: %w", err)
		}
		fmt.Fprintf(out, "Removed %d cached links.\n", n)
		return nil

	case opts.id > 0:
		walkReport, err := db.GetWalk(ctx, opts.id)
		if err != nil {
			return fmt.Errorf("failed to load walk %d: %w", opts.id, err)
		}
		if walkReport == nil {
			return fmt.Errorf("walk %d not found", opts.id)
		}
		var writer report.Writer
		switch {
		case opts.asJSON:
			writer = report.NewFullJSONWriter(out, getVersion(), report.WithPrettyPrint())
		case opts.asMarkdown:
			writer = report.NewMarkdownWriter(out)
		default:
			writer = report.NewSimpleWriter(out, report.WithVerbose(true))
		}
		_, err = writer.Write(walkReport)
		return err

	case opts.titles:
		titles, err := db.TitleFrequency(ctx, opts.limit)
		if err != nil {
			return fmt.Errorf("failed to count titles: %w", err)
		}
		if opts.asJSON {
			return writeJSON(out, titles)
		}
		_, err = report.NewHistoryWriter(out, opts.asMarkdown).WriteTitles(titles)
		return err

	default:
		walks, err := db.ListWalks(ctx, opts.limit)
		if err != nil {
			return fmt.Errorf("failed to list walks: %w", err)
		}
		if opts.asJSON {
			return writeJSON(out, walks)
		}
		_, err = report.NewHistoryWriter(out, opts.asMarkdown).WriteHistory(walks)
		return err
	}
}

// parseHistoryFlags reads the history command flags.
func parseHistoryFlags(cmd *cobra.Command) (historyOptions, error) {
	var (
		opts historyOptions
		err  error
	)
	flags := cmd.Flags()

	if opts.id, err = flags.GetInt64("id"); err != nil {
		return opts, err
	}
	if opts.titles, err = flags.GetBool("titles"); err != nil {
		return opts, err
	}
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.asJSON, err = flags.GetBool("json"); err != nil {
		return opts, err
	}
	if opts.asMarkdown, err = flags.GetBool("markdown"); err != nil {
		return opts, err
	}
	if opts.dbDir, err = flags.GetString("db-dir"); err != nil {
		return opts, err
	}
	if opts.purgeTTL, err = flags.GetDuration("purge-cache"); err != nil {
		return opts, err
	}
	return opts, nil
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
