package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nao1215/philowalk/internal/database"
	"github.com/nao1215/philowalk/internal/report"
)

// seedHistory records walks from Tea and Plant in a fresh database and
// returns its directory.
func seedHistory(t *testing.T) string {
	t.Helper()

	wiki := newFakeWiki(t)
	dbDir := t.TempDir()
	for _, topic := range []string{"Tea", "Plant"} {
		args := walkArgs(t, wiki, "--db-dir", dbDir, topic)
		if _, _, err := executeCmd(t, "", args...); err != nil {
			t.Fatalf("walk from %s failed: %v", topic, err)
		}
	}
	return dbDir
}

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()
	if cmd.Use != "history" {
		t.Errorf("expected use 'history', got %q", cmd.Use)
	}
	for _, name := range []string{"id", "titles", "limit", "json", "markdown", "db-dir", "purge-cache"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
	if flag := cmd.Flags().Lookup("limit"); flag != nil && flag.DefValue != "20" {
		t.Errorf("expected default limit 20, got %s", flag.DefValue)
	}
}

// TestRunHistoryCmd tests listing recorded walks.
func TestRunHistoryCmd(t *testing.T) {
	t.Parallel()

	t.Run("reports an empty history", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "history", "--db-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "No walks recorded yet.") {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	dbDir := seedHistory(t)

	t.Run("lists walks newest first", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "history", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		plant := strings.Index(stdout, "Plant")
		tea := strings.Index(stdout, "Tea")
		if plant < 0 || tea < 0 || plant > tea {
			t.Errorf("expected Plant before Tea:\n%s", stdout)
		}
		if !strings.Contains(stdout, "Philosophy in 3 steps") {
			t.Errorf("expected result column:\n%s", stdout)
		}
	})

	t.Run("lists walks as JSON with a limit", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "history", "--db-dir", dbDir, "--json", "--limit", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var walks []database.WalkSummary
		if err := json.Unmarshal([]byte(stdout), &walks); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if len(walks) != 1 || walks[0].StartTopic != "Plant" {
			t.Errorf("expected only the Plant walk, got %+v", walks)
		}
	})

	t.Run("shows one walk by id", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "history", "--db-dir", dbDir, "--id", "1", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got report.JSONReport
		if err := json.Unmarshal([]byte(stdout), &got); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, stdout)
		}
		if got.Report.StartTopic() != "Tea" || strings.Join(got.Path, ",") != "Tea,Leaf,Plant,Philosophy" {
			t.Errorf("unexpected report %+v", got)
		}
	})

	t.Run("unknown id is an error", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCmd(t, "", "history", "--db-dir", dbDir, "--id", "99")
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("counts visited titles as Markdown", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := executeCmd(t, "", "history", "--db-dir", dbDir, "--titles", "--markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "## Most Visited Articles") {
			t.Errorf("expected Markdown heading:\n%s", stdout)
		}
		if !strings.Contains(stdout, "|") || !strings.Contains(stdout, "Philosophy") {
			t.Errorf("expected Philosophy row:\n%s", stdout)
		}
	})

	t.Run("rejects conflicting formats", func(t *testing.T) {
		t.Parallel()

		if _, _, err := executeCmd(t, "", "history", "--db-dir", dbDir, "-j", "-m"); err == nil {
			t.Error("expected error for --json with --markdown")
		}
	})
}
