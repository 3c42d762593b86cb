package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/pagegate/internal/config"
)

// testEnv is an isolated working area with its own config file and
// history database.
type testEnv struct {
	dir    string
	config string
	dbDir  string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	dir := t.TempDir()
	env := testEnv{
		dir:    dir,
		config: filepath.Join(dir, "pagegate.yaml"),
		dbDir:  filepath.Join(dir, "db"),
	}
	env.write(t, "pagegate.yaml", fmt.Sprintf("db_dir: %q\nreport:\n  top_words: 5\n", env.dbDir))
	return env
}

func (e testEnv) write(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(e.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

// words returns n distinct words starting with prefix.
func words(prefix string, n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = fmt.Sprintf("%s%03d", prefix, i)
	}
	return strings.Join(w, " ")
}

// writeCrawl writes a manifest with two original pages, a copy of the
// first, and a failed fetch.
func (e testEnv) writeCrawl(t *testing.T) string {
	t.Helper()

	e.write(t, "bodies/a.html", `<html><body><p>`+words("alpha", 50)+
		`</p><a href="/people?b=2&a=1#team">People</a><a href="https://evil.example.com/">x</a></body></html>`)
	e.write(t, "bodies/b.html", `<html><body><p>`+words("beta", 50)+
		`</p><a href="/events/2024-01-01/">Calendar</a><a href="/faq">FAQ</a></body></html>`)
	return e.write(t, "pages.jsonl", strings.Join([]string{
		`# test crawl`,
		`{"url":"https://www.ics.uci.edu/a","status":200,"body_file":"bodies/a.html"}`,
		`{"url":"https://www.ics.uci.edu/b","status":200,"body_file":"bodies/b.html"}`,
		`{"url":"https://www.ics.uci.edu/a2","status":200,"body_file":"bodies/a.html"}`,
		`{"url":"https://www.ics.uci.edu/down","status":500}`,
	}, "\n"))
}

func TestNewFilterCmd(t *testing.T) {
	t.Parallel()

	cmd := NewFilterCmd()
	for _, name := range []string{"config", "concurrency", "top", "json", "markdown", "output", "links", "no-db"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected %s flag", name)
		}
	}
}

func TestFilterCmd(t *testing.T) {
	t.Parallel()

	t.Run("writes links, report and history", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		manifest := env.writeCrawl(t)
		linksPath := filepath.Join(env.dir, "out", "frontier.txt")
		reportPath := filepath.Join(env.dir, "out", "report.json")

		_, stderr, err := executeCmd(t, "", "filter",
			"-c", env.config, "-n", "1", "--json",
			"-o", reportPath, "-l", linksPath, manifest)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stderr, "Run #1 recorded") {
			t.Errorf("expected run id on stderr, got %q", stderr)
		}

		links, err := os.ReadFile(linksPath)
		if err != nil {
			t.Fatalf("links file missing: %v", err)
		}
		want := "https://www.ics.uci.edu/people?a=1&b=2\nhttps://www.ics.uci.edu/faq\n"
		if string(links) != want {
			t.Errorf("links = %q, want %q", links, want)
		}

		raw, err := os.ReadFile(reportPath)
		if err != nil {
			t.Fatalf("report file missing: %v", err)
		}
		var envelope struct {
			Version string `json:"version"`
			Report  struct {
				Accepted   int            `json:"accepted"`
				Rejected   int            `json:"rejected"`
				TopWords   []any          `json:"top_words"`
				Rejections map[string]int `json:"rejections"`
			} `json:"report"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("report is not JSON: %v", err)
		}
		if envelope.Report.Accepted != 2 || envelope.Report.Rejected != 2 {
			t.Errorf("accepted/rejected = %d/%d, want 2/2", envelope.Report.Accepted, envelope.Report.Rejected)
		}
		if envelope.Report.Rejections["near_duplicate"] != 1 || envelope.Report.Rejections["fetch_failed"] != 1 {
			t.Errorf("unexpected rejections: %v", envelope.Report.Rejections)
		}
		if len(envelope.Report.TopWords) != 5 {
			t.Errorf("expected top_words from the config file (5), got %d", len(envelope.Report.TopWords))
		}

		stdout, _, err := executeCmd(t, "", "history", "-c", env.config)
		if err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(stdout, "Recorded runs (1)") || !strings.Contains(stdout, "pages.jsonl") {
			t.Errorf("unexpected history: %q", stdout)
		}

		stdout, _, err = executeCmd(t, "", "history", "-c", env.config, "--id", "1", "--decisions")
		if err != nil {
			t.Fatalf("history decisions failed: %v", err)
		}
		for _, want := range []string{"near_duplicate", "fetch_failed", "https://www.ics.uci.edu/a2"} {
			if !strings.Contains(stdout, want) {
				t.Errorf("expected %q in decisions, got %q", want, stdout)
			}
		}

		stdout, _, err = executeCmd(t, "", "history", "-c", env.config, "--id", "1", "--markdown")
		if err != nil {
			t.Fatalf("history report failed: %v", err)
		}
		if !strings.Contains(stdout, "# Pagegate Report") {
			t.Errorf("expected Markdown report, got %q", stdout)
		}
	})

	t.Run("reads manifest from stdin without database", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		manifest := `{"url":"https://www.ics.uci.edu/","status":200,"body":"<body>` + words("gamma", 20) + `</body>"}`

		stdout, stderr, err := executeCmd(t, manifest, "filter", "-c", env.config, "--no-db", "-")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(stdout, "PAGEGATE REPORT") || !strings.Contains(stdout, "Accepted:       1") {
			t.Errorf("unexpected report: %q", stdout)
		}
		if strings.Contains(stderr, "recorded") {
			t.Error("run should not be recorded with --no-db")
		}
		if _, err := os.Stat(env.dbDir); !errors.Is(err, os.ErrNotExist) {
			t.Error("database directory should not be created with --no-db")
		}
	})

	t.Run("rejects conflicting formats", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		_, _, err := executeCmd(t, "", "filter", "-c", env.config, "--json", "--markdown", env.writeCrawl(t))
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("explicit config must exist", func(t *testing.T) {
		t.Parallel()

		_, _, err := executeCmd(t, "", "filter", "-c", filepath.Join(t.TempDir(), "missing.yaml"), "pages.jsonl")
		if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("invalid manifest", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t)
		manifest := env.write(t, "bad.jsonl", "{not json}\n")
		_, _, err := executeCmd(t, "", "filter", "-c", env.config, "--no-db", manifest)
		if err == nil || !strings.Contains(err.Error(), "line 1") {
			t.Errorf("expected manifest error naming the line, got %v", err)
		}
	})
}
