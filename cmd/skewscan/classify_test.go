package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kalkar/skewscan/internal/config"
	"github.com/kalkar/skewscan/internal/model"
	"github.com/kalkar/skewscan/internal/report"
)

func TestNewClassifyCmd(t *testing.T) {
	t.Parallel()

	cmd := NewClassifyCmd()

	tests := []struct {
		name string
		def  string
	}{
		{"last-line", "10"},
		{"columns", "30"},
		{"empty-lines", "20"},
		{"format", "list"},
		{"no-save", "false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.DefValue != tt.def {
				t.Errorf("expected default %q, got %q", tt.def, flag.DefValue)
			}
		})
	}
}

func TestRunClassifyCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists flagged pages", func(t *testing.T) {
		t.Parallel()

		dir := writeCorpus(t)
		cfgPath := writeConfigFile(t, "corpus: unused\n")

		out, err := runRoot(t, "classify", "-c", cfgPath, "--no-save", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "0002-bad.txt\n" {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("json report", func(t *testing.T) {
		t.Parallel()

		dir := writeCorpus(t)
		cfgPath := writeConfigFile(t, "corpus: unused\n")

		out, err := runRoot(t, "classify", "-c", cfgPath, "--no-save", "--json", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc report.JSONReport
		if err := json.Unmarshal([]byte(out), &doc); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if doc.TotalPages != 2 || doc.Flagged != 1 {
			t.Errorf("total=%d flagged=%d, want 2 and 1", doc.TotalPages, doc.Flagged)
		}
		want := map[model.SkewReason][]string{
			model.ReasonLastLine:          {"0002-bad.txt"},
			model.ReasonTooFewColumns:     {"0002-bad.txt"},
			model.ReasonTooManyEmptyLines: {},
		}
		if diff := cmp.Diff(want, doc.Reasons); diff != "" {
			t.Errorf("reasons mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("breakdown to file", func(t *testing.T) {
		t.Parallel()

		dir := writeCorpus(t)
		cfgPath := writeConfigFile(t, "corpus: unused\n")
		outPath := filepath.Join(t.TempDir(), "reports", "skew.txt")

		out, err := runRoot(t, "classify", "-c", cfgPath, "--no-save",
			"--format", "breakdown", "-o", outPath, dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "" {
			t.Errorf("expected nothing on stdout, got %q", out)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"LAST_LINE (1)", "TOO_FEW_COLUMNS (1)", "TOO_MANY_EMPTY_LINES (0)"} {
			if !strings.Contains(string(data), want) {
				t.Errorf("report missing %q:\n%s", want, data)
			}
		}
	})

	t.Run("allowlist exempts last line", func(t *testing.T) {
		t.Parallel()

		dir := writeCorpus(t)
		cfgPath := writeConfigFile(t, "corpus: unused\n")

		out, err := runRoot(t, "classify", "-c", cfgPath, "--no-save", "--json",
			"--allow", "0002-bad.txt", dir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var doc report.JSONReport
		if err := json.Unmarshal([]byte(out), &doc); err != nil {
			t.Fatal(err)
		}
		if got := doc.Reasons[model.ReasonLastLine]; len(got) != 0 {
			t.Errorf("expected no LAST_LINE pages, got %v", got)
		}
	})

	t.Run("writes metrics", func(t *testing.T) {
		t.Parallel()

		dir := writeCorpus(t)
		cfgPath := writeConfigFile(t, "corpus: unused\n")
		metricsPath := filepath.Join(t.TempDir(), "skewscan.prom")

		if _, err := runRoot(t, "classify", "-c", cfgPath, "--no-save",
			"--metrics-file", metricsPath, dir); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(metricsPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "skewscan_corpus_pages") {
			t.Errorf("metrics missing corpus gauge:\n%s", data)
		}
	})

	t.Run("missing corpus is empty", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfigFile(t, "corpus: unused\n")
		missing := filepath.Join(t.TempDir(), "nope")
		out, err := runRoot(t, "classify", "-c", cfgPath, "--no-save", "--format", "breakdown", missing)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Flagged pages: 0") {
			t.Errorf("unexpected report:\n%s", out)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfigFile(t, "corpus: unused\n")
		_, err := runRoot(t, "classify", "-c", cfgPath, "--no-save", "--json", "--markdown", writeCorpus(t))
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})

	t.Run("missing explicit config", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "absent.yaml")
		_, err := runRoot(t, "classify", "-c", missing, "--no-save", writeCorpus(t))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestClassifyConfigPrecedence(t *testing.T) {
	t.Parallel()

	dir := writeCorpus(t)
	cfgPath := writeConfigFile(t, "corpus: "+dir+"\nthresholds:\n  columnMarkers: 0\n")

	classify := func(t *testing.T, extra ...string) report.JSONReport {
		t.Helper()
		args := append([]string{"classify", "-c", cfgPath, "--no-save", "--json"}, extra...)
		out, err := runRoot(t, args...)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var doc report.JSONReport
		if err := json.Unmarshal([]byte(out), &doc); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		return doc
	}

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Parallel()
		doc := classify(t)
		if doc.Corpus != dir {
			t.Errorf("corpus = %q, want %q", doc.Corpus, dir)
		}
		if doc.Thresholds.ColumnMarkers != 0 {
			t.Errorf("column markers = %d, want 0", doc.Thresholds.ColumnMarkers)
		}
		if got := doc.Reasons[model.ReasonTooFewColumns]; len(got) != 0 {
			t.Errorf("expected no TOO_FEW_COLUMNS pages, got %v", got)
		}
	})

	t.Run("flags override file", func(t *testing.T) {
		t.Parallel()
		doc := classify(t, "--columns", "50")
		want := []string{"0001-good.txt", "0002-bad.txt"}
		if diff := cmp.Diff(want, doc.Reasons[model.ReasonTooFewColumns]); diff != "" {
			t.Errorf("TOO_FEW_COLUMNS mismatch (-want +got):\n%s", diff)
		}
	})
}
