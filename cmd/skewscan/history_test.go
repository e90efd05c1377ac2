package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kalkar/skewscan/internal/database"
	"github.com/kalkar/skewscan/internal/model"
)

// recordRuns classifies a corpus twice into a fresh history: first with the
// default thresholds, then with the column check disabled. It returns the
// history directory, the config path and the two run ids in that order.
func recordRuns(t *testing.T) (dbDir, cfgPath, first, second string) {
	t.Helper()

	dbDir = t.TempDir()
	corpusDir := writeCorpus(t)
	cfgPath = writeConfigFile(t, "database: "+dbDir+"\ncorpus: "+corpusDir+"\n")

	if _, err := runRoot(t, "classify", "-c", cfgPath); err != nil {
		t.Fatalf("first classify: %v", err)
	}
	if _, err := runRoot(t, "classify", "-c", cfgPath, "--columns", "0"); err != nil {
		t.Fatalf("second classify: %v", err)
	}

	out, err := runRoot(t, "history", "-c", cfgPath, "--json")
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var runs []database.RunSummary
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	for _, r := range runs {
		if r.Counts[model.ReasonTooFewColumns] == 1 {
			first = r.ID
		} else {
			second = r.ID
		}
	}
	if first == "" || second == "" {
		t.Fatalf("could not tell runs apart: %+v", runs)
	}
	return dbDir, cfgPath, first, second
}

func TestHistoryCmd(t *testing.T) {
	t.Parallel()

	_, cfgPath, first, second := recordRuns(t)

	t.Run("lists runs", func(t *testing.T) {
		out, err := runRoot(t, "history", "-c", cfgPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Recorded runs (2)") {
			t.Errorf("unexpected listing:\n%s", out)
		}
		if !strings.Contains(out, shortID(first)) || !strings.Contains(out, shortID(second)) {
			t.Errorf("listing misses a run id:\n%s", out)
		}
	})

	t.Run("limit", func(t *testing.T) {
		out, err := runRoot(t, "history", "-c", cfgPath, "-n", "1", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var runs []database.RunSummary
		if err := json.Unmarshal([]byte(out), &runs); err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run, got %d", len(runs))
		}
	})

	t.Run("shows one run by prefix", func(t *testing.T) {
		out, err := runRoot(t, "history", "-c", cfgPath, first[:8])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "0002-bad.txt\n" {
			t.Errorf("unexpected report %q", out)
		}
	})

	t.Run("compares two runs", func(t *testing.T) {
		out, err := runRoot(t, "history", "-c", cfgPath, "--compare", first, second, "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var diff model.RunDiff
		if err := json.Unmarshal([]byte(out), &diff); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if diff.From != first || diff.To != second {
			t.Errorf("diff ids = %s -> %s", diff.From, diff.To)
		}
		if d := cmp.Diff([]string{"0002-bad.txt"}, diff.Removed[model.ReasonTooFewColumns]); d != "" {
			t.Errorf("removed mismatch (-want +got):\n%s", d)
		}
		if len(diff.Added[model.ReasonTooFewColumns]) != 0 {
			t.Errorf("unexpected added pages: %v", diff.Added)
		}
	})

	t.Run("text diff", func(t *testing.T) {
		out, err := runRoot(t, "history", "-c", cfgPath, "--compare", first, second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "TOO_FEW_COLUMNS (+0 -1)") || !strings.Contains(out, "  - 0002-bad.txt") {
			t.Errorf("unexpected diff:\n%s", out)
		}
	})

	t.Run("same run has no differences", func(t *testing.T) {
		out, err := runRoot(t, "history", "-c", cfgPath, "--compare", first, first)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No differences.") {
			t.Errorf("unexpected diff:\n%s", out)
		}
	})

	t.Run("compare needs two ids", func(t *testing.T) {
		if _, err := runRoot(t, "history", "-c", cfgPath, "--compare", first); err == nil {
			t.Error("expected error for a single id")
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		if _, err := runRoot(t, "history", "-c", cfgPath, "zzzzzzzz"); err == nil {
			t.Error("expected error for unknown run")
		}
	})
}

func TestHistoryCmdDelete(t *testing.T) {
	t.Parallel()

	_, cfgPath, first, _ := recordRuns(t)

	out, err := runRoot(t, "history", "-c", cfgPath, "--delete", first)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Deleted run") {
		t.Errorf("unexpected output %q", out)
	}

	out, err = runRoot(t, "history", "-c", cfgPath, "--json")
	if err != nil {
		t.Fatal(err)
	}
	var runs []database.RunSummary
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID == first {
		t.Errorf("expected only the second run to remain, got %+v", runs)
	}
}

func TestHistoryCmdEmpty(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, "database: "+t.TempDir()+"\n")
	out, err := runRoot(t, "history", "-c", cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "No runs recorded.") {
		t.Errorf("unexpected output %q", out)
	}

	if _, err := runRoot(t, "history", "-c", cfgPath, "--compare"); err == nil {
		t.Error("expected error comparing without runs")
	}
}
