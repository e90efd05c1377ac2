package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kalkar/skewscan/internal/model"
)

// readTextfile writes r to a temporary textfile and returns its contents.
func readTextfile(t *testing.T, r *Recorder) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "skewscan.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	return string(data)
}

// TestObserveRun tests that a run is exported per reason.
func TestObserveRun(t *testing.T) {
	t.Parallel()

	run := model.NewRun("id", "txt", model.DefaultThresholds())
	run.CorpusSize = 12
	run.Duration = 250 * time.Millisecond
	run.Result.Add(model.ReasonLastLine, "1-foo.txt")
	run.Result.Add(model.ReasonLastLine, "2-bar.txt")
	run.Result.Add(model.ReasonTooFewColumns, "2-bar.txt")

	r := NewRecorder()
	r.ObserveRun(run)
	out := readTextfile(t, r)

	for _, want := range []string{
		`skewscan_flagged_pages{reason="LAST_LINE"} 2`,
		`skewscan_flagged_pages{reason="TOO_FEW_COLUMNS"} 1`,
		`skewscan_flagged_pages{reason="TOO_MANY_EMPTY_LINES"} 0`,
		`skewscan_corpus_pages 12`,
		`skewscan_classify_duration_seconds_count 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in textfile:\n%s", want, out)
		}
	}
}

// TestCounters tests the download and OCR counters.
func TestCounters(t *testing.T) {
	t.Parallel()

	r := NewRecorder()
	r.IncDownload(ResultSuccess)
	r.IncDownload(ResultSuccess)
	r.IncDownload(ResultSkipped)
	r.IncOCR(ResultFailure)
	r.ObserveClassify(time.Second)
	r.ObserveRun(nil)

	out := readTextfile(t, r)
	for _, want := range []string{
		`skewscan_downloads_total{result="success"} 2`,
		`skewscan_downloads_total{result="skipped"} 1`,
		`skewscan_ocr_images_total{result="failure"} 1`,
		`skewscan_classify_duration_seconds_count 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in textfile:\n%s", want, out)
		}
	}
}

// TestRecordersAreIndependent tests that registries are not shared.
func TestRecordersAreIndependent(t *testing.T) {
	t.Parallel()

	a, b := NewRecorder(), NewRecorder()
	a.IncOCR(ResultSuccess)

	if strings.Contains(readTextfile(t, b), "skewscan_ocr_images_total{") {
		t.Error("expected second recorder to be unaffected")
	}
	if a.Registry() == b.Registry() {
		t.Error("expected distinct registries")
	}
}
