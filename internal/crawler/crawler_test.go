package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/kalkar/skewscan/internal/metrics"
	"github.com/kalkar/skewscan/internal/pipeline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var gifBytes = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\xff\xff\xff\x00\x00\x00!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *countingRecorder) IncDownload(result string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = map[string]int{}
	}
	c.counts[result]++
}

func TestParserParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		page        string
		body        string
		contentType string
		want        []Link
	}{
		{
			name: "relative parent links resolve to site root",
			page: "https://example.org/kalkar/html/a.htm",
			body: `<html><body>
				<a href="../gifs/1/a0001.gif">a</a>
				<a href="../gifs/1/a0002.gif">abbot</a>
			</body></html>`,
			want: []Link{
				{Headword: "a", URL: "https://example.org/kalkar/gifs/1/a0001.gif"},
				{Headword: "abbot", URL: "https://example.org/kalkar/gifs/1/a0002.gif"},
			},
		},
		{
			name: "ignores non-scan links and matches extension case-insensitively",
			page: "https://example.org/kalkar/html/b.htm",
			body: `<a href="index.htm">Index</a>
				<a href="../gifs/B.GIF"> bag </a>
				<a href="mailto:x@example.org">mail</a>
				<a>no href</a>`,
			want: []Link{
				{Headword: "bag", URL: "https://example.org/kalkar/gifs/B.GIF"},
			},
		},
		{
			name: "headword collapses nested text",
			page: "https://example.org/kalkar/html/d.htm",
			body: `<a href="scans/d1.gif"><b>dag</b>
				  <i>(2)</i></a>`,
			want: []Link{
				{Headword: "dag (2)", URL: "https://example.org/kalkar/html/scans/d1.gif"},
			},
		},
		{
			name:        "latin-1 page is decoded",
			page:        "https://example.org/kalkar/html/ae.htm",
			body:        "<a href=\"../gifs/ae1.gif\">\xe6ble</a>",
			contentType: "text/html; charset=iso-8859-1",
			want: []Link{
				{Headword: "æble", URL: "https://example.org/kalkar/gifs/ae1.gif"},
			},
		},
		{
			name: "no links",
			page: "https://example.org/kalkar/html/x.htm",
			body: `<p>empty</p>`,
			want: []Link{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, err := NewParser("https://example.org/kalkar", tt.page)
			if err != nil {
				t.Fatalf("NewParser() error = %v", err)
			}
			got, err := p.Parse(strings.NewReader(tt.body), tt.contentType)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNewParserInvalidBase(t *testing.T) {
	t.Parallel()

	if _, err := NewParser("://bad", "https://example.org/"); !errors.Is(err, ErrInvalidBaseURL) {
		t.Errorf("expected ErrInvalidBaseURL, got %v", err)
	}
}

func TestFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		index    int
		headword string
		want     string
	}{
		{0, "abbot", "0-abbot.gif"},
		{12, "  æble ", "12-æble.gif"},
		{3, "å", "3-å.gif"},
		{4, "and/eller", "4-and_eller.gif"},
		{5, `back\slash`, "5-back_slash.gif"},
	}

	for _, tt := range tests {
		if got := FileName(tt.index, tt.headword); got != tt.want {
			t.Errorf("FileName(%d, %q) = %q, want %q", tt.index, tt.headword, got, tt.want)
		}
	}
}

// newSite serves two letter pages and their scans. Letter "b" is missing.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/kalkar/html/a.htm", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<a href="../gifs/a1.gif">a</a><a href="../gifs/a2.gif">abbot</a>`))
	})
	mux.HandleFunc("/kalkar/html/d.htm", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<a href="../gifs/d1.gif">dag</a><a href="../gifs/broken.gif">dør</a>`))
	})
	mux.HandleFunc("/kalkar/gifs/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "broken.gif") {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>not found</body></html>"))
			return
		}
		_, _ = w.Write(gifBytes)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestScraperCollect(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	s := NewScraper(srv.Client(),
		WithBaseURL(srv.URL+"/kalkar/"),
		WithLetters([]string{"a", "b", "d"}),
		WithDelay(0),
	)

	got, err := s.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	want := []Link{
		{Headword: "a", URL: srv.URL + "/kalkar/gifs/a1.gif"},
		{Headword: "abbot", URL: srv.URL + "/kalkar/gifs/a2.gif"},
		{Headword: "dag", URL: srv.URL + "/kalkar/gifs/d1.gif"},
		{Headword: "dør", URL: srv.URL + "/kalkar/gifs/broken.gif"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
	}
}

func TestScraperCollectCancelled(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	s := NewScraper(srv.Client(), WithBaseURL(srv.URL+"/kalkar"), WithDelay(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Collect(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestScraperDownload(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	links := []Link{
		{Headword: "a", URL: srv.URL + "/kalkar/gifs/a1.gif"},
		{Headword: "abbot", URL: srv.URL + "/kalkar/gifs/a2.gif"},
		{Headword: "dør", URL: srv.URL + "/kalkar/gifs/broken.gif"},
	}

	t.Run("downloads images and rejects html", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "images")
		rec := &countingRecorder{}
		s := NewScraper(srv.Client(), WithConcurrency(2), WithRecorder(rec))

		res, err := s.Download(context.Background(), links, dir)
		if err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if res.Succeeded != 2 || res.Failed != 1 || res.Skipped != 0 {
			t.Errorf("unexpected result %+v", res)
		}

		for _, name := range []string{"0-a.gif", "1-abbot.gif"} {
			data, err := os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				t.Fatalf("read %s: %v", name, err)
			}
			if string(data) != string(gifBytes) {
				t.Errorf("%s has unexpected content", name)
			}
		}
		if _, err := os.Stat(filepath.Join(dir, "2-dør.gif")); !os.IsNotExist(err) {
			t.Error("rejected payload should not be written")
		}

		want := map[string]int{metrics.ResultSuccess: 2, metrics.ResultFailure: 1}
		if diff := cmp.Diff(want, rec.counts); diff != "" {
			t.Errorf("recorded counts mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("skips existing unless forced", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		existing := filepath.Join(dir, "0-a.gif")
		if err := os.WriteFile(existing, []byte("old"), 0o600); err != nil {
			t.Fatal(err)
		}

		res, err := NewScraper(srv.Client()).Download(context.Background(), links[:1], dir)
		if err != nil {
			t.Fatal(err)
		}
		if res.Skipped != 1 {
			t.Errorf("Skipped = %d, want 1", res.Skipped)
		}
		if data, _ := os.ReadFile(existing); string(data) != "old" {
			t.Error("existing file was overwritten")
		}

		res, err = NewScraper(srv.Client(), WithForce(true)).Download(context.Background(), links[:1], dir)
		if err != nil {
			t.Fatal(err)
		}
		if res.Succeeded != 1 {
			t.Errorf("Succeeded = %d, want 1", res.Succeeded)
		}
		if data, _ := os.ReadFile(existing); string(data) != string(gifBytes) {
			t.Error("forced download did not replace file")
		}
	})
}

func TestScraperAcquire(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	dir := t.TempDir()
	s := NewScraper(srv.Client(),
		WithBaseURL(srv.URL+"/kalkar"),
		WithLetters([]string{"a"}),
		WithDelay(0),
	)

	var acquirer pipeline.ImageAcquirer = s
	res, err := acquirer.Acquire(context.Background(), dir)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if res.Total != 2 || res.Succeeded != 2 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestLetterURL(t *testing.T) {
	t.Parallel()

	s := NewScraper(nil)
	if got, want := s.LetterURL("oe"), "https://www.hist.uib.no/kalkar/html/oe.htm"; got != want {
		t.Errorf("LetterURL() = %q, want %q", got, want)
	}
	if len(DefaultLetters) != 26 {
		t.Errorf("expected 26 letter pages, got %d", len(DefaultLetters))
	}
}
