package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/unicode/norm"

	"github.com/kalkar/skewscan/internal/config"
	"github.com/kalkar/skewscan/internal/metrics"
	"github.com/kalkar/skewscan/internal/pipeline"
)

// DefaultLetters lists the letter pages in visit order. The site has no
// page for c, q, w, x or z. "k" appears twice and the final "ae" page is
// not linked from the navigation; both are kept so indexes match earlier
// downloads.
var DefaultLetters = []string{
	"a", "b", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n",
	"o", "p", "k", "r", "s", "t", "u", "v", "y", "ae", "oe", "aa", "ae",
}

// DownloadRecorder counts download outcomes.
type DownloadRecorder interface {
	IncDownload(result string)
}

// Scraper collects and downloads page scans from the dictionary site.
type Scraper struct {
	client      *http.Client
	baseURL     string
	letters     []string
	delay       time.Duration
	userAgent   string
	maxBodySize int64
	concurrency int
	force       bool
	logger      *slog.Logger
	recorder    DownloadRecorder
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithBaseURL sets the dictionary root URL.
func WithBaseURL(u string) Option {
	return func(s *Scraper) {
		s.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithLetters overrides the letter pages to visit.
func WithLetters(letters []string) Option {
	return func(s *Scraper) {
		s.letters = letters
	}
}

// WithDelay sets the pause between letter page requests.
func WithDelay(d time.Duration) Option {
	return func(s *Scraper) {
		s.delay = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		s.userAgent = ua
	}
}

// WithMaxBodySize limits how much of each response is read.
func WithMaxBodySize(n int64) Option {
	return func(s *Scraper) {
		s.maxBodySize = n
	}
}

// WithConcurrency sets how many downloads run at once.
func WithConcurrency(n int) Option {
	return func(s *Scraper) {
		s.concurrency = n
	}
}

// WithForce re-downloads scans that already exist on disk.
func WithForce(force bool) Option {
	return func(s *Scraper) {
		s.force = force
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// WithRecorder counts every download outcome on r.
func WithRecorder(r DownloadRecorder) Option {
	return func(s *Scraper) {
		s.recorder = r
	}
}

// NewScraper creates a Scraper using client for all requests.
func NewScraper(client *http.Client, opts ...Option) *Scraper {
	s := &Scraper{
		client:      client,
		baseURL:     config.DefaultBaseURL,
		letters:     DefaultLetters,
		delay:       config.DefaultCrawlDelay,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		concurrency: config.DefaultCrawlConcurrency,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		s.client = http.DefaultClient
	}

	return s
}

// LetterURL returns the index page for letter.
func (s *Scraper) LetterURL(letter string) string {
	return s.baseURL + "/html/" + letter + ".htm"
}

// Collect visits every letter page and returns the scan links in visit
// order. A letter page that cannot be fetched is logged and skipped.
func (s *Scraper) Collect(ctx context.Context) ([]Link, error) {
	links := make([]Link, 0)

	for i, letter := range s.letters {
		if err := ctx.Err(); err != nil {
			return links, err
		}

		pageURL := s.LetterURL(letter)
		found, err := s.collectPage(ctx, pageURL)
		if err != nil {
			if ctx.Err() != nil {
				return links, ctx.Err()
			}
			s.logger.Warn("skipping letter page",
				"letter", letter,
				"url", pageURL,
				"error", err,
			)
		} else {
			s.logger.Info("letter page read",
				"letter", letter,
				"links", len(found),
			)
			links = append(links, found...)
		}

		if s.delay > 0 && i < len(s.letters)-1 {
			select {
			case <-ctx.Done():
				return links, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}

	return links, nil
}

func (s *Scraper) collectPage(ctx context.Context, pageURL string) ([]Link, error) {
	body, contentType, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	parser, err := NewParser(s.baseURL, pageURL)
	if err != nil {
		return nil, err
	}
	return parser.Parse(strings.NewReader(string(body)), contentType)
}

// fetch performs a GET and returns the body and Content-Type.
func (s *Scraper) fetch(ctx context.Context, target string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: %s from %s", ErrUnexpectedStatus, resp.Status, target)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, "", err
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// indexedLink is a Link with its position in the collected list.
type indexedLink struct {
	index int
	link  Link
}

// Download saves every link into dir as FileName(index, headword). Failed
// downloads are logged and counted in the result.
func (s *Scraper) Download(ctx context.Context, links []Link, dir string) (pipeline.BatchResult, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return pipeline.BatchResult{}, fmt.Errorf("create image directory: %w", err)
	}

	items := make([]indexedLink, len(links))
	for i, l := range links {
		items[i] = indexedLink{index: i, link: l}
	}

	bp := pipeline.NewBatchProcessor(
		pipeline.WithConcurrency[indexedLink](s.concurrency),
		pipeline.WithBatchSize[indexedLink](max(len(items), 1)),
		pipeline.WithBatchLogger[indexedLink](s.logger),
		pipeline.WithItemName(func(it indexedLink) string { return it.link.URL }),
		pipeline.WithItemCallback(func(_ indexedLink, err error) { s.record(err) }),
	)

	return bp.Process(ctx, items, func(ctx context.Context, it indexedLink) error {
		return s.downloadOne(ctx, dir, it)
	})
}

// Acquire collects the links and downloads them into dir.
func (s *Scraper) Acquire(ctx context.Context, dir string) (pipeline.BatchResult, error) {
	links, err := s.Collect(ctx)
	if err != nil {
		return pipeline.BatchResult{}, err
	}
	return s.Download(ctx, links, dir)
}

func (s *Scraper) downloadOne(ctx context.Context, dir string, it indexedLink) error {
	target := filepath.Join(dir, FileName(it.index, it.link.Headword))

	if !s.force {
		if _, err := os.Stat(target); err == nil {
			return fmt.Errorf("%s exists: %w", target, pipeline.ErrSkipped)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	body, _, err := s.fetch(ctx, it.link.URL)
	if err != nil {
		return err
	}

	mtype := mimetype.Detect(body)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return fmt.Errorf("%w: %s is %s", ErrNotImage, it.link.URL, mtype.String())
	}

	if err := os.WriteFile(target, body, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	s.logger.Debug("scan downloaded", "file", target, "type", mtype.String())
	return nil
}

func (s *Scraper) record(err error) {
	if s.recorder == nil {
		return
	}
	switch {
	case err == nil:
		s.recorder.IncDownload(metrics.ResultSuccess)
	case errors.Is(err, pipeline.ErrSkipped):
		s.recorder.IncDownload(metrics.ResultSkipped)
	default:
		s.recorder.IncDownload(metrics.ResultFailure)
	}
}

// FileName returns the scan file name for the link at index. The headword
// is NFC-normalised so that "å" written with a combining ring and the
// precomposed form map to the same file. Path separators are replaced.
func FileName(index int, headword string) string {
	h := norm.NFC.String(strings.TrimSpace(headword))
	h = strings.NewReplacer("/", "_", `\`, "_").Replace(h)
	return fmt.Sprintf("%d-%s%s", index, h, ImageExtension)
}
