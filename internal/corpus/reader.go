package corpus

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kalkar/skewscan/internal/model"
)

// Extension is the suffix a file must have to be read as a page.
const Extension = ".txt"

// Option configures Load.
type Option func(*loader)

// WithLogger sets the logger used for skipped files and missing directories.
func WithLogger(logger *slog.Logger) Option {
	return func(l *loader) {
		l.logger = logger
	}
}

// WithConcurrency bounds how many files are read at once.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(l *loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithFS reads from fsys instead of the operating system. dir is then
// interpreted as a slash-separated path inside fsys.
func WithFS(fsys fs.FS) Option {
	return func(l *loader) {
		l.fsys = fsys
	}
}

type loader struct {
	logger      *slog.Logger
	concurrency int
	fsys        fs.FS
}

// Load reads every page under dir.
func Load(ctx context.Context, dir string, opts ...Option) (model.Corpus, error) {
	l := &loader{
		logger:      slog.Default(),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(l)
	}

	if dir == "" {
		dir = "."
	}

	fsys, root := l.fsys, dir
	if fsys == nil {
		fsys, root = os.DirFS(dir), "."
	}

	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		l.logger.Warn("cannot read corpus directory, continuing with an empty corpus",
			"dir", dir,
			"error", err)
		return model.Corpus{}, nil
	}

	var (
		mu    sync.Mutex
		pages = make(map[string][]string, len(entries))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, Extension) || !l.isRegular(fsys, root, entry) {
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			data, err := fs.ReadFile(fsys, joinPath(root, name))
			if err != nil {
				l.logger.Warn("skipping unreadable page",
					"page", name,
					"error", err)
				return nil
			}

			lines := SplitLines(data)
			mu.Lock()
			pages[name] = lines
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return model.Corpus{}, err
	}

	l.logger.Debug("corpus loaded", "dir", dir, "pages", len(pages))
	return model.NewCorpus(pages), nil
}

// SplitLines splits data into lines the way a line reader would: "\n",
// "\r\n" and a lone "\r" all end a line, and a trailing terminator adds no
// final empty element. Invalid UTF-8 becomes U+FFFD. Empty input has no lines.
func SplitLines(data []byte) []string {
	if len(data) == 0 {
		return []string{}
	}

	text := strings.ToValidUTF8(string(data), "�")
	text = lineBreaks.Replace(text)
	text = strings.TrimSuffix(text, "\n")

	return strings.Split(text, "\n")
}

// lineBreaks folds "\r\n" and "\r" into "\n".
var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// isRegular reports whether entry is a regular file, following symlinks.
func (l *loader) isRegular(fsys fs.FS, root string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := fs.Stat(fsys, joinPath(root, entry.Name()))
	if err != nil {
		l.logger.Warn("skipping broken link", "page", entry.Name(), "error", err)
		return false
	}
	return info.Mode().IsRegular()
}

// joinPath joins fs.FS path elements; "." is the root.
func joinPath(root, name string) string {
	if root == "." || root == "" {
		return name
	}
	return filepath.ToSlash(filepath.Join(root, name))
}
