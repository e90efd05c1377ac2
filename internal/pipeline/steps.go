package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kalkar/skewscan/internal/analyzer"
	"github.com/kalkar/skewscan/internal/corpus"
	"github.com/kalkar/skewscan/internal/model"
)

// ImageAcquirer fetches page images into a directory.
type ImageAcquirer interface {
	Acquire(ctx context.Context, dir string) (BatchResult, error)
}

// ImageConverter turns every image in inDir into a text page in outDir.
type ImageConverter interface {
	ConvertDir(ctx context.Context, inDir, outDir string) (BatchResult, error)
}

// RunStore persists finished runs.
type RunStore interface {
	SaveRun(ctx context.Context, run *model.Run) error
}

// RunWriter renders a finished run.
type RunWriter interface {
	Write(run *model.Run) (int, error)
}

// RunObserver is notified of classification results.
type RunObserver interface {
	ObserveRun(run *model.Run)
	ObserveClassify(d time.Duration)
}

// CrawlStep downloads page images.
type CrawlStep struct {
	acquirer ImageAcquirer
	dir      string
	logger   *slog.Logger
}

// NewCrawlStep creates a step that fills dir with page images.
func NewCrawlStep(acquirer ImageAcquirer, dir string, logger *slog.Logger) *CrawlStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlStep{acquirer: acquirer, dir: dir, logger: logger}
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step. Individual download failures are logged by
// the acquirer and do not fail the step.
func (s *CrawlStep) Do(ctx context.Context, _ *model.Run) error {
	res, err := s.acquirer.Acquire(ctx, s.dir)
	if err != nil {
		return fmt.Errorf("acquire images: %w", err)
	}
	s.logger.Info("images acquired",
		"dir", s.dir,
		"downloaded", res.Succeeded,
		"skipped", res.Skipped,
		"failed", res.Failed,
	)
	return nil
}

// OCRStep converts page images into the text corpus.
type OCRStep struct {
	converter ImageConverter
	imageDir  string
	logger    *slog.Logger
}

// NewOCRStep creates a step that writes OCR output into the run's corpus
// directory.
func NewOCRStep(converter ImageConverter, imageDir string, logger *slog.Logger) *OCRStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRStep{converter: converter, imageDir: imageDir, logger: logger}
}

// Name returns the step name.
func (s *OCRStep) Name() string {
	return "ocr"
}

// Do executes the OCR step.
func (s *OCRStep) Do(ctx context.Context, run *model.Run) error {
	res, err := s.converter.ConvertDir(ctx, s.imageDir, run.CorpusDir)
	if err != nil {
		return fmt.Errorf("ocr %s: %w", s.imageDir, err)
	}
	s.logger.Info("ocr finished",
		"images", res.Total,
		"converted", res.Succeeded,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"elapsed", res.Elapsed,
	)
	return nil
}

// LoadCorpusStep reads the corpus snapshot from run.CorpusDir.
type LoadCorpusStep struct {
	opts []corpus.Option
}

// NewLoadCorpusStep creates a corpus loading step.
func NewLoadCorpusStep(opts ...corpus.Option) *LoadCorpusStep {
	return &LoadCorpusStep{opts: opts}
}

// Name returns the step name.
func (s *LoadCorpusStep) Name() string {
	return "load_corpus"
}

// Do executes the load step.
func (s *LoadCorpusStep) Do(ctx context.Context, run *model.Run) error {
	c, err := corpus.Load(ctx, run.CorpusDir, s.opts...)
	if err != nil {
		return fmt.Errorf("load corpus %s: %w", run.CorpusDir, err)
	}
	run.Corpus = c
	run.CorpusSize = c.Len()
	run.CorpusDigest = corpus.Digest(c)
	return nil
}

// ClassifyStep runs the skew heuristics over run.Corpus.
type ClassifyStep struct {
	workers  int
	observer RunObserver
	logger   *slog.Logger
}

// ClassifyStepOption configures a ClassifyStep.
type ClassifyStepOption func(*ClassifyStep)

// WithWorkers sets the classification fan-out. Values below one use
// GOMAXPROCS.
func WithWorkers(n int) ClassifyStepOption {
	return func(s *ClassifyStep) {
		s.workers = n
	}
}

// WithObserver reports each classification to o.
func WithObserver(o RunObserver) ClassifyStepOption {
	return func(s *ClassifyStep) {
		s.observer = o
	}
}

// WithClassifyLogger sets a custom logger for the classify step.
func WithClassifyLogger(logger *slog.Logger) ClassifyStepOption {
	return func(s *ClassifyStep) {
		s.logger = logger
	}
}

// NewClassifyStep creates a classification step.
func NewClassifyStep(opts ...ClassifyStepOption) *ClassifyStep {
	s := &ClassifyStep{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do executes the classify step.
func (s *ClassifyStep) Do(ctx context.Context, run *model.Run) error {
	start := time.Now()
	result, err := analyzer.ClassifyParallel(ctx, run.Corpus, run.Thresholds, s.workers)
	if err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	run.Duration = time.Since(start)
	run.Result = result
	run.CorpusSize = run.Corpus.Len()

	s.logger.Info("corpus classified",
		"pages", run.CorpusSize,
		"flagged", len(result.Flagged()),
		"duration", run.Duration,
	)

	if s.observer != nil {
		s.observer.ObserveClassify(run.Duration)
		s.observer.ObserveRun(run)
	}
	return nil
}

// PersistStep saves the run to a RunStore.
type PersistStep struct {
	store RunStore
}

// NewPersistStep creates a persistence step.
func NewPersistStep(store RunStore) *PersistStep {
	return &PersistStep{store: store}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persist step.
func (s *PersistStep) Do(ctx context.Context, run *model.Run) error {
	if err := s.store.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// ReportStep renders the run with a RunWriter.
type ReportStep struct {
	writer RunWriter
}

// NewReportStep creates a report step.
func NewReportStep(w RunWriter) *ReportStep {
	return &ReportStep{writer: w}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do executes the report step.
func (s *ReportStep) Do(_ context.Context, run *model.Run) error {
	if _, err := s.writer.Write(run); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
