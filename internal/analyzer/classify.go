package analyzer

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/kalkar/skewscan/internal/model"
)

// Evaluate returns every reason page is flagged for, in declaration order.
// An empty slice means the page looks fine.
func Evaluate(page model.Page, t model.Thresholds) []model.SkewReason {
	reasons := make([]model.SkewReason, 0, len(predicates))
	for _, p := range predicates {
		if p.check(page, t) {
			reasons = append(reasons, p.reason)
		}
	}
	return reasons
}

// IsSkewed reports whether any heuristic flags page.
// Callers that need to know why should use Evaluate or Classify.
func IsSkewed(page model.Page, t model.Thresholds) bool {
	return len(Evaluate(page, t)) > 0
}

// Classify evaluates every heuristic against every page of corpus.
// The empty corpus yields an empty set for every reason.
func Classify(corpus model.Corpus, t model.Thresholds) *model.ClassificationResult {
	result := model.NewClassificationResult()
	for _, page := range corpus.Pages() {
		for _, reason := range Evaluate(page, t) {
			result.Add(reason, page.ID)
		}
	}
	return result
}

// ClassifyParallel is Classify fanned out over at most workers goroutines.
// A non-positive workers uses GOMAXPROCS. The result is identical to
// Classify; only ctx cancellation can make it fail.
func ClassifyParallel(ctx context.Context, corpus model.Corpus, t model.Thresholds, workers int) (*model.ClassificationResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages := corpus.Pages()
	result := model.NewClassificationResult()
	if len(pages) == 0 {
		return result, nil
	}

	chunks := chunk(pages, workers)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, pages := range chunks {
		g.Go(func() error {
			partial := model.NewClassificationResult()
			for _, page := range pages {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				for _, reason := range Evaluate(page, t) {
					partial.Add(reason, page.ID)
				}
			}

			mu.Lock()
			result.Merge(partial)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// chunk splits pages into at most n contiguous, roughly equal slices.
func chunk(pages []model.Page, n int) [][]model.Page {
	if n > len(pages) {
		n = len(pages)
	}
	size := (len(pages) + n - 1) / n
	chunks := make([][]model.Page, 0, n)
	for start := 0; start < len(pages); start += size {
		end := min(start+size, len(pages))
		chunks = append(chunks, pages[start:end])
	}
	return chunks
}
