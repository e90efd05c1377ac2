package model

import "time"

// Run is one classification of a corpus, as reported and persisted.
type Run struct {
	// ID is a UUID assigned when the run is created.
	ID string `json:"id"`

	// StartedAt is when classification began.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long classification took.
	Duration time.Duration `json:"duration"`

	// CorpusDir is the directory the corpus was read from.
	CorpusDir string `json:"corpus_dir"`

	// CorpusSize is the number of pages classified.
	CorpusSize int `json:"corpus_size"`

	// CorpusDigest fingerprints the corpus contents so runs over the same
	// text can be recognised.
	CorpusDigest string `json:"corpus_digest"`

	// Thresholds are the limits the run was classified with.
	Thresholds Thresholds `json:"thresholds"`

	// Result is the per-reason partition.
	Result *ClassificationResult `json:"result"`

	// Steps lists the pipeline steps that completed, in order.
	Steps []string `json:"steps,omitempty"`

	// Corpus is the snapshot being classified. It is held in memory only.
	Corpus Corpus `json:"-"`
}

// NewRun returns a Run with an empty result.
func NewRun(id, corpusDir string, thresholds Thresholds) *Run {
	return &Run{
		ID:         id,
		StartedAt:  time.Now(),
		CorpusDir:  corpusDir,
		Thresholds: thresholds,
		Result:     NewClassificationResult(),
	}
}

// RunDiff lists what changed between two runs, per reason.
type RunDiff struct {
	// From and To are the compared run ids.
	From string `json:"from"`
	To   string `json:"to"`

	// Added holds ids flagged in To but not in From.
	Added map[SkewReason][]string `json:"added"`

	// Removed holds ids flagged in From but not in To.
	Removed map[SkewReason][]string `json:"removed"`
}

// DiffResults compares two results reason by reason.
func DiffResults(from, to *ClassificationResult) (added, removed map[SkewReason][]string) {
	added = make(map[SkewReason][]string, len(reasonNames))
	removed = make(map[SkewReason][]string, len(reasonNames))
	for _, reason := range AllSkewReasons() {
		added[reason] = make([]string, 0)
		removed[reason] = make([]string, 0)
		for _, id := range to.IDs(reason) {
			if !from.Has(reason, id) {
				added[reason] = append(added[reason], id)
			}
		}
		for _, id := range from.IDs(reason) {
			if !to.Has(reason, id) {
				removed[reason] = append(removed[reason], id)
			}
		}
	}
	return added, removed
}

// Empty reports whether the diff has no changes.
func (d RunDiff) Empty() bool {
	for _, ids := range d.Added {
		if len(ids) > 0 {
			return false
		}
	}
	for _, ids := range d.Removed {
		if len(ids) > 0 {
			return false
		}
	}
	return true
}
