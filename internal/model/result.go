package model

import (
	"encoding/json"
	"sort"
)

// ClassificationResult partitions flagged page ids by SkewReason.
//
// The partition is not exclusive: a page may appear under zero, one or
// several reasons. Every enumerated reason is always present; a page missing
// under a reason means it was not flagged for it.
type ClassificationResult struct {
	byReason map[SkewReason]map[string]struct{}
}

// PageRecord is the per-page view of a result, used for machine-readable output.
type PageRecord struct {
	ID      string       `json:"id"`
	Reasons []SkewReason `json:"reasons"`
}

// NewClassificationResult returns a result with an empty set for every reason.
func NewClassificationResult() *ClassificationResult {
	r := &ClassificationResult{byReason: make(map[SkewReason]map[string]struct{}, len(reasonNames))}
	for _, reason := range AllSkewReasons() {
		r.byReason[reason] = make(map[string]struct{})
	}
	return r
}

func (r *ClassificationResult) ensure() {
	if r.byReason == nil {
		*r = *NewClassificationResult()
	}
}

// Add records id under reason. Values outside the enumeration are ignored.
func (r *ClassificationResult) Add(reason SkewReason, id string) {
	if !reason.Valid() {
		return
	}
	r.ensure()
	r.byReason[reason][id] = struct{}{}
}

// Merge adds every entry of other into r.
func (r *ClassificationResult) Merge(other *ClassificationResult) {
	if other == nil {
		return
	}
	for reason, ids := range other.byReason {
		for id := range ids {
			r.Add(reason, id)
		}
	}
}

// Has reports whether id was flagged for reason.
func (r *ClassificationResult) Has(reason SkewReason, id string) bool {
	_, ok := r.byReason[reason][id]
	return ok
}

// Count returns how many pages were flagged for reason.
func (r *ClassificationResult) Count(reason SkewReason) int {
	return len(r.byReason[reason])
}

// IDs returns the ids flagged for reason, sorted.
func (r *ClassificationResult) IDs(reason SkewReason) []string {
	return sortedKeys(r.byReason[reason])
}

// Flagged returns the sorted, deduplicated union of ids across all reasons.
func (r *ClassificationResult) Flagged() []string {
	union := make(map[string]struct{})
	for _, ids := range r.byReason {
		for id := range ids {
			union[id] = struct{}{}
		}
	}
	return sortedKeys(union)
}

// Total returns the number of distinct flagged pages.
func (r *ClassificationResult) Total() int {
	return len(r.Flagged())
}

// ReasonsFor returns the reasons id was flagged for, in declaration order.
func (r *ClassificationResult) ReasonsFor(id string) []SkewReason {
	reasons := make([]SkewReason, 0, len(reasonNames))
	for _, reason := range AllSkewReasons() {
		if r.Has(reason, id) {
			reasons = append(reasons, reason)
		}
	}
	return reasons
}

// Records returns one PageRecord per flagged page, sorted by id.
func (r *ClassificationResult) Records() []PageRecord {
	flagged := r.Flagged()
	records := make([]PageRecord, len(flagged))
	for i, id := range flagged {
		records[i] = PageRecord{ID: id, Reasons: r.ReasonsFor(id)}
	}
	return records
}

// Sets returns a copy of the partition as reason -> sorted ids.
// Every enumerated reason is present.
func (r *ClassificationResult) Sets() map[SkewReason][]string {
	sets := make(map[SkewReason][]string, len(reasonNames))
	for _, reason := range AllSkewReasons() {
		sets[reason] = r.IDs(reason)
	}
	return sets
}

// MarshalJSON encodes the result as {"LAST_LINE": [...], ...}.
func (r *ClassificationResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Sets())
}

// UnmarshalJSON decodes the form produced by MarshalJSON.
func (r *ClassificationResult) UnmarshalJSON(data []byte) error {
	var sets map[SkewReason][]string
	if err := json.Unmarshal(data, &sets); err != nil {
		return err
	}
	*r = *NewClassificationResult()
	for reason, ids := range sets {
		for _, id := range ids {
			r.Add(reason, id)
		}
	}
	return nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
