package model

import (
	"encoding/json"
	"time"
)

// Aggregate holds the summary metrics of a Report.
type Aggregate struct {
	TotalCount   int    `json:"total_count"`
	PagesCrawled int    `json:"pages_crawled"`
	PrimaryGroup string `json:"primary_group"`
}

// EmptyAggregate returns the aggregate of a report without analyzable items.
func EmptyAggregate() Aggregate {
	return Aggregate{PrimaryGroup: GroupUnknown}
}

// Report is the normalized result of one submission.
// A Report is never modified after creation.
type Report struct {
	// Mode is the submission mode that produced the report.
	Mode Mode `json:"mode"`

	// Items are the per-URL results in service order.
	Items []Item `json:"results"`

	// Aggregate is computed locally in single mode and supplied by the
	// service in crawl mode.
	Aggregate Aggregate `json:"aggregate"`

	// CreatedAt is when the report was normalized.
	CreatedAt time.Time `json:"created_at"`

	// RawResults is the exact results array received from the service.
	// It is sent back unchanged on export.
	RawResults json.RawMessage `json:"-"`
}

// IsEmpty reports whether the report has nothing to export.
func (r *Report) IsEmpty() bool {
	return r == nil || len(r.Items) == 0
}

// FailedCount returns the number of failed items.
func (r *Report) FailedCount() int {
	if r == nil {
		return 0
	}
	n := 0
	for _, it := range r.Items {
		if it.Failed() {
			n++
		}
	}
	return n
}

// GroupCounts returns the summed count per language group over successful items.
func (r *Report) GroupCounts() map[string]int {
	counts := make(map[string]int)
	if r == nil {
		return counts
	}
	for _, it := range r.Items {
		if it.Failed() || it.Stats == nil {
			continue
		}
		counts[it.Stats.LanguageGroup] += it.Stats.Count
	}
	return counts
}

// ResultsJSON returns the bytes to send to the export endpoint.
func (r *Report) ResultsJSON() ([]byte, error) {
	if len(r.RawResults) > 0 {
		return r.RawResults, nil
	}
	return json.Marshal(r.Items)
}

// RawResponse is a successful /count or /crawl response before normalization.
// Results is kept as raw JSON so it can be exported byte for byte.
type RawResponse struct {
	Results   json.RawMessage `json:"results"`
	Aggregate *Aggregate      `json:"aggregate,omitempty"`
}
