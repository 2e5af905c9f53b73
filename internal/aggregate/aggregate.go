package aggregate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/lingoscan/internal/model"
)

// ErrNoResponse is returned when Normalize is given a nil response.
var ErrNoResponse = errors.New("no response to normalize")

// InvalidItemError reports a result item that breaks the exactly-one-of
// stats/error rule.
type InvalidItemError struct {
	Index int
	Err   error
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("invalid result item %d: %v", e.Index, e.Err)
}

func (e *InvalidItemError) Unwrap() error {
	return e.Err
}

// PrimaryGroupPolicy picks the primary language group of a single-mode report
// from its successful items, in order. It returns "" when it has no answer.
type PrimaryGroupPolicy func(items []model.Item) string

// LastWins returns the language group of the last successful item.
func LastWins(items []model.Item) string {
	group := ""
	for _, it := range items {
		if it.Failed() || it.Stats == nil {
			continue
		}
		group = it.Stats.LanguageGroup
	}
	return group
}

// Majority returns the most frequent language group among successful items.
// Ties go to the group seen first.
func Majority(items []model.Item) string {
	counts := make(map[string]int)
	var order []string
	for _, it := range items {
		if it.Failed() || it.Stats == nil {
			continue
		}
		g := it.Stats.LanguageGroup
		if counts[g] == 0 {
			order = append(order, g)
		}
		counts[g]++
	}

	best := ""
	for _, g := range order {
		if best == "" || counts[g] > counts[best] {
			best = g
		}
	}
	return best
}

// PolicyByName maps a configuration name to a policy.
// "last" and "" select LastWins; "majority" selects Majority.
func PolicyByName(name string) (PrimaryGroupPolicy, bool) {
	switch name {
	case "", "last":
		return LastWins, true
	case "majority":
		return Majority, true
	default:
		return nil, false
	}
}

type options struct {
	policy PrimaryGroupPolicy
	now    func() time.Time
}

// Option configures Normalize.
type Option func(*options)

// WithPrimaryGroupPolicy sets the single-mode primary group policy.
func WithPrimaryGroupPolicy(p PrimaryGroupPolicy) Option {
	return func(o *options) {
		if p != nil {
			o.policy = p
		}
	}
}

// WithClock sets the time source for Report.CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Normalize converts a raw service response into a Report.
// Items are kept in service order. Any item that breaks the exactly-one-of
// rule fails the whole normalization with *InvalidItemError.
func Normalize(mode model.Mode, raw *model.RawResponse, opts ...Option) (*model.Report, error) {
	if raw == nil {
		return nil, ErrNoResponse
	}

	o := options{policy: LastWins, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	items, err := decodeItems(raw.Results)
	if err != nil {
		return nil, err
	}
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return nil, &InvalidItemError{Index: i, Err: err}
		}
	}

	r := &model.Report{
		Mode:       mode,
		Items:      items,
		CreatedAt:  o.now(),
		RawResults: raw.Results,
	}

	if mode == model.ModeCrawl {
		if raw.Aggregate != nil {
			r.Aggregate = *raw.Aggregate
		} else {
			r.Aggregate = model.EmptyAggregate()
		}
		return r, nil
	}

	r.Aggregate = computeAggregate(items, o.policy)
	return r, nil
}

func decodeItems(data json.RawMessage) ([]model.Item, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []model.Item{}, nil
	}
	var items []model.Item
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	return items, nil
}

func computeAggregate(items []model.Item, policy PrimaryGroupPolicy) model.Aggregate {
	agg := model.EmptyAggregate()
	for _, it := range items {
		if it.Failed() || it.Stats == nil {
			continue
		}
		agg.TotalCount += it.Stats.Count
		agg.PagesCrawled++
	}
	if g := policy(items); g != "" {
		agg.PrimaryGroup = g
	}
	return agg
}
