package aggregate

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nao1215/lingoscan/internal/model"
)

func raw(t *testing.T, results string, agg *model.Aggregate) *model.RawResponse {
	t.Helper()
	return &model.RawResponse{Results: json.RawMessage(results), Aggregate: agg}
}

func TestNormalizeSingle(t *testing.T) {
	t.Parallel()

	t.Run("mixed results count only successful items", func(t *testing.T) {
		t.Parallel()
		results := `[
			{"url":"https://a.com","title":"A","stats":{"count":120,"type":"words","language_group":"Latin"}},
			{"url":"https://b.com","error":"timeout"}
		]`
		r, err := Normalize(model.ModeSingle, raw(t, results, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Aggregate.TotalCount != 120 {
			t.Errorf("TotalCount = %d, want 120", r.Aggregate.TotalCount)
		}
		if r.Aggregate.PagesCrawled != 1 {
			t.Errorf("PagesCrawled = %d, want 1", r.Aggregate.PagesCrawled)
		}
		if r.Aggregate.PrimaryGroup != model.GroupLatin {
			t.Errorf("PrimaryGroup = %q", r.Aggregate.PrimaryGroup)
		}
		if len(r.Items) != 2 || r.Items[1].URL != "https://b.com" {
			t.Errorf("items not kept in order: %+v", r.Items)
		}
		if string(r.RawResults) != results {
			t.Error("expected raw results to be kept byte for byte")
		}
	})

	t.Run("last successful item decides the primary group", func(t *testing.T) {
		t.Parallel()
		results := `[
			{"url":"https://a.jp","stats":{"count":10,"type":"characters","language_group":"CJK"}},
			{"url":"https://b.com","stats":{"count":5,"type":"words","language_group":"Latin"}},
			{"url":"https://c.com","error":"HTTP 404 Not Found"}
		]`
		r, err := Normalize(model.ModeSingle, raw(t, results, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Aggregate.PrimaryGroup != model.GroupLatin {
			t.Errorf("PrimaryGroup = %q, want Latin", r.Aggregate.PrimaryGroup)
		}
		if r.Aggregate.TotalCount != 15 {
			t.Errorf("TotalCount = %d, want 15", r.Aggregate.TotalCount)
		}
	})

	t.Run("all failed items give an empty aggregate", func(t *testing.T) {
		t.Parallel()
		r, err := Normalize(model.ModeSingle, raw(t, `[{"url":"https://a.com","error":"boom"}]`, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Aggregate != model.EmptyAggregate() {
			t.Errorf("Aggregate = %+v", r.Aggregate)
		}
	})

	t.Run("service aggregate is ignored in single mode", func(t *testing.T) {
		t.Parallel()
		agg := &model.Aggregate{TotalCount: 999, PagesCrawled: 9, PrimaryGroup: "CJK"}
		r, err := Normalize(model.ModeSingle, raw(t, `[]`, agg))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Aggregate.TotalCount != 0 || r.Aggregate.PrimaryGroup != model.GroupUnknown {
			t.Errorf("Aggregate = %+v", r.Aggregate)
		}
	})

	t.Run("majority policy picks the most frequent group", func(t *testing.T) {
		t.Parallel()
		results := `[
			{"url":"https://a.jp","stats":{"count":1,"type":"characters","language_group":"CJK"}},
			{"url":"https://b.jp","stats":{"count":1,"type":"characters","language_group":"CJK"}},
			{"url":"https://c.com","stats":{"count":1,"type":"words","language_group":"Latin"}}
		]`
		r, err := Normalize(model.ModeSingle, raw(t, results, nil), WithPrimaryGroupPolicy(Majority))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Aggregate.PrimaryGroup != model.GroupCJK {
			t.Errorf("PrimaryGroup = %q, want CJK", r.Aggregate.PrimaryGroup)
		}
	})
}

func TestNormalizeCrawl(t *testing.T) {
	t.Parallel()

	t.Run("service aggregate is taken verbatim", func(t *testing.T) {
		t.Parallel()
		agg := &model.Aggregate{TotalCount: 900, PagesCrawled: 30, PrimaryGroup: "English"}
		results := `[{"url":"https://example.com","stats":{"count":3,"type":"words","language_group":"Latin"}}]`
		r, err := Normalize(model.ModeCrawl, raw(t, results, agg))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Aggregate != *agg {
			t.Errorf("Aggregate = %+v, want %+v", r.Aggregate, *agg)
		}
		if r.Mode != model.ModeCrawl {
			t.Errorf("Mode = %q", r.Mode)
		}
	})

	t.Run("missing aggregate gives the empty aggregate", func(t *testing.T) {
		t.Parallel()
		r, err := Normalize(model.ModeCrawl, raw(t, `[]`, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.Aggregate != model.EmptyAggregate() {
			t.Errorf("Aggregate = %+v", r.Aggregate)
		}
	})
}

func TestNormalizeErrors(t *testing.T) {
	t.Parallel()

	t.Run("item with both stats and error is rejected", func(t *testing.T) {
		t.Parallel()
		results := `[
			{"url":"https://a.com","stats":{"count":1,"type":"words","language_group":"Latin"}},
			{"url":"https://b.com","stats":{"count":1,"type":"words","language_group":"Latin"},"error":"x"}
		]`
		_, err := Normalize(model.ModeSingle, raw(t, results, nil))
		var invalid *InvalidItemError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidItemError, got %v", err)
		}
		if invalid.Index != 1 || !errors.Is(err, model.ErrItemBothSet) {
			t.Errorf("unexpected error detail: %v", err)
		}
	})

	t.Run("item with neither stats nor error is rejected", func(t *testing.T) {
		t.Parallel()
		_, err := Normalize(model.ModeCrawl, raw(t, `[{"url":"https://a.com"}]`, nil))
		if !errors.Is(err, model.ErrItemNoneSet) {
			t.Errorf("expected ErrItemNoneSet, got %v", err)
		}
	})

	t.Run("negative count is rejected before aggregation", func(t *testing.T) {
		t.Parallel()
		results := `[{"url":"https://a.com","stats":{"count":-5,"type":"words","language_group":"Latin"}}]`
		r, err := Normalize(model.ModeSingle, raw(t, results, nil))
		if !errors.Is(err, model.ErrItemNegativeCount) {
			t.Fatalf("expected ErrItemNegativeCount, got %v", err)
		}
		if r != nil {
			t.Errorf("expected no report, got total %d", r.Aggregate.TotalCount)
		}
	})

	t.Run("results that are not an array fail to decode", func(t *testing.T) {
		t.Parallel()
		if _, err := Normalize(model.ModeSingle, raw(t, `{"url":"x"}`, nil)); err == nil {
			t.Error("expected decode error")
		}
	})

	t.Run("nil response returns ErrNoResponse", func(t *testing.T) {
		t.Parallel()
		if _, err := Normalize(model.ModeSingle, nil); !errors.Is(err, ErrNoResponse) {
			t.Errorf("expected ErrNoResponse, got %v", err)
		}
	})

	t.Run("null results normalize to an empty report", func(t *testing.T) {
		t.Parallel()
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		r, err := Normalize(model.ModeSingle, raw(t, `null`, nil), WithClock(func() time.Time { return fixed }))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !r.IsEmpty() || !r.CreatedAt.Equal(fixed) {
			t.Errorf("unexpected report %+v", r)
		}
	})
}

func TestPolicies(t *testing.T) {
	t.Parallel()

	item := func(group string) model.Item {
		return model.NewResultItem("https://x", "", model.Stats{Count: 1, LanguageGroup: group})
	}

	tests := []struct {
		name         string
		items        []model.Item
		wantLast     string
		wantMajority string
	}{
		{name: "no items", items: nil, wantLast: "", wantMajority: ""},
		{name: "tie goes to first seen", items: []model.Item{item("CJK"), item("Latin")}, wantLast: "Latin", wantMajority: "CJK"},
		{name: "failed items are skipped", items: []model.Item{item("CJK"), model.NewErrorItem("https://y", "x")}, wantLast: "CJK", wantMajority: "CJK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := LastWins(tt.items); got != tt.wantLast {
				t.Errorf("LastWins = %q, want %q", got, tt.wantLast)
			}
			if got := Majority(tt.items); got != tt.wantMajority {
				t.Errorf("Majority = %q, want %q", got, tt.wantMajority)
			}
		})
	}

	t.Run("PolicyByName rejects unknown names", func(t *testing.T) {
		t.Parallel()
		if _, ok := PolicyByName("first"); ok {
			t.Error("expected unknown policy to be rejected")
		}
		if p, ok := PolicyByName("majority"); !ok || p == nil {
			t.Error("expected majority policy")
		}
	})
}
