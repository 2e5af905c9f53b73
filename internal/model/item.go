package model

import (
	"errors"
	"strings"
)

// Language groups reported by the analysis service.
const (
	GroupLatin = "Latin"
	GroupCJK   = "CJK"

	// GroupUnknown is shown when no group can be determined.
	GroupUnknown = "-"
)

// Count types reported by the analysis service.
const (
	CountTypeWords      = "words"
	CountTypeCharacters = "characters"
)

var (
	// ErrItemBothSet is returned when an item carries both stats and an error.
	ErrItemBothSet = errors.New("item has both stats and error")

	// ErrItemNoneSet is returned when an item carries neither stats nor an error.
	ErrItemNoneSet = errors.New("item has neither stats nor error")

	// ErrItemNoURL is returned when an item has an empty URL.
	ErrItemNoURL = errors.New("item has no url")

	// ErrItemNegativeCount is returned when an item's stats carry a count below zero.
	ErrItemNegativeCount = errors.New("item has a negative count")
)

// Stats is the count result for one successfully analyzed page.
type Stats struct {
	// Count is the number of words or characters, depending on Type.
	Count int `json:"count"`

	// Type is "words" or "characters".
	Type string `json:"type"`

	// LanguageGroup is "Latin" or "CJK".
	LanguageGroup string `json:"language_group"`

	// CJKRatio is the share of CJK runes, rounded to two places.
	// Only set for CJK pages.
	CJKRatio *float64 `json:"cjk_ratio,omitempty"`
}

// Item is the analysis result for one URL or crawled page.
// Exactly one of Stats and Error is set.
type Item struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Stats *Stats `json:"stats,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewResultItem returns a successful item.
func NewResultItem(url, title string, stats Stats) Item {
	return Item{URL: url, Title: title, Stats: &stats}
}

// NewErrorItem returns a failed item.
func NewErrorItem(url, msg string) Item {
	return Item{URL: url, Error: msg}
}

// Failed reports whether the item is a per-item failure.
func (i Item) Failed() bool {
	return i.Error != ""
}

// DisplayTitle returns the title, or the URL when the title is blank.
func (i Item) DisplayTitle() string {
	if strings.TrimSpace(i.Title) == "" {
		return i.URL
	}
	return i.Title
}

// Validate checks the exactly-one-of stats/error invariant and that counts
// are not negative.
func (i Item) Validate() error {
	if i.URL == "" {
		return ErrItemNoURL
	}
	switch {
	case i.Stats != nil && i.Error != "":
		return ErrItemBothSet
	case i.Stats == nil && i.Error == "":
		return ErrItemNoneSet
	case i.Stats != nil && i.Stats.Count < 0:
		return ErrItemNegativeCount
	}
	return nil
}
