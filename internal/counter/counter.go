package counter

import (
	"math"
	"strings"
	"unicode"

	"github.com/nao1215/lingoscan/internal/model"
)

// CJKThreshold is the CJK rune ratio above which text is counted in characters.
const CJKThreshold = 0.1

// cjkRanges are the Unicode blocks treated as CJK.
var cjkRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x1100, Hi: 0x11FF, Stride: 1}, // Hangul Jamo
		{Lo: 0x3040, Hi: 0x309F, Stride: 1}, // Hiragana
		{Lo: 0x30A0, Hi: 0x30FF, Stride: 1}, // Katakana
		{Lo: 0x3400, Hi: 0x4DBF, Stride: 1}, // CJK Extension A
		{Lo: 0x4E00, Hi: 0x9FFF, Stride: 1}, // CJK Unified Ideographs
		{Lo: 0xAC00, Hi: 0xD7AF, Stride: 1}, // Hangul Syllables
		{Lo: 0xFF00, Hi: 0xFFEF, Stride: 1}, // Halfwidth and Fullwidth Forms
	},
}

// IsCJK reports whether r is a Chinese, Japanese or Korean rune.
func IsCJK(r rune) bool {
	return unicode.Is(cjkRanges, r)
}

// Count returns the stats for text.
func Count(text string) model.Stats {
	var total, cjk int
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if IsCJK(r) {
			cjk++
		}
	}

	if total == 0 {
		return model.Stats{Type: model.CountTypeWords, Count: 0, LanguageGroup: model.GroupLatin}
	}

	ratio := float64(cjk) / float64(total)
	if ratio > CJKThreshold {
		rounded := math.Round(ratio*100) / 100
		return model.Stats{
			Type:          model.CountTypeCharacters,
			Count:         total,
			LanguageGroup: model.GroupCJK,
			CJKRatio:      &rounded,
		}
	}

	return model.Stats{
		Type:          model.CountTypeWords,
		Count:         len(strings.Fields(text)),
		LanguageGroup: model.GroupLatin,
	}
}

// PrimaryGroup returns CJK if any stats are CJK, Latin if there are stats
// but none are CJK, and "-" for no stats.
func PrimaryGroup(stats []model.Stats) string {
	if len(stats) == 0 {
		return model.GroupUnknown
	}
	for _, s := range stats {
		if s.LanguageGroup == model.GroupCJK {
			return model.GroupCJK
		}
	}
	return model.GroupLatin
}
