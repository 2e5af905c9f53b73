// Package counter classifies text as Latin or CJK and counts it.
//
// Latin text is counted in whitespace-separated words. Text in which more
// than 10% of the non-whitespace runes are Chinese, Japanese or Korean is
// counted in characters instead, because those scripts do not separate
// words with spaces.
package counter
