// Package pipeline runs URL analyses concurrently.
//
// BatchProcessor fans a list of URLs out to an AnalyzeFunc with a bounded
// number of goroutines (errgroup with SetLimit) and returns the items in
// input order. A failing URL becomes an error item; it never aborts the
// remaining URLs.
package pipeline
