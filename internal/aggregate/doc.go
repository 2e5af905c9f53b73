// Package aggregate normalizes the two response shapes of the analysis
// service into a model.Report.
//
// Single-mode responses carry only per-URL results, so the aggregate is
// computed here. Crawl-mode responses carry the service's own aggregate,
// which is taken as-is.
package aggregate
