// Package model defines the data structures shared by the lingoscan client,
// presenters and the reference analysis service.
//
// This package contains the following main types:
//   - Mode: the submission mode (single URLs or a site crawl)
//   - Item: the analysis result for one URL or page
//   - Aggregate: summary metrics for a Report
//   - Report: the normalized, renderable result of one submission
//   - Page: a page fetched by the crawler
//
// The models serialize to the JSON wire format of the analysis service.
package model
