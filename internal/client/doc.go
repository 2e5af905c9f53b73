// Package client talks to the analysis service.
//
// Dispatcher submits one analysis request at a time: /count for a list of
// URLs, /crawl for a site root. Exporter sends the results of the last report
// back to /export and saves the returned CSV file.
package client
