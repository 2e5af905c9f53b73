// Package service is the reference analysis service that the lingoscan
// client talks to.
//
// Endpoints:
//   - POST /count   analyze a list of URLs independently
//   - POST /crawl   crawl one site and analyze every page found
//   - POST /export  turn result items into a CSV attachment
//   - GET  /pages   recent analyses from the page store, when enabled
//   - GET  /healthz liveness
//   - GET  /metrics Prometheus metrics
//
// Failures are answered with a non-2xx status and {"detail": "..."}.
package service
