// Package database provides SQLite-based storage for pages analyzed by the
// lingoscan analysis service.
//
// PageStore keeps one row per analyzed URL or crawled page with its counts,
// language group, failure message and content hash. The store is optional;
// the service runs without it.
//
// SQLite is accessed through modernc.org/sqlite, a CGO-free driver, so the
// binary cross-compiles without a C toolchain.
package database
