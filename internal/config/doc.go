// Package config provides configuration structures and utilities for lingoscan.
// It defines the client settings (analysis service URL, report output, export
// directory) and the settings of the reference analysis service (listen
// address, fetch and crawl limits, page store).
package config
