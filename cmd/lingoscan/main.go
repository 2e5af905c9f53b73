// Package main provides the entry point for the lingoscan CLI.
//
// lingoscan measures how much text a website carries: words for Latin
// script pages and characters for Chinese, Japanese and Korean pages.
//
// Usage:
//
//	lingoscan analyze https://example.com https://example.org
//	lingoscan analyze --crawl https://example.com
//	lingoscan shell
//	lingoscan serve
//
// See --help for all available options.
package main

func main() {
	Execute()
}
