// Package crawler fetches web pages and extracts their visible text, title
// and same-site links.
//
// # Components
//
//   - Fetcher: fetches one page and parses it
//   - Parser: HTML parser that extracts the title, visible text and links
//   - Spider: breadth-first crawler confined to the start URL's host
//
// # Politeness
//
//   - Limits concurrent requests (default 5)
//   - Optional delay after each request
//   - Optional robots.txt compliance
//   - Page and depth limits
//
// # Usage
//
//	spider := crawler.NewSpider(httpClient, crawler.WithMaxPages(200))
//	pages, err := spider.Crawl(ctx, "https://example.com")
package crawler
