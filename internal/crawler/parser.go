package crawler

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Parser extracts the title, visible text and links from an HTML page.
type Parser struct {
	// baseURL is the URL of the page being parsed, used for resolving relative URLs.
	baseURL *url.URL
}

// ParseResult contains the information extracted from an HTML page.
type ParseResult struct {
	// Title is the trimmed text of the first <title> element.
	Title string

	// Text is the visible text, script and style content removed,
	// one phrase per line.
	Text string

	// Links contains every resolved href of <a> elements.
	Links []string

	// InternalLinks are the same-host links, normalized and deduplicated.
	InternalLinks []string
}

// NewParser creates a new HTML parser with the given base URL.
// The base URL is used to resolve relative links.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// Parse parses HTML content and extracts the title, text and links.
func (p *Parser) Parse(content io.Reader) (*ParseResult, error) {
	root, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	result := &ParseResult{
		Links:         make([]string, 0),
		InternalLinks: make([]string, 0),
	}

	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			p.processAnchor(n, result, seen)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style").Remove()
	result.Title = strings.TrimSpace(doc.Find("title").First().Text())
	result.Text = CollapseText(visibleText(doc.Selection))

	return result, nil
}

// processAnchor records the link of an <a> element.
func (p *Parser) processAnchor(n *html.Node, result *ParseResult, seen map[string]bool) {
	href := getAttr(n, "href")
	if href == "" {
		return
	}
	resolved := p.resolveURL(href)
	if resolved == nil {
		return
	}
	result.Links = append(result.Links, resolved.String())

	if !strings.EqualFold(resolved.Host, p.baseURL.Host) {
		return
	}
	link := NormalizeLink(resolved)
	if !seen[link] {
		seen[link] = true
		result.InternalLinks = append(result.InternalLinks, link)
	}
}

// resolveURL resolves a relative URL against the base URL.
// It returns nil for non-navigational hrefs.
func (p *Parser) resolveURL(href string) *url.URL {
	href = strings.TrimSpace(href)
	lower := strings.ToLower(href)
	if strings.HasPrefix(lower, "javascript:") ||
		strings.HasPrefix(lower, "mailto:") ||
		strings.HasPrefix(lower, "tel:") ||
		strings.HasPrefix(lower, "data:") ||
		href == "#" {
		return nil
	}

	u, err := url.Parse(href)
	if err != nil {
		return nil
	}
	resolved := p.baseURL.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil
	}
	return resolved
}

// NormalizeLink reduces a URL to scheme://host/path without a trailing slash.
// Query strings and fragments are dropped.
func NormalizeLink(u *url.URL) string {
	link := strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host) + u.EscapedPath()
	return strings.TrimSuffix(link, "/")
}

// visibleText joins all text nodes below s with a space separator.
func visibleText(s *goquery.Selection) string {
	var sb strings.Builder
	var walk func(*goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "#text":
				sb.WriteString(c.Text())
				sb.WriteString(" ")
			case "#comment":
			default:
				walk(c)
			}
		})
	}
	walk(s)
	return sb.String()
}

// CollapseText trims every line, splits lines on double spaces and drops
// blank phrases. The phrases are joined with newlines.
func CollapseText(text string) string {
	phrases := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				phrases = append(phrases, phrase)
			}
		}
	}
	return strings.Join(phrases, "\n")
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
