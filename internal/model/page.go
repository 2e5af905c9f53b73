package model

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Page represents a page fetched by the crawler.
type Page struct {
	// URL is the normalized page URL.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type of the response.
	ContentType string `json:"content_type"`

	// Title is the trimmed <title> text. Empty when the page has none.
	Title string `json:"title,omitempty"`

	// Text is the visible text with script and style content removed.
	Text string `json:"-"`

	// Links are same-host links discovered on the page, normalized.
	Links []string `json:"links,omitempty"`

	// Hash is the SHA3-256 hash of Text.
	Hash string `json:"hash"`
}

// ComputeHash calculates the SHA3-256 hash of the page text.
// An empty text produces an empty hash.
func (p *Page) ComputeHash() {
	if p.Text == "" {
		p.Hash = ""
		return
	}
	sum := sha3.Sum256([]byte(p.Text))
	p.Hash = hex.EncodeToString(sum[:])
}

// DisplayTitle returns the title, or the URL when the page has no title.
func (p *Page) DisplayTitle() string {
	if p.Title == "" {
		return p.URL
	}
	return p.Title
}
