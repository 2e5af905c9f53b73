package crawler

import (
	"net/url"
	"strings"
	"testing"
)

// TestParser tests HTML parsing functionality.
func TestParser(t *testing.T) {
	t.Parallel()

	t.Run("extracts trimmed title", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>  Test Page </title></head><body></body></html>`
		parser, err := NewParser("https://example.com/page")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if result.Title != "Test Page" {
			t.Errorf("expected title 'Test Page', got %q", result.Title)
		}
	})

	t.Run("visible text excludes script and style", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><style>body { color: red; }</style></head>
			<body><p>Hello<b>World</b></p><script>var hidden = "secret";</script><p>again</p></body></html>`
		parser, err := NewParser("https://example.com/")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if strings.Contains(result.Text, "secret") || strings.Contains(result.Text, "color") {
			t.Errorf("text contains script or style content: %q", result.Text)
		}
		if got := strings.Fields(result.Text); len(got) != 3 {
			t.Errorf("expected 3 words, got %v", got)
		}
	})

	t.Run("keeps same host links normalized and deduplicated", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/about/">About</a>
			<a href="https://example.com/about?ref=nav#team">About again</a>
			<a href="https://other.com/x">Other</a>
			<a href="mailto:a@example.com">Mail</a>
			<a href="javascript:void(0)">JS</a>
			<a href="#">Top</a>
		</body></html>`
		parser, err := NewParser("https://example.com/index.html")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(html))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}

		if len(result.Links) != 3 {
			t.Errorf("expected 3 links, got %d: %v", len(result.Links), result.Links)
		}
		if len(result.InternalLinks) != 1 || result.InternalLinks[0] != "https://example.com/about" {
			t.Errorf("unexpected internal links: %v", result.InternalLinks)
		}
	})

	t.Run("handles malformed html", func(t *testing.T) {
		t.Parallel()

		parser, err := NewParser("https://example.com/")
		if err != nil {
			t.Fatalf("failed to create parser: %v", err)
		}

		result, err := parser.Parse(strings.NewReader(`<p>unclosed <div>text`))
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		if result.Title != "" {
			t.Errorf("expected empty title, got %q", result.Title)
		}
		if len(strings.Fields(result.Text)) != 2 {
			t.Errorf("expected 2 words, got %q", result.Text)
		}
	})
}

func TestCollapseText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "blank lines dropped", in: "\n  \n\t\n", want: ""},
		{name: "lines trimmed", in: "  a b \n c ", want: "a b\nc"},
		{name: "double spaces split phrases", in: "Home  About  Contact", want: "Home\nAbout\nContact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := CollapseText(tt.in); got != tt.want {
				t.Errorf("CollapseText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "https://example.com/", want: "https://example.com"},
		{in: "https://example.com", want: "https://example.com"},
		{in: "HTTPS://Example.COM/Path/", want: "https://example.com/Path"},
		{in: "https://example.com/a?b=c#d", want: "https://example.com/a"},
		{in: "http://127.0.0.1:8080/x", want: "http://127.0.0.1:8080/x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			u, err := url.Parse(tt.in)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := NormalizeLink(u); got != tt.want {
				t.Errorf("NormalizeLink(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
