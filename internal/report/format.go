package report

import (
	"errors"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/lingoscan/internal/client"
	"github.com/nao1215/lingoscan/internal/model"
)

// Display budgets in runes.
const (
	TitleBudget = 40
	URLBudget   = 20
)

// FailedTitle replaces the title of a failed item.
const FailedTitle = "Fetch Failed"

const ellipsis = "..."

// Truncate returns s when it has at most n runes, otherwise its first n runes
// followed by "...". A negative n is treated as 0.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + ellipsis
}

// FormatCount formats n with thousands separators ("12,345").
func FormatCount(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// Row is one display row of a report table.
type Row struct {
	Title  string
	Count  string
	Type   string
	Link   string
	Failed bool

	// Error is the per-item error text of a failed row.
	Error string
}

// Rows converts the items of r into display rows, in order.
func Rows(r *model.Report) []Row {
	if r == nil {
		return nil
	}
	rows := make([]Row, 0, len(r.Items))
	for _, it := range r.Items {
		if it.Failed() || it.Stats == nil {
			rows = append(rows, Row{
				Title:  FailedTitle,
				Count:  "0",
				Type:   model.GroupUnknown,
				Link:   Truncate(it.URL, URLBudget) + " ⚠",
				Failed: true,
				Error:  it.Error,
			})
			continue
		}
		rows = append(rows, Row{
			Title: Truncate(it.DisplayTitle(), TitleBudget),
			Count: FormatCount(it.Stats.Count),
			Type:  cases.Upper(language.Und).String(it.Stats.Type),
			Link:  it.URL,
		})
	}
	return rows
}

// ErrorMessage returns the text shown to the user for err.
func ErrorMessage(err error) string {
	var ee *client.ExportError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, client.ErrEmptyInput):
		return "Please enter a URL."
	case errors.As(err, &ee):
		return "Failed to download CSV: " + ee.Message
	default:
		return err.Error()
	}
}

type groupShare struct {
	Group string
	Count int
}

// groupShares returns the summed counts per language group, largest first.
func groupShares(r *model.Report) []groupShare {
	counts := r.GroupCounts()
	shares := make([]groupShare, 0, len(counts))
	for g, c := range counts {
		if g == "" {
			g = model.GroupUnknown
		}
		shares = append(shares, groupShare{Group: g, Count: c})
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Group < shares[j].Group
	})
	return shares
}
