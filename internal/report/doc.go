// Package report renders analysis reports.
//
// Three presenters implement the Presenter interface:
//   - SimpleWriter: human-readable text for the terminal
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with a language group pie chart
//
// All of them share the row rules in format.go, so a title or an error row
// looks the same in every format.
package report
