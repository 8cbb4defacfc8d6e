// Package renderer writes a taxwiz.Report as markdown, HTML, JSON or an Excel
// workbook.
package renderer

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/etnz/taxwiz"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

// Formats supported by Write.
const (
	FormatXLSX     = "xlsx"
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// Formats returns the supported output formats.
func Formats() []string { return []string{FormatXLSX, FormatMarkdown, FormatHTML, FormatJSON} }

// FormatOf guesses the format from a file name, defaulting to xlsx.
func FormatOf(name string) string {
	switch {
	case strings.HasSuffix(name, ".md"):
		return FormatMarkdown
	case strings.HasSuffix(name, ".html"), strings.HasSuffix(name, ".htm"):
		return FormatHTML
	case strings.HasSuffix(name, ".json"):
		return FormatJSON
	}
	return FormatXLSX
}

// Markdown renders the report as a markdown document, one section per sheet.
func Markdown(r *taxwiz.Report) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Tax Report (%s)", r.Profile))
	doc.PlainText(fmt.Sprintf("Generated %s, amounts converted to %s. Run %s.", r.Generated.Format("2006-01-02 15:04"), r.Home, r.RunID))

	for _, t := range r.Sheets() {
		doc.H2(t.Name)
		if len(t.Rows) == 0 {
			doc.PlainText("None.")
			continue
		}
		table := md.TableSet{}
		for _, c := range t.Columns {
			table.Header = append(table.Header, c.Title)
		}
		for _, row := range t.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = Cell(r.Home, t.Columns[i].Kind, v)
			}
			table.Rows = append(table.Rows, cells)
		}
		doc.Table(table)
	}
	return doc.String()
}

// Cell formats a table value for display.
func Cell(home string, kind taxwiz.Kind, v any) string {
	switch v := v.(type) {
	case string:
		return v
	case taxwiz.Date:
		if v.IsZero() {
			return ""
		}
		return v.String()
	case decimal.Decimal:
		if kind == taxwiz.KindHome {
			return taxwiz.NewMoney(v, home).String()
		}
		return v.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
