package renderer

import (
	"bytes"
	"fmt"
	"html"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/taxwiz"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const page = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 2px 8px; }
</style>
</head>
<body>
%s</body>
</html>
`

// HTML renders the report as a standalone HTML page.
func HTML(r *taxwiz.Report) ([]byte, error) {
	var body bytes.Buffer
	gm := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := gm.Convert([]byte(Markdown(r)), &body); err != nil {
		return nil, fmt.Errorf("cannot convert report to html: %w", err)
	}
	// the markdown carries user provided tickers and descriptions.
	safe := bluemonday.UGCPolicy().SanitizeBytes(body.Bytes())
	title := html.EscapeString(fmt.Sprintf("Tax Report (%s)", r.Profile))
	return fmt.Appendf(nil, page, title, safe), nil
}

// Terminal renders markdown for a terminal of the given width.
func Terminal(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 120
	}
	tr, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	return tr.Render(markdown)
}
