package renderer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/etnz/taxwiz"
)

type jsonSheet struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type jsonReport struct {
	RunID     string      `json:"run_id"`
	Profile   string      `json:"profile"`
	Home      string      `json:"home_currency"`
	Generated time.Time   `json:"generated"`
	Sheets    []jsonSheet `json:"sheets"`
}

// JSON writes the report sheets as JSON. Amounts are strings, to keep their
// exact decimal value.
func JSON(r *taxwiz.Report, w io.Writer) error {
	out := jsonReport{
		RunID:     r.RunID,
		Profile:   r.Profile,
		Home:      r.Home,
		Generated: r.Generated,
	}
	for _, t := range r.Sheets() {
		s := jsonSheet{Name: t.Name, Rows: t.Rows}
		for _, c := range t.Columns {
			s.Columns = append(s.Columns, c.Title)
		}
		if s.Rows == nil {
			s.Rows = [][]any{}
		}
		out.Sheets = append(out.Sheets, s)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
