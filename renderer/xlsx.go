package renderer

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/Rhymond/go-money"
	"github.com/etnz/taxwiz"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	numberFormat = `#,##0.00`
	maxColWidth  = 50
)

// XLSX writes the report as an Excel workbook, one worksheet per sheet.
func XLSX(r *taxwiz.Report, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newStyles(f, r.Home)
	if err != nil {
		return err
	}

	for i, t := range r.Sheets() {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("cannot create sheet %q: %w", t.Name, err)
		}
		if err := writeSheet(f, r.Home, t, styles); err != nil {
			return fmt.Errorf("cannot write sheet %q: %w", t.Name, err)
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

type xlsxStyles struct {
	header int
	kinds  map[taxwiz.Kind]int
}

func newStyles(f *excelize.File, home string) (*xlsxStyles, error) {
	s := &xlsxStyles{kinds: make(map[taxwiz.Kind]int)}
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return nil, err
	}

	number := numberFormat
	if s.kinds[taxwiz.KindNumber], err = f.NewStyle(&excelize.Style{CustomNumFmt: &number}); err != nil {
		return nil, err
	}
	// e.g. #,##0 "Ft" for HUF
	symbol := home
	fraction := 2
	if c := money.GetCurrency(home); c != nil {
		symbol, fraction = c.Grapheme, c.Fraction
	}
	homeFmt := `#,##0`
	if fraction > 0 {
		homeFmt += "." + fmt.Sprintf("%0*d", fraction, 0)
	}
	homeFmt += fmt.Sprintf(` "%s"`, symbol)
	if s.kinds[taxwiz.KindHome], err = f.NewStyle(&excelize.Style{CustomNumFmt: &homeFmt}); err != nil {
		return nil, err
	}
	return s, nil
}

func writeSheet(f *excelize.File, home string, t taxwiz.Table, styles *xlsxStyles) error {
	widths := make([]int, len(t.Columns))
	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Title
		widths[i] = utf8.RuneCountInString(c.Title)
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(t.Name, "A1", last, styles.header); err != nil {
		return err
	}

	for j, row := range t.Rows {
		values := make([]any, len(row))
		for i, v := range row {
			switch v := v.(type) {
			case decimal.Decimal:
				values[i] = v.InexactFloat64()
			default:
				values[i] = Cell(home, t.Columns[i].Kind, v)
			}
			widths[i] = max(widths[i], utf8.RuneCountInString(Cell(home, t.Columns[i].Kind, v)))
		}
		cell, err := excelize.CoordinatesToCellName(1, j+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(t.Name, cell, &values); err != nil {
			return err
		}
	}

	for i, c := range t.Columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(t.Name, col, col, float64(min(widths[i]+2, maxColWidth))); err != nil {
			return err
		}
		style, ok := styles.kinds[c.Kind]
		if !ok || len(t.Rows) == 0 {
			continue
		}
		first, _ := excelize.CoordinatesToCellName(i+1, 2)
		end, _ := excelize.CoordinatesToCellName(i+1, len(t.Rows)+1)
		if err := f.SetCellStyle(t.Name, first, end, style); err != nil {
			return err
		}
	}
	return nil
}
