package report

import (
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Report"

// XLSXRenderer writes the report into a single worksheet with a styled header row per section.
type XLSXRenderer struct{}

func (XLSXRenderer) Render(w io.Writer, c *Content) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	headingStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
		Border: border,
	})
	if err != nil {
		return err
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return err
	}

	row := 1
	writeRow := func(values []string, style int) error {
		cells := make([]any, len(values))
		for i, v := range values {
			cells[i] = v
		}
		start, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, start, &cells); err != nil {
			return err
		}
		if style != 0 && len(values) > 0 {
			end, err := excelize.CoordinatesToCellName(len(values), row)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(sheetName, start, end, style); err != nil {
				return err
			}
		}
		row++
		return nil
	}

	if c.Title != "" {
		if err := writeRow([]string{c.Title}, titleStyle); err != nil {
			return err
		}
		for _, s := range c.Subtitle {
			if err := writeRow([]string{s}, 0); err != nil {
				return err
			}
		}
		row++
	}

	widths := map[int]int{}
	for _, s := range c.Sections {
		if s.Heading != "" {
			if err := writeRow([]string{s.Heading}, headingStyle); err != nil {
				return err
			}
		}
		if err := writeRow(s.Table.Columns, headerStyle); err != nil {
			return err
		}
		trackWidths(widths, s.Table.Columns)
		for _, r := range s.Table.Rows {
			if err := writeRow(r, cellStyle); err != nil {
				return err
			}
			trackWidths(widths, r)
		}
		row++
	}

	if c.Footer != "" {
		if err := writeRow([]string{c.Footer}, 0); err != nil {
			return err
		}
	}

	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, name, name, float64(width)+2); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// trackWidths records the widest value per column, capped to keep columns readable.
func trackWidths(widths map[int]int, values []string) {
	const maxWidth = 60
	for i, v := range values {
		n := utf8.RuneCountInString(v)
		if n > maxWidth {
			n = maxWidth
		}
		if n > widths[i] {
			widths[i] = n
		}
	}
}
