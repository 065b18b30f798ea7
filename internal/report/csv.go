package report

import (
	"encoding/csv"
	"io"
)

// CSVRenderer writes the title block and each section as plain CSV rows.
// Section headings occupy a row of their own; sections are separated by an empty row.
type CSVRenderer struct{}

func (CSVRenderer) Render(w io.Writer, c *Content) error {
	cw := csv.NewWriter(w)

	if c.Title != "" {
		if err := cw.Write([]string{c.Title}); err != nil {
			return err
		}
		for _, s := range c.Subtitle {
			if err := cw.Write([]string{s}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{""}); err != nil {
			return err
		}
	}

	for i, s := range c.Sections {
		if i > 0 {
			if err := cw.Write([]string{""}); err != nil {
				return err
			}
		}
		if s.Heading != "" {
			if err := cw.Write([]string{s.Heading}); err != nil {
				return err
			}
		}
		if err := cw.Write(s.Table.Columns); err != nil {
			return err
		}
		if err := cw.WriteAll(s.Table.Rows); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
