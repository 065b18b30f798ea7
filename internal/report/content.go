// Package report turns documents and audit records into tabular report content
// and renders it as PDF, CSV or XLSX.
package report

// Table is a header row plus data rows of display strings.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Section is one table of a report. Heading is empty for single-table reports.
type Section struct {
	Heading string
	Table   Table
}

// Content is a renderer-independent report: a title block followed by sections.
type Content struct {
	Title    string
	Subtitle []string
	Sections []Section
	Footer   string
}

// RowCount returns the number of data rows across all sections.
func (c *Content) RowCount() int {
	n := 0
	for _, s := range c.Sections {
		n += len(s.Table.Rows)
	}
	return n
}
