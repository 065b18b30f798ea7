package report

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
)

const (
	unicodeFamily = "ReportSans"
	lineHeight    = 5.0
	cellPadding   = 1.5
	bodyFontSize  = 9.0
)

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	regularFont []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	boldFont []byte
)

// PDFRenderer lays the report out on landscape A4 pages as bordered tables with a grey header row.
// Text is set in the bundled DejaVu Sans Condensed font. FontPath, when set, replaces it
// with another Unicode TTF font for both regular and bold text.
type PDFRenderer struct {
	FontPath string
}

func (r *PDFRenderer) Render(w io.Writer, c *Content) error {
	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetMargins(10, 12, 10)
	doc.SetAutoPageBreak(false, 12)
	doc.SetTitle(c.Title, true)

	if r.FontPath != "" {
		doc.AddUTF8Font(unicodeFamily, "", r.FontPath)
		doc.AddUTF8Font(unicodeFamily, "B", r.FontPath)
	} else {
		doc.AddUTF8FontFromBytes(unicodeFamily, "", regularFont)
		doc.AddUTF8FontFromBytes(unicodeFamily, "B", boldFont)
	}
	if doc.Err() {
		return fmt.Errorf("load report font: %w", doc.Error())
	}

	p := &pdfWriter{pdf: doc}
	doc.AddPage()
	if c.Title != "" {
		p.text(c.Title, "B", 14, 8)
	}
	for _, s := range c.Subtitle {
		p.text(s, "", 10, lineHeight)
	}
	doc.Ln(3)

	for _, s := range c.Sections {
		if s.Heading != "" {
			p.ensureSpace(3 * lineHeight)
			p.text(s.Heading, "B", 11, 7)
		}
		p.table(s.Table)
		doc.Ln(4)
	}

	if c.Footer != "" {
		p.ensureSpace(lineHeight)
		p.text(c.Footer, "", 10, lineHeight)
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	header []string
}

func (p *pdfWriter) text(s, style string, size, h float64) {
	p.pdf.SetFont(unicodeFamily, style, size)
	left, _, right, _ := p.pdf.GetMargins()
	pageW, _ := p.pdf.GetPageSize()
	p.pdf.CellFormat(pageW-left-right, h, s, "", 1, "L", false, 0, "")
}

func (p *pdfWriter) bottom() float64 {
	_, pageH := p.pdf.GetPageSize()
	_, _, _, b := p.pdf.GetMargins()
	return pageH - b
}

func (p *pdfWriter) ensureSpace(h float64) {
	if p.pdf.GetY()+h > p.bottom() {
		p.pdf.AddPage()
	}
}

func (p *pdfWriter) table(t Table) {
	if len(t.Columns) == 0 {
		return
	}
	widths := p.columnWidths(t)
	p.header = nil
	p.row(t.Columns, widths, true)
	p.header = t.Columns
	for _, r := range t.Rows {
		p.row(r, widths, false)
	}
}

// columnWidths splits the printable width proportionally to the longest value per column.
func (p *pdfWriter) columnWidths(t Table) []float64 {
	left, _, right, _ := p.pdf.GetMargins()
	pageW, _ := p.pdf.GetPageSize()
	avail := pageW - left - right

	weights := make([]float64, len(t.Columns))
	measure := func(i int, s string) {
		n := float64(utf8.RuneCountInString(s))
		if n > weights[i] {
			weights[i] = n
		}
	}
	for i, c := range t.Columns {
		measure(i, c)
	}
	for _, r := range t.Rows {
		for i := 0; i < len(r) && i < len(weights); i++ {
			measure(i, r[i])
		}
	}

	total := 0.0
	for i, w := range weights {
		w = max(3, min(w, 40))
		weights[i] = w
		total += w
	}
	widths := make([]float64, len(weights))
	for i, w := range weights {
		widths[i] = avail * w / total
	}
	return widths
}

func (p *pdfWriter) row(cells []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	p.pdf.SetFont(unicodeFamily, style, bodyFontSize)

	lines := make([][]string, len(widths))
	n := 1
	for i, w := range widths {
		var text string
		if i < len(cells) {
			text = cells[i]
		}
		lines[i] = p.wrap(text, w-2*cellPadding)
		n = max(n, len(lines[i]))
	}
	h := float64(n) * lineHeight

	if p.pdf.GetY()+h > p.bottom() {
		p.pdf.AddPage()
		if !header && p.header != nil {
			p.row(p.header, widths, true)
			p.pdf.SetFont(unicodeFamily, style, bodyFontSize)
		}
	}

	left, _, _, _ := p.pdf.GetMargins()
	x, y := left, p.pdf.GetY()
	p.pdf.SetFillColor(217, 217, 217)
	for i, w := range widths {
		if header {
			p.pdf.Rect(x, y, w, h, "FD")
		} else {
			p.pdf.Rect(x, y, w, h, "D")
		}
		for j, line := range lines[i] {
			p.pdf.SetXY(x+cellPadding, y+float64(j)*lineHeight)
			p.pdf.CellFormat(w-2*cellPadding, lineHeight, line, "", 0, "L", false, 0, "")
		}
		x += w
	}
	p.pdf.SetXY(left, y+h)
}

func (p *pdfWriter) width(s string) float64 {
	return p.pdf.GetStringWidth(s)
}

// wrap breaks text into lines no wider than width, splitting overlong words.
func (p *pdfWriter) wrap(text string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		cur := ""
		for _, word := range strings.Fields(para) {
			for p.width(word) > width {
				head, tail := p.fit(word, width)
				if cur != "" {
					lines = append(lines, cur)
					cur = ""
				}
				lines = append(lines, head)
				word = tail
			}
			if cur == "" {
				cur = word
				continue
			}
			if candidate := cur + " " + word; p.width(candidate) <= width {
				cur = candidate
			} else {
				lines = append(lines, cur)
				cur = word
			}
		}
		lines = append(lines, cur)
	}
	return lines
}

// fit returns the longest prefix of s (at least one rune) no wider than width, and the rest.
func (p *pdfWriter) fit(s string, width float64) (string, string) {
	runes := []rune(s)
	n := 1
	for n < len(runes) && p.width(string(runes[:n+1])) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
