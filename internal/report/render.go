package report

import (
	"fmt"
	"io"

	"archivesys/internal/model"
)

// Renderer writes report content in one file format.
type Renderer interface {
	Render(w io.Writer, c *Content) error
}

// NewRenderer returns the renderer for format f. fontPath is only used for PDF.
func NewRenderer(f model.ReportFormat, fontPath string) (Renderer, error) {
	switch f {
	case model.FormatPDF, "":
		return &PDFRenderer{FontPath: fontPath}, nil
	case model.FormatCSV:
		return CSVRenderer{}, nil
	case model.FormatXLSX:
		return XLSXRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", f)
	}
}
