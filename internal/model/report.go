package model

import "time"

// ReportType selects the generator used for a report.
type ReportType string

const (
	ReportDocumentList       ReportType = "document_list"
	ReportDocumentByCategory ReportType = "document_by_category"
	ReportDocumentByLocation ReportType = "document_by_location"
	ReportDocumentByDate     ReportType = "document_by_date"
	ReportActivityLog        ReportType = "activity_log"
	ReportCustom             ReportType = "custom"
)

// ReportTypes lists the report types in display order.
var ReportTypes = []ReportType{
	ReportDocumentList,
	ReportDocumentByCategory,
	ReportDocumentByLocation,
	ReportDocumentByDate,
	ReportActivityLog,
	ReportCustom,
}

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	for _, known := range ReportTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ReportFormat is the file format of a generated report.
type ReportFormat string

const (
	FormatPDF  ReportFormat = "pdf"
	FormatCSV  ReportFormat = "csv"
	FormatXLSX ReportFormat = "xlsx"
)

// ReportFormats lists the supported output formats.
var ReportFormats = []ReportFormat{FormatPDF, FormatCSV, FormatXLSX}

// Valid reports whether f is a supported format.
func (f ReportFormat) Valid() bool {
	for _, known := range ReportFormats {
		if f == known {
			return true
		}
	}
	return false
}

// ContentType returns the MIME type of files in this format.
func (f ReportFormat) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/pdf"
	}
}

// ReportParameters is the free-form filter payload stored with a report.
// Dates use DateLayout; nil means "not filtered".
type ReportParameters struct {
	ReportType        ReportType   `json:"report_type"`
	StartDate         *string      `json:"start_date"`
	EndDate           *string      `json:"end_date"`
	CategoryID        *string      `json:"category_id"`
	StorageLocationID *string      `json:"storage_location_id"`
	UserID            *string      `json:"user_id"`
	Format            ReportFormat `json:"format,omitempty"`
}

// Report is a generated file summarizing documents per a chosen filter set.
type Report struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	ReportType  ReportType       `json:"report_type"`
	Parameters  ReportParameters `json:"parameters"`
	File        *FileRef         `json:"file,omitempty"`
	CreatedByID *string          `json:"created_by_id"`
	CreatedAt   time.Time        `json:"created_at"`

	CreatedByUsername string `json:"created_by_username,omitempty"`
}
