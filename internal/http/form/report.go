package form

import (
	"archivesys/internal/model"
	"archivesys/internal/service"
)

// Report is the payload of a report request.
type Report struct {
	Title           string `form:"title" json:"title" validate:"required,max=200"`
	ReportType      string `form:"report_type" json:"report_type" validate:"required,oneof=document_list document_by_category document_by_location document_by_date activity_log custom"`
	StartDate       string `form:"start_date" json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate         string `form:"end_date" json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Category        string `form:"category" json:"category" validate:"omitempty,uuid"`
	StorageLocation string `form:"storage_location" json:"storage_location" validate:"omitempty,uuid"`
	User            string `form:"user" json:"user" validate:"omitempty,uuid"`
	Format          string `form:"format" json:"format" validate:"omitempty,oneof=pdf csv xlsx"`
}

func (f Report) Input() (service.ReportInput, error) {
	if err := Validate(f); err != nil {
		return service.ReportInput{}, err
	}
	format := model.ReportFormat(f.Format)
	if format == "" {
		format = model.FormatPDF
	}
	return service.ReportInput{
		Title:             f.Title,
		ReportType:        model.ReportType(f.ReportType),
		StartDate:         parseDate(f.StartDate),
		EndDate:           parseDate(f.EndDate),
		CategoryID:        optional(f.Category),
		StorageLocationID: optional(f.StorageLocation),
		UserID:            optional(f.User),
		Format:            format,
	}, nil
}
