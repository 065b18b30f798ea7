package form

import (
	"strings"

	"github.com/google/uuid"

	"archivesys/internal/model"
	"archivesys/internal/repository"
	"archivesys/internal/service"
)

// Document is the create/update payload of a document.
type Document struct {
	Title           string `form:"title" json:"title" validate:"required,max=200"`
	DocumentType    string `form:"document_type" json:"document_type" validate:"required,oneof=diploma certificate transcript order protocol report other"`
	DocumentNumber  string `form:"document_number" json:"document_number" validate:"required,max=50"`
	Category        string `form:"category" json:"category" validate:"omitempty,uuid"`
	IssueDate       string `form:"issue_date" json:"issue_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate      string `form:"expiry_date" json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	StorageLocation string `form:"storage_location" json:"storage_location" validate:"omitempty,uuid"`
	Description     string `form:"description" json:"description"`
}

// Input validates the payload and converts it to a service input.
func (f Document) Input() (service.DocumentInput, error) {
	if err := Validate(f); err != nil {
		return service.DocumentInput{}, err
	}
	in := service.DocumentInput{
		Title:             f.Title,
		DocumentType:      model.DocumentType(f.DocumentType),
		DocumentNumber:    f.DocumentNumber,
		CategoryID:        optional(f.Category),
		ExpiryDate:        parseDate(f.ExpiryDate),
		StorageLocationID: optional(f.StorageLocation),
		Description:       f.Description,
	}
	if d := parseDate(f.IssueDate); d != nil {
		in.IssueDate = *d
	}
	return in, nil
}

// DocumentSearch holds the query parameters of the document list.
type DocumentSearch struct {
	Query           string `query:"query"`
	DocumentType    string `query:"document_type"`
	Category        string `query:"category"`
	StorageLocation string `query:"storage_location"`
	StartDate       string `query:"start_date"`
	EndDate         string `query:"end_date"`
	Page            string `query:"page"`
}

// Filter converts the search parameters into a repository filter. Malformed values
// are dropped rather than rejected.
func (s DocumentSearch) Filter() repository.DocumentFilter {
	f := repository.DocumentFilter{
		Query:      strings.TrimSpace(s.Query),
		IssuedFrom: parseDate(s.StartDate),
		IssuedTo:   parseDate(s.EndDate),
	}
	if t := model.DocumentType(strings.TrimSpace(s.DocumentType)); t.Valid() {
		f.DocumentType = string(t)
	}
	if id, ok := validID(s.Category); ok {
		f.CategoryID = id
	}
	if id, ok := validID(s.StorageLocation); ok {
		f.StorageLocationID = id
	}
	return f
}

// HistorySearch holds the query parameters of the audit trail listing.
type HistorySearch struct {
	Action    string `query:"action"`
	User      string `query:"user"`
	Document  string `query:"document"`
	Query     string `query:"query"`
	StartDate string `query:"start_date"`
	EndDate   string `query:"end_date"`
	Page      string `query:"page"`
}

// Filter converts the search parameters into a repository filter. The end date
// is inclusive. Malformed values are dropped.
func (s HistorySearch) Filter() repository.HistoryFilter {
	f := repository.HistoryFilter{
		Query: strings.TrimSpace(s.Query),
		From:  parseDate(s.StartDate),
	}
	if to := parseDate(s.EndDate); to != nil {
		end := to.AddDate(0, 0, 1).Add(-1)
		f.To = &end
	}
	if a := model.HistoryAction(strings.TrimSpace(s.Action)); a.Valid() {
		f.Action = string(a)
	}
	if id, ok := validID(s.User); ok {
		f.UserID = id
	}
	if id, ok := validID(s.Document); ok {
		f.DocumentID = id
	}
	return f
}

func validID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if _, err := uuid.Parse(s); err != nil {
		return "", false
	}
	return s, true
}
