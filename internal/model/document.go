package model

import "time"

// DateLayout is the wire format for calendar dates (issue/expiry dates, filters).
const DateLayout = "2006-01-02"

// DocumentType classifies a registered document.
type DocumentType string

const (
	DocumentTypeDiploma     DocumentType = "diploma"
	DocumentTypeCertificate DocumentType = "certificate"
	DocumentTypeTranscript  DocumentType = "transcript"
	DocumentTypeOrder       DocumentType = "order"
	DocumentTypeProtocol    DocumentType = "protocol"
	DocumentTypeReport      DocumentType = "report"
	DocumentTypeOther       DocumentType = "other"
)

// DocumentTypes lists the document types in display order.
var DocumentTypes = []DocumentType{
	DocumentTypeDiploma,
	DocumentTypeCertificate,
	DocumentTypeTranscript,
	DocumentTypeOrder,
	DocumentTypeProtocol,
	DocumentTypeReport,
	DocumentTypeOther,
}

// Valid reports whether t is a known document type.
func (t DocumentType) Valid() bool {
	for _, known := range DocumentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Document is a registered record with metadata and an optional attached file.
// CategoryName, StorageLocationName and CreatedByUsername are read-only projections
// filled by repository joins.
type Document struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	DocumentType      DocumentType `json:"document_type"`
	DocumentNumber    string       `json:"document_number"`
	CategoryID        *string      `json:"category_id"`
	IssueDate         time.Time    `json:"issue_date"`
	ExpiryDate        *time.Time   `json:"expiry_date"`
	StorageLocationID *string      `json:"storage_location_id"`
	Description       string       `json:"description"`
	File              *FileRef     `json:"file,omitempty"`
	CreatedByID       *string      `json:"created_by_id"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`

	CategoryName        string `json:"category_name,omitempty"`
	StorageLocationName string `json:"storage_location_name,omitempty"`
	CreatedByUsername   string `json:"created_by_username,omitempty"`
}

// FileRef points to an object in storage.
type FileRef struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// OwnedBy reports whether userID created the document.
func (d *Document) OwnedBy(userID string) bool {
	return d.CreatedByID != nil && *d.CreatedByID == userID
}
