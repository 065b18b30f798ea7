// Package repository declares the data access contracts. Implementations live in
// subpackages (postgres) and contain no business logic.
package repository

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a row addressed by ID does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrConflict is returned when a unique constraint is violated.
var ErrConflict = errors.New("repository: conflict")

// ErrInvalidReference is returned when a foreign key points at a missing row.
var ErrInvalidReference = errors.New("repository: invalid reference")

// PageQuery holds limit/offset pagination parameters.
// A non-positive Limit means "no limit".
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// DocumentFilter narrows document listings. Zero values mean "not filtered".
type DocumentFilter struct {
	// Query is matched case-insensitively as a substring of title, number or description.
	Query             string
	DocumentType      string
	CategoryID        string
	StorageLocationID string
	CreatedByID       string
	IssuedFrom        *time.Time
	IssuedTo          *time.Time
}

// HistoryFilter narrows audit trail listings.
type HistoryFilter struct {
	DocumentID string
	UserID     string
	Action     string
	// Query matches document title, username or details.
	Query string
	From  *time.Time
	To    *time.Time
}
