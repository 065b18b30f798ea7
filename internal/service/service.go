// Package service holds the use cases of the archive: documents and their audit trail,
// the category and location catalogs, reports and user administration.
package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"archivesys/internal/repository"
)

var (
	ErrIDRequired         = errors.New("id is required")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrReaderNil          = errors.New("reader is nil")
	ErrNoFile             = errors.New("no file attached")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrReportGeneration   = errors.New("report generation failed")
)

// Page sizes of the paginated listings.
const (
	DocumentPageSize = 10
	HistoryPageSize  = 20
	ReportPageSize   = 10
	UserPageSize     = 20
)

// ValidationError reports field-level problems with a request. Nothing was written.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// fieldErrors collects messages and turns into a *ValidationError when non-empty.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// ListResult is the service-level DTO for one page of a listing.
type ListResult[T any] struct {
	Items    []T `json:"data"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Pages    int `json:"pages"`
}

// paginate fetches page (1-based) with fetch. Pages past the end yield the last page.
func paginate[T any](page, size int, fetch func(repository.PageQuery) (*repository.PageResult[T], error)) (*ListResult[T], error) {
	if page < 1 {
		page = 1
	}
	res, err := fetch(repository.PageQuery{Limit: size, Offset: (page - 1) * size})
	if err != nil {
		return nil, err
	}
	pages := (res.Total + size - 1) / size
	if len(res.Items) == 0 && page > 1 && pages > 0 && page > pages {
		page = pages
		res, err = fetch(repository.PageQuery{Limit: size, Offset: (page - 1) * size})
		if err != nil {
			return nil, err
		}
	}
	if pages == 0 {
		page, pages = 1, 1
	}
	return &ListResult[T]{Items: res.Items, Total: res.Total, Page: page, PageSize: size, Pages: pages}, nil
}

// notFound converts repository.ErrNotFound into ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// referenceError turns a foreign key violation, raised when a category or location is
// deleted after validation, into the field error validation would have reported.
func referenceError(err error) error {
	if !errors.Is(err, repository.ErrInvalidReference) {
		return err
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "category"):
		return &ValidationError{Fields: map[string]string{"category": "unknown category"}}
	case strings.Contains(msg, "storage_location"):
		return &ValidationError{Fields: map[string]string{"storage_location": "unknown storage location"}}
	}
	return &ValidationError{Fields: map[string]string{"reference": "referenced record does not exist"}}
}

// isConflict reports whether err is a unique constraint violation.
func isConflict(err error) bool {
	return errors.Is(err, repository.ErrConflict)
}
