package repository

import (
	"context"

	"archivesys/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document with its category, location and creator names.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// Update overwrites the editable fields of a document and bumps updated_at.
	Update(ctx context.Context, doc *model.Document) (*model.Document, error)

	// List returns a page of documents matching f, newest first, and the total match count.
	List(ctx context.Context, f DocumentFilter, pq PageQuery) (*PageResult[model.Document], error)

	// All returns every document matching f in default order.
	All(ctx context.Context, f DocumentFilter) ([]model.Document, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Delete removes a document by ID; history rows cascade.
	Delete(ctx context.Context, id string) error
}

// HistoryRepository is append-only: there is no update or delete.
type HistoryRepository interface {
	Append(ctx context.Context, h *model.DocumentHistory) (*model.DocumentHistory, error)
	List(ctx context.Context, f HistoryFilter, pq PageQuery) (*PageResult[model.DocumentHistory], error)
	All(ctx context.Context, f HistoryFilter) ([]model.DocumentHistory, error)
}
