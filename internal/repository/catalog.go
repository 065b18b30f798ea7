package repository

import (
	"context"

	"archivesys/internal/model"
)

// CategoryRepository stores document categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.DocumentCategory) (*model.DocumentCategory, error)
	FindByID(ctx context.Context, id string) (*model.DocumentCategory, error)
	Update(ctx context.Context, c *model.DocumentCategory) (*model.DocumentCategory, error)
	List(ctx context.Context) ([]model.DocumentCategory, error)
	// Delete removes the category; documents keep existing with category_id cleared.
	Delete(ctx context.Context, id string) error
}

// LocationRepository stores storage locations.
type LocationRepository interface {
	Create(ctx context.Context, l *model.StorageLocation) (*model.StorageLocation, error)
	FindByID(ctx context.Context, id string) (*model.StorageLocation, error)
	Update(ctx context.Context, l *model.StorageLocation) (*model.StorageLocation, error)
	List(ctx context.Context) ([]model.StorageLocation, error)
	// Delete removes the location; documents keep existing with storage_location_id cleared.
	Delete(ctx context.Context, id string) error
}
