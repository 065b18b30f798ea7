package service

import (
	"context"
	"strings"

	"archivesys/internal/auth"
	"archivesys/internal/model"
	"archivesys/internal/repository"
)

// CategoryInput carries the editable fields of a category.
type CategoryInput struct {
	Name        string
	Description string
}

// LocationInput carries the editable fields of a storage location.
type LocationInput struct {
	Name  string
	Room  string
	Shelf string
	Box   string
}

// CatalogService manages the reference data documents point to. Any authenticated
// user may list, create and edit entries; only staff may delete them. Deleting an
// entry clears it on documents but never deletes documents.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]model.DocumentCategory, error)
	GetCategory(ctx context.Context, id string) (*model.DocumentCategory, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*model.DocumentCategory, error)
	UpdateCategory(ctx context.Context, id string, in CategoryInput) (*model.DocumentCategory, error)
	DeleteCategory(ctx context.Context, actor auth.Principal, id string) error

	ListLocations(ctx context.Context) ([]model.StorageLocation, error)
	GetLocation(ctx context.Context, id string) (*model.StorageLocation, error)
	CreateLocation(ctx context.Context, in LocationInput) (*model.StorageLocation, error)
	UpdateLocation(ctx context.Context, id string, in LocationInput) (*model.StorageLocation, error)
	DeleteLocation(ctx context.Context, actor auth.Principal, id string) error
}

type catalogService struct {
	categories repository.CategoryRepository
	locations  repository.LocationRepository
}

// NewCatalogService constructs a new CatalogService.
func NewCatalogService(categories repository.CategoryRepository, locations repository.LocationRepository) CatalogService {
	return &catalogService{categories: categories, locations: locations}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.DocumentCategory, error) {
	return s.categories.List(ctx)
}

func (s *catalogService) GetCategory(ctx context.Context, id string) (*model.DocumentCategory, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	c, err := s.categories.FindByID(ctx, id)
	return c, notFound(err)
}

func (s *catalogService) CreateCategory(ctx context.Context, in CategoryInput) (*model.DocumentCategory, error) {
	c := &model.DocumentCategory{Name: strings.TrimSpace(in.Name), Description: in.Description}
	if c.Name == "" {
		return nil, &ValidationError{Fields: map[string]string{"name": "required"}}
	}
	return s.categories.Create(ctx, c)
}

func (s *catalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*model.DocumentCategory, error) {
	c, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Description = in.Description
	if c.Name == "" {
		return nil, &ValidationError{Fields: map[string]string{"name": "required"}}
	}
	out, err := s.categories.Update(ctx, c)
	return out, notFound(err)
}

func (s *catalogService) DeleteCategory(ctx context.Context, actor auth.Principal, id string) error {
	if !actor.IsStaff {
		return ErrForbidden
	}
	if id == "" {
		return ErrIDRequired
	}
	return notFound(s.categories.Delete(ctx, id))
}

func (s *catalogService) ListLocations(ctx context.Context) ([]model.StorageLocation, error) {
	return s.locations.List(ctx)
}

func (s *catalogService) GetLocation(ctx context.Context, id string) (*model.StorageLocation, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	l, err := s.locations.FindByID(ctx, id)
	return l, notFound(err)
}

func (s *catalogService) CreateLocation(ctx context.Context, in LocationInput) (*model.StorageLocation, error) {
	l := &model.StorageLocation{}
	if err := applyLocation(l, in); err != nil {
		return nil, err
	}
	return s.locations.Create(ctx, l)
}

func (s *catalogService) UpdateLocation(ctx context.Context, id string, in LocationInput) (*model.StorageLocation, error) {
	l, err := s.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyLocation(l, in); err != nil {
		return nil, err
	}
	out, err := s.locations.Update(ctx, l)
	return out, notFound(err)
}

func (s *catalogService) DeleteLocation(ctx context.Context, actor auth.Principal, id string) error {
	if !actor.IsStaff {
		return ErrForbidden
	}
	if id == "" {
		return ErrIDRequired
	}
	return notFound(s.locations.Delete(ctx, id))
}

func applyLocation(l *model.StorageLocation, in LocationInput) error {
	l.Name = strings.TrimSpace(in.Name)
	l.Room = strings.TrimSpace(in.Room)
	l.Shelf = strings.TrimSpace(in.Shelf)
	l.Box = strings.TrimSpace(in.Box)

	fe := fieldErrors{}
	if l.Name == "" {
		fe.add("name", "required")
	}
	if l.Room == "" {
		fe.add("room", "required")
	}
	if l.Shelf == "" {
		fe.add("shelf", "required")
	}
	return fe.err()
}
