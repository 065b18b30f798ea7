package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"archivesys/internal/auth"
	"archivesys/internal/model"
	"archivesys/internal/service"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListCategories(ctx context.Context) ([]model.DocumentCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentCategory), args.Error(1)
}

func (m *MockCatalogService) GetCategory(ctx context.Context, id string) (*model.DocumentCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentCategory), args.Error(1)
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, in service.CategoryInput) (*model.DocumentCategory, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentCategory), args.Error(1)
}

func (m *MockCatalogService) UpdateCategory(ctx context.Context, id string, in service.CategoryInput) (*model.DocumentCategory, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentCategory), args.Error(1)
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, actor auth.Principal, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockCatalogService) ListLocations(ctx context.Context) ([]model.StorageLocation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StorageLocation), args.Error(1)
}

func (m *MockCatalogService) GetLocation(ctx context.Context, id string) (*model.StorageLocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StorageLocation), args.Error(1)
}

func (m *MockCatalogService) CreateLocation(ctx context.Context, in service.LocationInput) (*model.StorageLocation, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StorageLocation), args.Error(1)
}

func (m *MockCatalogService) UpdateLocation(ctx context.Context, id string, in service.LocationInput) (*model.StorageLocation, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StorageLocation), args.Error(1)
}

func (m *MockCatalogService) DeleteLocation(ctx context.Context, actor auth.Principal, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}
