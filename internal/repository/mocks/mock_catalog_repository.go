package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"archivesys/internal/model"
)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, c *model.DocumentCategory) (*model.DocumentCategory, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentCategory), args.Error(1)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id string) (*model.DocumentCategory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentCategory), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, c *model.DocumentCategory) (*model.DocumentCategory, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentCategory), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context) ([]model.DocumentCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DocumentCategory), args.Error(1)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) Create(ctx context.Context, l *model.StorageLocation) (*model.StorageLocation, error) {
	args := m.Called(ctx, l)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StorageLocation), args.Error(1)
}

func (m *MockLocationRepository) FindByID(ctx context.Context, id string) (*model.StorageLocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StorageLocation), args.Error(1)
}

func (m *MockLocationRepository) Update(ctx context.Context, l *model.StorageLocation) (*model.StorageLocation, error) {
	args := m.Called(ctx, l)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StorageLocation), args.Error(1)
}

func (m *MockLocationRepository) List(ctx context.Context) ([]model.StorageLocation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.StorageLocation), args.Error(1)
}

func (m *MockLocationRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
