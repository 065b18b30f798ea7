package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"archivesys/internal/auth"
	"archivesys/internal/model"
	"archivesys/internal/repository"
	"archivesys/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) List(ctx context.Context, f repository.DocumentFilter, page int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, f, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, actor auth.Principal, id string) (*service.DocumentDetail, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentDetail), args.Error(1)
}

func (m *MockDocumentService) Create(ctx context.Context, actor auth.Principal, in service.DocumentInput, file *service.FileUpload) (*model.Document, error) {
	args := m.Called(ctx, actor, in, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, actor auth.Principal, id string, in service.DocumentInput, file *service.FileUpload) (*model.Document, error) {
	args := m.Called(ctx, actor, id, in, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockDocumentService) History(ctx context.Context, id string, page int) (*service.HistoryListResult, error) {
	args := m.Called(ctx, id, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HistoryListResult), args.Error(1)
}

func (m *MockDocumentService) Audit(ctx context.Context, f repository.HistoryFilter, page int) (*service.HistoryListResult, error) {
	args := m.Called(ctx, f, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HistoryListResult), args.Error(1)
}

func (m *MockDocumentService) Open(ctx context.Context, id string) (io.ReadCloser, *model.FileRef, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*model.FileRef), args.Error(2)
}
