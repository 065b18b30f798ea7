package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"archivesys/internal/auth"
	"archivesys/internal/model"
	"archivesys/internal/service"
)

type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) List(ctx context.Context, page int) (*service.ReportListResult, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReportListResult), args.Error(1)
}

func (m *MockReportService) Get(ctx context.Context, id string) (*service.ReportDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ReportDetail), args.Error(1)
}

func (m *MockReportService) Create(ctx context.Context, actor auth.Principal, in service.ReportInput) (*model.Report, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockReportService) Open(ctx context.Context, id string) (io.ReadCloser, *model.FileRef, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*model.FileRef), args.Error(2)
}

func (m *MockReportService) Export(ctx context.Context, format model.ReportFormat) (*service.ExportFile, error) {
	args := m.Called(ctx, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportFile), args.Error(1)
}
