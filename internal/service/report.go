package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"archivesys/internal/auth"
	"archivesys/internal/i18n"
	"archivesys/internal/metrics"
	"archivesys/internal/model"
	"archivesys/internal/report"
	"archivesys/internal/repository"
	"archivesys/internal/storage"
)

const fileStampLayout = "20060102_150405"

// ReportListResult is one page of reports.
type ReportListResult = ListResult[model.Report]

// ReportInput carries the fields of a report request. Nil filters are not applied.
type ReportInput struct {
	Title             string
	ReportType        model.ReportType
	StartDate         *time.Time
	EndDate           *time.Time
	CategoryID        *string
	StorageLocationID *string
	UserID            *string
	Format            model.ReportFormat
}

// ReportDetail is a report plus a link to its generated file.
type ReportDetail struct {
	model.Report
	DownloadURL string `json:"download_url,omitempty"`
}

// ExportFile is an in-memory export ready to be sent as an attachment.
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// ReportService generates, lists and removes report files.
type ReportService interface {
	List(ctx context.Context, page int) (*ReportListResult, error)
	Get(ctx context.Context, id string) (*ReportDetail, error)

	// Create stores the report record, renders its file synchronously and attaches it.
	// If rendering or storing fails the record is removed and ErrReportGeneration is returned.
	Create(ctx context.Context, actor auth.Principal, in ReportInput) (*model.Report, error)

	// Delete removes the report and its file if actor created it or is staff.
	Delete(ctx context.Context, actor auth.Principal, id string) error

	// Open streams the generated file of a report.
	Open(ctx context.Context, id string) (io.ReadCloser, *model.FileRef, error)

	// Export renders every document as a flat table in the csv or xlsx format.
	Export(ctx context.Context, format model.ReportFormat) (*ExportFile, error)
}

// ReportDeps are the collaborators of the report service.
type ReportDeps struct {
	Reports   repository.ReportRepository
	Documents repository.DocumentRepository
	History   repository.HistoryRepository
	Store     storage.Storage
	Builder   *report.Builder
	Labels    *i18n.Bundle
	FontPath  string
	Metrics   *metrics.Metrics
	Log       *logrus.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type reportService struct {
	reports  repository.ReportRepository
	docs     repository.DocumentRepository
	history  repository.HistoryRepository
	store    storage.Storage
	builder  *report.Builder
	labels   *i18n.Bundle
	fontPath string
	metrics  *metrics.Metrics
	log      *logrus.Logger
	now      func() time.Time
}

// NewReportService constructs a new ReportService.
func NewReportService(d ReportDeps) ReportService {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &reportService{
		reports:  d.Reports,
		docs:     d.Documents,
		history:  d.History,
		store:    d.Store,
		builder:  d.Builder,
		labels:   d.Labels,
		fontPath: d.FontPath,
		metrics:  d.Metrics,
		log:      d.Log,
		now:      now,
	}
}

func (s *reportService) List(ctx context.Context, page int) (*ReportListResult, error) {
	return paginate(page, ReportPageSize, func(pq repository.PageQuery) (*repository.PageResult[model.Report], error) {
		return s.reports.List(ctx, pq)
	})
}

func (s *reportService) Get(ctx context.Context, id string) (*ReportDetail, error) {
	rep, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &ReportDetail{Report: *rep}
	if rep.File != nil {
		u, err := s.store.PresignGet(ctx, rep.File.Key, presignExpiry)
		if err != nil {
			u = "/reports/" + rep.ID + "/file"
		}
		detail.DownloadURL = u
	}
	return detail, nil
}

func (s *reportService) Create(ctx context.Context, actor auth.Principal, in ReportInput) (*model.Report, error) {
	if in.Format == "" {
		in.Format = model.FormatPDF
	}
	if err := validateReport(in); err != nil {
		return nil, err
	}

	rep := &model.Report{
		Title:      strings.TrimSpace(in.Title),
		ReportType: in.ReportType,
		Parameters: model.ReportParameters{
			ReportType:        in.ReportType,
			StartDate:         formatDate(in.StartDate),
			EndDate:           formatDate(in.EndDate),
			CategoryID:        in.CategoryID,
			StorageLocationID: in.StorageLocationID,
			UserID:            in.UserID,
			Format:            in.Format,
		},
	}
	if actor.UserID != "" {
		uid := actor.UserID
		rep.CreatedByID = &uid
	}

	stored, err := s.reports.Create(ctx, rep)
	if err != nil {
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	start := time.Now()
	ref, err := s.generate(ctx, stored, in)
	if err != nil {
		s.metrics.ReportGenerated(string(in.ReportType), string(in.Format), metrics.OutcomeFailure, time.Since(start))
		s.discard(ctx, stored.ID, ref, err)
		return nil, fmt.Errorf("%w: %v", ErrReportGeneration, err)
	}
	s.metrics.ReportGenerated(string(in.ReportType), string(in.Format), metrics.OutcomeSuccess, time.Since(start))
	s.metrics.FileStored("report", ref.Size)

	stored.File = ref
	s.log.WithFields(logrus.Fields{
		"component":   "reports",
		"report_id":   stored.ID,
		"report_type": string(stored.ReportType),
		"format":      string(in.Format),
		"size":        ref.Size,
	}).Info("report_generated")
	return stored, nil
}

func (s *reportService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	rep, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsStaff && (rep.CreatedByID == nil || *rep.CreatedByID != actor.UserID) {
		return ErrForbidden
	}
	if err := s.reports.Delete(ctx, rep.ID); err != nil {
		return fmt.Errorf("delete report: %w", notFound(err))
	}
	if rep.File != nil {
		if err := s.store.Delete(ctx, rep.File.Key); err != nil {
			s.log.WithFields(logrus.Fields{
				"component": "reports",
				"key":       rep.File.Key,
				"error":     err.Error(),
			}).Warn("storage_delete_failed")
		}
	}
	return nil
}

func (s *reportService) Open(ctx context.Context, id string) (io.ReadCloser, *model.FileRef, error) {
	rep, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if rep.File == nil {
		return nil, nil, ErrNoFile
	}
	rc, _, err := s.store.Get(ctx, rep.File.Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNoFile
		}
		return nil, nil, fmt.Errorf("open stored file: %w", err)
	}
	return rc, rep.File, nil
}

func (s *reportService) Export(ctx context.Context, format model.ReportFormat) (*ExportFile, error) {
	if format != model.FormatCSV && format != model.FormatXLSX {
		return nil, &ValidationError{Fields: map[string]string{"format": "unsupported export format"}}
	}
	docs, err := s.docs.All(ctx, repository.DocumentFilter{})
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	lang := i18n.LangFromContext(ctx, s.labels.Fallback())
	content := &report.Content{Sections: []report.Section{{Table: s.builder.Export(lang, docs)}}}

	r, err := report.NewRenderer(format, s.fontPath)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, content); err != nil {
		return nil, fmt.Errorf("render export: %w", err)
	}
	return &ExportFile{
		Name:        "documents_" + s.now().Format(fileStampLayout) + "." + string(format),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}

func (s *reportService) find(ctx context.Context, id string) (*model.Report, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	rep, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return rep, nil
}

// generate renders the report file, stores it and attaches it to the record.
// The returned ref is non-nil once the object was written, even on error.
func (s *reportService) generate(ctx context.Context, rep *model.Report, in ReportInput) (*model.FileRef, error) {
	lang := i18n.LangFromContext(ctx, s.labels.Fallback())

	var sections []report.Section
	if in.ReportType == model.ReportActivityLog {
		f := repository.HistoryFilter{From: in.StartDate}
		if in.EndDate != nil {
			// The end date is inclusive for timestamps.
			to := in.EndDate.Add(24*time.Hour - time.Nanosecond)
			f.To = &to
		}
		if in.UserID != nil {
			f.UserID = *in.UserID
		}
		hist, err := s.history.All(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("load history: %w", err)
		}
		sections = s.builder.Activity(lang, hist)
	} else {
		f := repository.DocumentFilter{IssuedFrom: in.StartDate, IssuedTo: in.EndDate}
		if in.CategoryID != nil {
			f.CategoryID = *in.CategoryID
		}
		if in.StorageLocationID != nil {
			f.StorageLocationID = *in.StorageLocationID
		}
		if in.UserID != nil {
			f.CreatedByID = *in.UserID
		}
		docs, err := s.docs.All(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("load documents: %w", err)
		}
		sections = s.builder.Documents(lang, in.ReportType, docs)
	}

	content := s.builder.Content(lang, rep.Title, s.now(), rep.Parameters.StartDate, rep.Parameters.EndDate, sections)
	r, err := report.NewRenderer(in.Format, s.fontPath)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, content); err != nil {
		return nil, fmt.Errorf("render %s: %w", in.Format, err)
	}

	name := fmt.Sprintf("%s_%s_%s.%s", in.ReportType, s.now().Format(fileStampLayout), strings.ToLower(ulid.Make().String()), in.Format)
	key := path.Join("reports", name)
	info, err := s.store.Put(ctx, key, &buf, storage.PutObjectOptions{
		Size:        int64(buf.Len()),
		ContentType: in.Format.ContentType(),
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	ref := &model.FileRef{Key: info.Key, Name: name, Size: info.Size, ContentType: in.Format.ContentType()}
	if err := s.reports.SetFile(ctx, rep.ID, *ref); err != nil {
		return ref, fmt.Errorf("attach file: %w", err)
	}
	return ref, nil
}

// discard removes a report whose file could not be produced.
func (s *reportService) discard(ctx context.Context, id string, ref *model.FileRef, cause error) {
	fields := logrus.Fields{
		"component": "reports",
		"report_id": id,
		"cause":     cause.Error(),
	}
	if err := s.reports.Delete(ctx, id); err != nil {
		s.log.WithFields(fields).WithField("error", err.Error()).Error("report_cleanup_failed")
	}
	if ref != nil {
		if err := s.store.Delete(ctx, ref.Key); err != nil {
			s.log.WithFields(fields).WithField("error", err.Error()).Error("storage_rollback_failed")
		}
	}
	s.log.WithFields(fields).Error("report_generation_failed")
}

func validateReport(in ReportInput) error {
	fe := fieldErrors{}
	if strings.TrimSpace(in.Title) == "" {
		fe.add("title", "required")
	}
	if !in.ReportType.Valid() {
		fe.add("report_type", "unknown report type")
	}
	if !in.Format.Valid() {
		fe.add("format", "unsupported format")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		fe.add("end_date", "must not be before start date")
	}
	return fe.err()
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(model.DateLayout)
	return &s
}
