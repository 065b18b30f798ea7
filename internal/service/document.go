package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"archivesys/internal/auth"
	"archivesys/internal/i18n"
	"archivesys/internal/metrics"
	"archivesys/internal/model"
	"archivesys/internal/repository"
	"archivesys/internal/storage"
)

const presignExpiry = 15 * time.Minute

// DocumentListResult is one page of documents.
type DocumentListResult = ListResult[model.Document]

// HistoryListResult is one page of audit records.
type HistoryListResult = ListResult[model.DocumentHistory]

// DocumentInput carries the editable fields of a document.
type DocumentInput struct {
	Title             string
	DocumentType      model.DocumentType
	DocumentNumber    string
	CategoryID        *string
	IssueDate         time.Time
	ExpiryDate        *time.Time
	StorageLocationID *string
	Description       string
}

// FileUpload is an attached file streamed from the request.
type FileUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

// DocumentDetail is a document plus a link to its attached file.
type DocumentDetail struct {
	model.Document
	DownloadURL string `json:"download_url,omitempty"`
}

// DocumentService defines the use cases for handling documents and their audit trail.
// Every call that changes or shows a single document appends one history record.
type DocumentService interface {
	// List returns one page of documents matching f, newest first.
	List(ctx context.Context, f repository.DocumentFilter, page int) (*DocumentListResult, error)

	// Get returns a document and records a view by actor.
	Get(ctx context.Context, actor auth.Principal, id string) (*DocumentDetail, error)

	// Create stores the optional file, inserts the document owned by actor and records a create.
	// The stored object is removed again if the insert fails.
	Create(ctx context.Context, actor auth.Principal, in DocumentInput, file *FileUpload) (*model.Document, error)

	// Update overwrites the document if actor owns it or is staff, replacing the file when one is given.
	Update(ctx context.Context, actor auth.Principal, id string, in DocumentInput, file *FileUpload) (*model.Document, error)

	// Delete removes the document, its history and its stored file if actor owns it or is staff.
	Delete(ctx context.Context, actor auth.Principal, id string) error

	// History returns one page of the audit records of a document.
	History(ctx context.Context, id string, page int) (*HistoryListResult, error)

	// Audit returns one page of the whole audit trail.
	Audit(ctx context.Context, f repository.HistoryFilter, page int) (*HistoryListResult, error)

	// Open streams the attached file of a document.
	Open(ctx context.Context, id string) (io.ReadCloser, *model.FileRef, error)
}

// DocumentDeps are the collaborators of the document service.
type DocumentDeps struct {
	Documents  repository.DocumentRepository
	History    repository.HistoryRepository
	Categories repository.CategoryRepository
	Locations  repository.LocationRepository
	Store      storage.Storage
	Labels     *i18n.Bundle
	Metrics    *metrics.Metrics
	Log        *logrus.Logger
}

type documentService struct {
	docs       repository.DocumentRepository
	history    repository.HistoryRepository
	categories repository.CategoryRepository
	locations  repository.LocationRepository
	store      storage.Storage
	labels     *i18n.Bundle
	metrics    *metrics.Metrics
	log        *logrus.Logger
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(d DocumentDeps) DocumentService {
	return &documentService{
		docs:       d.Documents,
		history:    d.History,
		categories: d.Categories,
		locations:  d.Locations,
		store:      d.Store,
		labels:     d.Labels,
		metrics:    d.Metrics,
		log:        d.Log,
	}
}

func (s *documentService) List(ctx context.Context, f repository.DocumentFilter, page int) (*DocumentListResult, error) {
	return paginate(page, DocumentPageSize, func(pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
		return s.docs.List(ctx, f, pq)
	})
}

func (s *documentService) Get(ctx context.Context, actor auth.Principal, id string) (*DocumentDetail, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.record(ctx, actor, doc.ID, model.ActionView); err != nil {
		return nil, err
	}
	detail := &DocumentDetail{Document: *doc}
	if doc.File != nil {
		detail.DownloadURL = s.downloadURL(ctx, doc)
	}
	return detail, nil
}

func (s *documentService) Create(ctx context.Context, actor auth.Principal, in DocumentInput, file *FileUpload) (*model.Document, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	ref, err := s.upload(ctx, file)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &model.Document{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now, File: ref}
	apply(doc, in)
	if actor.UserID != "" {
		owner := actor.UserID
		doc.CreatedByID = &owner
	}

	stored, err := s.docs.Create(ctx, doc)
	if err != nil {
		s.rollback(ctx, ref, err)
		return nil, fmt.Errorf("db save failed: %w", referenceError(err))
	}
	if err := s.record(ctx, actor, stored.ID, model.ActionCreate); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *documentService) Update(ctx context.Context, actor auth.Principal, id string, in DocumentInput, file *FileUpload) (*model.Document, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModify(actor, doc) {
		return nil, ErrForbidden
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	ref, err := s.upload(ctx, file)
	if err != nil {
		return nil, err
	}
	previous := doc.File

	apply(doc, in)
	if ref != nil {
		doc.File = ref
	}

	updated, err := s.docs.Update(ctx, doc)
	if err != nil {
		s.rollback(ctx, ref, err)
		return nil, fmt.Errorf("db update failed: %w", notFound(referenceError(err)))
	}
	if ref != nil && previous != nil {
		s.removeObject(ctx, previous.Key)
	}
	if err := s.record(ctx, actor, updated.ID, model.ActionUpdate); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *documentService) Delete(ctx context.Context, actor auth.Principal, id string) error {
	doc, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !canModify(actor, doc) {
		return ErrForbidden
	}
	// The history row cascades with the document; the audit log line keeps the event.
	if err := s.record(ctx, actor, doc.ID, model.ActionDelete); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if doc.File != nil {
		s.removeObject(ctx, doc.File.Key)
	}
	return nil
}

func (s *documentService) History(ctx context.Context, id string, page int) (*HistoryListResult, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	f := repository.HistoryFilter{DocumentID: id}
	return paginate(page, HistoryPageSize, func(pq repository.PageQuery) (*repository.PageResult[model.DocumentHistory], error) {
		return s.history.List(ctx, f, pq)
	})
}

func (s *documentService) Audit(ctx context.Context, f repository.HistoryFilter, page int) (*HistoryListResult, error) {
	return paginate(page, HistoryPageSize, func(pq repository.PageQuery) (*repository.PageResult[model.DocumentHistory], error) {
		return s.history.List(ctx, f, pq)
	})
}

func (s *documentService) Open(ctx context.Context, id string) (io.ReadCloser, *model.FileRef, error) {
	doc, err := s.find(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if doc.File == nil {
		return nil, nil, ErrNoFile
	}
	rc, _, err := s.store.Get(ctx, doc.File.Key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNoFile
		}
		return nil, nil, fmt.Errorf("open stored file: %w", err)
	}
	return rc, doc.File, nil
}

func (s *documentService) find(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return doc, nil
}

// validate checks the rules that the form layer cannot: enum membership, date order
// and that referenced category and location exist.
func (s *documentService) validate(ctx context.Context, in DocumentInput) error {
	fe := fieldErrors{}
	if strings.TrimSpace(in.Title) == "" {
		fe.add("title", "required")
	}
	if strings.TrimSpace(in.DocumentNumber) == "" {
		fe.add("document_number", "required")
	}
	if !in.DocumentType.Valid() {
		fe.add("document_type", "unknown document type")
	}
	if in.IssueDate.IsZero() {
		fe.add("issue_date", "required")
	}
	if in.ExpiryDate != nil && !in.IssueDate.IsZero() && in.ExpiryDate.Before(in.IssueDate) {
		fe.add("expiry_date", "must not be before issue date")
	}
	if in.CategoryID != nil {
		if _, err := s.categories.FindByID(ctx, *in.CategoryID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			fe.add("category", "unknown category")
		}
	}
	if in.StorageLocationID != nil {
		if _, err := s.locations.FindByID(ctx, *in.StorageLocationID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			fe.add("storage_location", "unknown storage location")
		}
	}
	return fe.err()
}

// upload stores file under documents/<uuid><ext>. A nil file is not an error.
func (s *documentService) upload(ctx context.Context, file *FileUpload) (*model.FileRef, error) {
	if file == nil {
		return nil, nil
	}
	if file.Reader == nil {
		return nil, ErrReaderNil
	}
	ct := file.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	key := path.Join("documents", uuid.NewString()+strings.ToLower(filepath.Ext(file.Filename)))

	info, err := s.store.Put(ctx, key, file.Reader, storage.PutObjectOptions{
		Size:        file.Size,
		ContentType: ct,
		Metadata: map[string]string{
			"original-filename": file.Filename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	s.metrics.FileStored("document", info.Size)
	return &model.FileRef{
		Key:         info.Key,
		Name:        filepath.Base(file.Filename),
		Size:        info.Size,
		ContentType: ct,
	}, nil
}

func (s *documentService) rollback(ctx context.Context, ref *model.FileRef, cause error) {
	if ref == nil {
		return
	}
	if err := s.store.Delete(ctx, ref.Key); err != nil {
		s.log.WithFields(logrus.Fields{
			"component": "documents",
			"key":       ref.Key,
			"cause":     cause.Error(),
			"error":     err.Error(),
		}).Error("storage_rollback_failed")
	}
}

func (s *documentService) removeObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.log.WithFields(logrus.Fields{
			"component": "documents",
			"key":       key,
			"error":     err.Error(),
		}).Warn("storage_delete_failed")
	}
}

func (s *documentService) downloadURL(ctx context.Context, doc *model.Document) string {
	u, err := s.store.PresignGet(ctx, doc.File.Key, presignExpiry)
	if err != nil {
		return "/documents/" + doc.ID + "/file"
	}
	return u
}

// record appends one audit row and mirrors it as an audit log line.
func (s *documentService) record(ctx context.Context, actor auth.Principal, docID string, action model.HistoryAction) error {
	h := &model.DocumentHistory{
		DocumentID: docID,
		Action:     action,
		Details:    s.labels.Tf(s.labels.Fallback(), "history.details."+string(action), actor.Username),
	}
	if actor.UserID != "" {
		uid := actor.UserID
		h.UserID = &uid
	}
	if _, err := s.history.Append(ctx, h); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	s.metrics.HistoryRecorded(string(action))
	s.log.WithFields(logrus.Fields{
		"type":        "audit",
		"action":      string(action),
		"document_id": docID,
		"user_id":     actor.UserID,
		"username":    actor.Username,
	}).Info("document_history")
	return nil
}

func apply(doc *model.Document, in DocumentInput) {
	doc.Title = strings.TrimSpace(in.Title)
	doc.DocumentType = in.DocumentType
	doc.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	doc.CategoryID = in.CategoryID
	doc.IssueDate = in.IssueDate
	doc.ExpiryDate = in.ExpiryDate
	doc.StorageLocationID = in.StorageLocationID
	doc.Description = in.Description
}

func canModify(actor auth.Principal, doc *model.Document) bool {
	return actor.IsStaff || doc.OwnedBy(actor.UserID)
}
