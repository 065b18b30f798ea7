package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"archivesys/internal/auth"
	"archivesys/internal/i18n"
	"archivesys/internal/logging"
	"archivesys/internal/model"
	"archivesys/internal/repository"
	repoMocks "archivesys/internal/repository/mocks"
	"archivesys/internal/storage"
	storeMocks "archivesys/internal/storage/mocks"
)

var (
	clerk = auth.Principal{UserID: "user-1", Username: "clerk"}
	other = auth.Principal{UserID: "user-2", Username: "other"}
	staff = auth.Principal{UserID: "admin-1", Username: "admin", IsStaff: true}
)

type documentFixture struct {
	docs       *repoMocks.MockDocumentRepository
	history    *repoMocks.MockHistoryRepository
	categories *repoMocks.MockCategoryRepository
	locations  *repoMocks.MockLocationRepository
	store      *storeMocks.MockStorage
	svc        DocumentService
}

func newDocumentFixture(t *testing.T) *documentFixture {
	t.Helper()
	labels, err := i18n.NewBundle("en")
	require.NoError(t, err)

	f := &documentFixture{
		docs:       new(repoMocks.MockDocumentRepository),
		history:    new(repoMocks.MockHistoryRepository),
		categories: new(repoMocks.MockCategoryRepository),
		locations:  new(repoMocks.MockLocationRepository),
		store:      new(storeMocks.MockStorage),
	}
	f.svc = NewDocumentService(DocumentDeps{
		Documents:  f.docs,
		History:    f.history,
		Categories: f.categories,
		Locations:  f.locations,
		Store:      f.store,
		Labels:     labels,
		Log:        logging.Discard(),
	})
	return f
}

func (f *documentFixture) assertExpectations(t *testing.T) {
	f.docs.AssertExpectations(t)
	f.history.AssertExpectations(t)
	f.categories.AssertExpectations(t)
	f.locations.AssertExpectations(t)
	f.store.AssertExpectations(t)
}

// expectHistory expects exactly one audit record with action by actor.
func (f *documentFixture) expectHistory(ctx context.Context, docID string, action model.HistoryAction, actor auth.Principal) {
	f.history.On("Append", ctx, mock.MatchedBy(func(h *model.DocumentHistory) bool {
		return h.DocumentID == docID &&
			h.Action == action &&
			h.UserID != nil && *h.UserID == actor.UserID &&
			strings.Contains(h.Details, actor.Username)
	})).Return(&model.DocumentHistory{ID: "h-1"}, nil).Once()
}

func validInput() DocumentInput {
	return DocumentInput{
		Title:          "Order 12",
		DocumentType:   model.DocumentTypeOrder,
		DocumentNumber: "O-12",
		IssueDate:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func ownedDoc(id, owner string, file *model.FileRef) *model.Document {
	return &model.Document{ID: id, Title: "Order 12", DocumentType: model.DocumentTypeOrder, CreatedByID: &owner, File: file}
}

func TestDocumentService_Create(t *testing.T) {
	ctx := context.Background()
	cat := "cat-1"
	loc := "loc-1"

	tests := []struct {
		name       string
		input      func() DocumentInput
		withFile   bool
		setupMocks func(f *documentFixture, r io.Reader)
		wantErr    error
		wantErrMsg string
		wantFields []string
	}{
		{
			name:     "happy path with file",
			input:    validInput,
			withFile: true,
			setupMocks: func(f *documentFixture, r io.Reader) {
				f.store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "documents/") && strings.HasSuffix(key, ".pdf")
				}), r, storage.PutObjectOptions{
					Size:        11,
					ContentType: "application/pdf",
					Metadata:    map[string]string{"original-filename": "Scan.PDF"},
				}).Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
					return storage.ObjectInfo{Key: key, Size: 11}
				}, nil)
				f.docs.On("Create", ctx, mock.MatchedBy(func(d *model.Document) bool {
					return d.ID != "" &&
						d.OwnedBy("user-1") &&
						d.File != nil && d.File.Name == "Scan.PDF" && d.File.Size == 11
				})).Return(ownedDoc("doc-1", "user-1", nil), nil)
				f.expectHistory(ctx, "doc-1", model.ActionCreate, clerk)
			},
		},
		{
			name: "happy path with category and location",
			input: func() DocumentInput {
				in := validInput()
				in.CategoryID, in.StorageLocationID = &cat, &loc
				return in
			},
			setupMocks: func(f *documentFixture, r io.Reader) {
				f.categories.On("FindByID", ctx, "cat-1").Return(&model.DocumentCategory{ID: "cat-1"}, nil)
				f.locations.On("FindByID", ctx, "loc-1").Return(&model.StorageLocation{ID: "loc-1"}, nil)
				f.docs.On("Create", ctx, mock.Anything).Return(ownedDoc("doc-2", "user-1", nil), nil)
				f.expectHistory(ctx, "doc-2", model.ActionCreate, clerk)
			},
		},
		{
			name: "validation - missing fields and bad dates",
			input: func() DocumentInput {
				expiry := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
				return DocumentInput{
					DocumentType: "passport",
					IssueDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
					ExpiryDate:   &expiry,
				}
			},
			setupMocks: func(f *documentFixture, r io.Reader) {},
			wantFields: []string{"title", "document_number", "document_type", "expiry_date"},
		},
		{
			name: "validation - unknown category",
			input: func() DocumentInput {
				in := validInput()
				in.CategoryID = &cat
				return in
			},
			setupMocks: func(f *documentFixture, r io.Reader) {
				f.categories.On("FindByID", ctx, "cat-1").Return(nil, repository.ErrNotFound)
			},
			wantFields: []string{"category"},
		},
		{
			name: "validation - category deleted after check",
			input: func() DocumentInput {
				in := validInput()
				in.CategoryID = &cat
				return in
			},
			setupMocks: func(f *documentFixture, r io.Reader) {
				f.categories.On("FindByID", ctx, "cat-1").Return(&model.DocumentCategory{ID: "cat-1"}, nil)
				f.docs.On("Create", ctx, mock.Anything).
					Return(nil, fmt.Errorf("%w: documents_category_id_fkey", repository.ErrInvalidReference))
			},
			wantFields: []string{"category"},
		},
		{
			name:     "storage error",
			input:    validInput,
			withFile: true,
			setupMocks: func(f *documentFixture, r io.Reader) {
				f.store.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name:     "repository error removes uploaded object",
			input:    validInput,
			withFile: true,
			setupMocks: func(f *documentFixture, r io.Reader) {
				f.store.On("Put", ctx, mock.Anything, r, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key}
					}, nil)
				f.docs.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				f.store.On("Delete", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "documents/")
				})).Return(errors.New("delete fail"))
			},
			wantErrMsg: "db save failed: db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture(t)

			var file *FileUpload
			var r io.Reader
			if tt.withFile {
				r = strings.NewReader("hello world")
				file = &FileUpload{Reader: r, Filename: "Scan.PDF", ContentType: "application/pdf", Size: 11}
			}
			tt.setupMocks(f, r)

			doc, err := f.svc.Create(ctx, clerk, tt.input(), file)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			case tt.wantFields != nil:
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				for _, field := range tt.wantFields {
					assert.Contains(t, ve.Fields, field)
				}
				assert.Nil(t, doc)
			default:
				require.NoError(t, err)
				assert.NotNil(t, doc)
			}
			f.assertExpectations(t)
		})
	}
}

func TestReferenceError(t *testing.T) {
	tests := []struct {
		constraint string
		field      string
	}{
		{"documents_category_id_fkey", "category"},
		{"documents_storage_location_id_fkey", "storage_location"},
		{"documents_created_by_fkey", "reference"},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			var ve *ValidationError
			require.ErrorAs(t, referenceError(fmt.Errorf("%w: %s", repository.ErrInvalidReference, tt.constraint)), &ve)
			assert.Equal(t, []string{tt.field}, fieldKeys(ve.Fields))
		})
	}

	plain := errors.New("db fail")
	assert.Equal(t, plain, referenceError(plain))
}

func fieldKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestDocumentService_CreateNilReader(t *testing.T) {
	f := newDocumentFixture(t)

	_, err := f.svc.Create(context.Background(), clerk, validInput(), &FileUpload{Filename: "a.txt"})

	assert.ErrorIs(t, err, ErrReaderNil)
	f.assertExpectations(t)
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()
	file := &model.FileRef{Key: "documents/a.pdf", Name: "a.pdf"}

	tests := []struct {
		name       string
		id         string
		setupMocks func(f *documentFixture)
		wantErr    error
		wantURL    string
	}{
		{
			name: "records a view",
			id:   "doc-1",
			setupMocks: func(f *documentFixture) {
				f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-2", nil), nil)
				f.expectHistory(ctx, "doc-1", model.ActionView, clerk)
			},
		},
		{
			name: "presigned download url",
			id:   "doc-1",
			setupMocks: func(f *documentFixture) {
				f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", file), nil)
				f.expectHistory(ctx, "doc-1", model.ActionView, clerk)
				f.store.On("PresignGet", ctx, "documents/a.pdf", presignExpiry).Return("https://s3/a.pdf?sig", nil)
			},
			wantURL: "https://s3/a.pdf?sig",
		},
		{
			name: "falls back to api download",
			id:   "doc-1",
			setupMocks: func(f *documentFixture) {
				f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", file), nil)
				f.expectHistory(ctx, "doc-1", model.ActionView, clerk)
				f.store.On("PresignGet", ctx, "documents/a.pdf", presignExpiry).Return("", storage.ErrPresignUnsupported)
			},
			wantURL: "/documents/doc-1/file",
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(f *documentFixture) {},
			wantErr:    ErrIDRequired,
		},
		{
			name: "not found",
			id:   "missing-id",
			setupMocks: func(f *documentFixture) {
				f.docs.On("FindByID", ctx, "missing-id").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture(t)
			tt.setupMocks(f)

			doc, err := f.svc.Get(ctx, clerk, tt.id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.id, doc.ID)
				assert.Equal(t, tt.wantURL, doc.DownloadURL)
			}
			f.assertExpectations(t)
		})
	}
}

func TestDocumentService_Update(t *testing.T) {
	ctx := context.Background()
	oldFile := &model.FileRef{Key: "documents/old.pdf", Name: "old.pdf"}

	tests := []struct {
		name       string
		actor      auth.Principal
		withFile   bool
		setupMocks func(f *documentFixture)
		wantErr    error
	}{
		{
			name:  "owner updates",
			actor: clerk,
			setupMocks: func(f *documentFixture) {
				f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", oldFile), nil)
				f.docs.On("Update", ctx, mock.MatchedBy(func(d *model.Document) bool {
					return d.Title == "Order 12" && d.File == oldFile
				})).Return(ownedDoc("doc-1", "user-1", oldFile), nil)
				f.expectHistory(ctx, "doc-1", model.ActionUpdate, clerk)
			},
		},
		{
			name:     "staff replaces file of another user",
			actor:    staff,
			withFile: true,
			setupMocks: func(f *documentFixture) {
				f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", oldFile), nil)
				f.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						return storage.ObjectInfo{Key: key, Size: 3}
					}, nil)
				f.docs.On("Update", ctx, mock.MatchedBy(func(d *model.Document) bool {
					return d.File != nil && d.File.Key != oldFile.Key
				})).Return(ownedDoc("doc-1", "user-1", nil), nil)
				f.store.On("Delete", ctx, "documents/old.pdf").Return(nil)
				f.expectHistory(ctx, "doc-1", model.ActionUpdate, staff)
			},
		},
		{
			name:  "non-owner is forbidden",
			actor: other,
			setupMocks: func(f *documentFixture) {
				f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", nil), nil)
			},
			wantErr: ErrForbidden,
		},
		{
			name:  "row vanished",
			actor: clerk,
			setupMocks: func(f *documentFixture) {
				f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", nil), nil)
				f.docs.On("Update", ctx, mock.Anything).Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture(t)
			tt.setupMocks(f)

			var file *FileUpload
			if tt.withFile {
				file = &FileUpload{Reader: strings.NewReader("new"), Filename: "new.pdf", Size: 3}
			}
			doc, err := f.svc.Update(ctx, tt.actor, "doc-1", validInput(), file)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, doc)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "doc-1", doc.ID)
			}
			f.assertExpectations(t)
		})
	}
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()
	file := &model.FileRef{Key: "documents/a.pdf"}

	tests := []struct {
		name       string
		actor      auth.Principal
		setupMocks func(f *documentFixture)
		wantErr    error
		wantErrMsg string
	}{
		{
			name:  "owner deletes row then object",
			actor: clerk,
			setupMocks: func(f *documentFixture) {
				f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", file), nil)
				f.expectHistory(ctx, "doc-1", model.ActionDelete, clerk)
				f.docs.On("Delete", ctx, "doc-1").Return(nil)
				f.store.On("Delete", ctx, "documents/a.pdf").Return(nil)
			},
		},
		{
			name:  "storage failure is only logged",
			actor: staff,
			setupMocks: func(f *documentFixture) {
				f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", file), nil)
				f.expectHistory(ctx, "doc-1", model.ActionDelete, staff)
				f.docs.On("Delete", ctx, "doc-1").Return(nil)
				f.store.On("Delete", ctx, "documents/a.pdf").Return(errors.New("storage fail"))
			},
		},
		{
			name:  "non-owner is forbidden",
			actor: other,
			setupMocks: func(f *documentFixture) {
				f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", file), nil)
			},
			wantErr: ErrForbidden,
		},
		{
			name:  "not found",
			actor: clerk,
			setupMocks: func(f *documentFixture) {
				f.docs.On("FindByID", ctx, "doc-1").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name:  "repository delete error",
			actor: clerk,
			setupMocks: func(f *documentFixture) {
				f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", file), nil)
				f.expectHistory(ctx, "doc-1", model.ActionDelete, clerk)
				f.docs.On("Delete", ctx, "doc-1").Return(errors.New("db fail"))
			},
			wantErrMsg: "delete document: db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture(t)
			tt.setupMocks(f)

			err := f.svc.Delete(ctx, tt.actor, "doc-1")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			default:
				assert.NoError(t, err)
			}
			f.assertExpectations(t)
		})
	}
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()
	filter := repository.DocumentFilter{Query: "abc"}

	tests := []struct {
		name       string
		page       int
		setupMocks func(f *documentFixture)
		wantPage   int
		wantPages  int
		wantErr    bool
	}{
		{
			name: "first page",
			page: 1,
			setupMocks: func(f *documentFixture) {
				f.docs.On("List", ctx, filter, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Document]{Items: []model.Document{{ID: "1"}, {ID: "2"}}, Total: 12}, nil)
			},
			wantPage:  1,
			wantPages: 2,
		},
		{
			name: "page past the end yields last page",
			page: 9,
			setupMocks: func(f *documentFixture) {
				f.docs.On("List", ctx, filter, repository.PageQuery{Limit: 10, Offset: 80}).
					Return(&repository.PageResult[model.Document]{Items: []model.Document{}, Total: 12}, nil)
				f.docs.On("List", ctx, filter, repository.PageQuery{Limit: 10, Offset: 10}).
					Return(&repository.PageResult[model.Document]{Items: []model.Document{{ID: "11"}, {ID: "12"}}, Total: 12}, nil)
			},
			wantPage:  2,
			wantPages: 2,
		},
		{
			name: "empty listing",
			page: 0,
			setupMocks: func(f *documentFixture) {
				f.docs.On("List", ctx, filter, repository.PageQuery{Limit: 10, Offset: 0}).
					Return(&repository.PageResult[model.Document]{Items: []model.Document{}, Total: 0}, nil)
			},
			wantPage:  1,
			wantPages: 1,
		},
		{
			name: "repository error",
			page: 1,
			setupMocks: func(f *documentFixture) {
				f.docs.On("List", ctx, filter, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDocumentFixture(t)
			tt.setupMocks(f)

			res, err := f.svc.List(ctx, filter, tt.page)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantPage, res.Page)
				assert.Equal(t, tt.wantPages, res.Pages)
				assert.Equal(t, DocumentPageSize, res.PageSize)
			}
			f.assertExpectations(t)
		})
	}
}

func TestDocumentService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("missing document", func(t *testing.T) {
		f := newDocumentFixture(t)
		f.docs.On("FindByID", ctx, "nope").Return(nil, repository.ErrNotFound)

		_, err := f.svc.History(ctx, "nope", 1)
		assert.ErrorIs(t, err, ErrNotFound)
		f.assertExpectations(t)
	})

	t.Run("page of records", func(t *testing.T) {
		f := newDocumentFixture(t)
		f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", nil), nil)
		f.history.On("List", ctx, repository.HistoryFilter{DocumentID: "doc-1"}, repository.PageQuery{Limit: 20, Offset: 0}).
			Return(&repository.PageResult[model.DocumentHistory]{
				Items: []model.DocumentHistory{{ID: "h-2", Action: model.ActionView}, {ID: "h-1", Action: model.ActionCreate}},
				Total: 2,
			}, nil)

		res, err := f.svc.History(ctx, "doc-1", 1)
		require.NoError(t, err)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, HistoryPageSize, res.PageSize)
		f.assertExpectations(t)
	})
}

func TestDocumentService_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("no file attached", func(t *testing.T) {
		f := newDocumentFixture(t)
		f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", nil), nil)

		_, _, err := f.svc.Open(ctx, "doc-1")
		assert.ErrorIs(t, err, ErrNoFile)
	})

	t.Run("object missing in storage", func(t *testing.T) {
		f := newDocumentFixture(t)
		f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", &model.FileRef{Key: "documents/a"}), nil)
		f.store.On("Get", ctx, "documents/a").Return(nil, storage.ObjectInfo{}, storage.ErrNotFound)

		_, _, err := f.svc.Open(ctx, "doc-1")
		assert.ErrorIs(t, err, ErrNoFile)
	})

	t.Run("streams the object", func(t *testing.T) {
		f := newDocumentFixture(t)
		ref := &model.FileRef{Key: "documents/a", Name: "a.txt"}
		f.docs.On("FindByID", ctx, "doc-1").Return(ownedDoc("doc-1", "user-1", ref), nil)
		f.store.On("Get", ctx, "documents/a").Return(io.NopCloser(strings.NewReader("hi")), storage.ObjectInfo{}, nil)

		rc, got, err := f.svc.Open(ctx, "doc-1")
		require.NoError(t, err)
		defer rc.Close()
		body, _ := io.ReadAll(rc)
		assert.Equal(t, "hi", string(body))
		assert.Equal(t, "a.txt", got.Name)
	})
}
