package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"archivesys/internal/auth"
	"archivesys/internal/http/middleware"
	"archivesys/internal/i18n"
	"archivesys/internal/model"
	"archivesys/internal/repository"
	"archivesys/internal/service"
	serviceMocks "archivesys/internal/service/mocks"
)

var clerk = auth.Principal{UserID: "user-1", Username: "clerk"}

// newApp builds an app with the global error handler and, when p is set,
// a principal already authenticated.
func newApp(p *auth.Principal) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	if p != nil {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(middleware.PrincipalLocalKey, *p)
			return c.Next()
		})
	}
	return app
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := newApp(nil)
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := newApp(nil)
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp(&clerk)
	app.Get("/documents", ListDocuments(mockSvc))

	catID := uuid.New().String()

	t.Run("success with filters", func(t *testing.T) {
		from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		want := repository.DocumentFilter{Query: "order", DocumentType: "order", CategoryID: catID, IssuedFrom: &from}
		expectedRes := &service.DocumentListResult{
			Items: []model.Document{{ID: uuid.New().String(), Title: "Order 1"}},
			Total: 1, Page: 2, PageSize: 10, Pages: 1,
		}
		mockSvc.On("List", mock.Anything, want, 2).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/documents?query=order&document_type=order&category="+catID+"&start_date=2024-01-01&page=2", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.DocumentListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed filters are ignored", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, repository.DocumentFilter{}, 1).
			Return(&service.DocumentListResult{Page: 1, Pages: 1}, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/documents?document_type=memo&category=abc&start_date=31.12.2024&page=x", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, mock.Anything, 1).Return(nil, errors.New("service error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
		assert.NotContains(t, body.Error.Message, "service error")
		mockSvc.AssertExpectations(t)
	})
}

func documentForm(t *testing.T, fields map[string]string, file string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if file != "" {
		part, err := writer.CreateFormFile("file", file)
		require.NoError(t, err)
		part.Write([]byte("hello world"))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func validDocumentFields() map[string]string {
	return map[string]string{
		"title":           "Rector order 12",
		"document_type":   "order",
		"document_number": "O-12",
		"issue_date":      "2024-05-02",
	}
}

func TestCreateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp(&clerk)
	app.Post("/documents", CreateDocument(mockSvc))

	t.Run("success with file", func(t *testing.T) {
		body, ct := documentForm(t, validDocumentFields(), "order.pdf")

		expectedDoc := &model.Document{ID: uuid.New().String(), Title: "Rector order 12"}
		mockSvc.On("Create", mock.Anything, clerk,
			mock.MatchedBy(func(in service.DocumentInput) bool {
				return in.DocumentType == model.DocumentTypeOrder &&
					in.IssueDate.Equal(time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)) &&
					in.CategoryID == nil
			}),
			mock.MatchedBy(func(f *service.FileUpload) bool {
				if f == nil || f.Filename != "order.pdf" || f.Size != 11 {
					return false
				}
				b, err := io.ReadAll(f.Reader)
				return err == nil && string(b) == "hello world"
			})).Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, expectedDoc.ID, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("file is optional", func(t *testing.T) {
		body, ct := documentForm(t, validDocumentFields(), "")
		mockSvc.On("Create", mock.Anything, clerk, mock.Anything, (*service.FileUpload)(nil)).
			Return(&model.Document{ID: "d-1"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation failure writes nothing", func(t *testing.T) {
		fields := validDocumentFields()
		fields["document_type"] = "memo"
		fields["issue_date"] = "02.05.2024"
		delete(fields, "title")
		body, ct := documentForm(t, fields, "")
		calls := len(mockSvc.Calls)

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_FAILED", res.Error.Code)
		assert.Contains(t, res.Error.Fields, "title")
		assert.Contains(t, res.Error.Fields, "document_type")
		assert.Contains(t, res.Error.Fields, "issue_date")
		assert.Len(t, mockSvc.Calls, calls)
	})

	t.Run("service validation", func(t *testing.T) {
		body, ct := documentForm(t, validDocumentFields(), "")
		mockSvc.On("Create", mock.Anything, clerk, mock.Anything, mock.Anything).
			Return(nil, &service.ValidationError{Fields: map[string]string{"expiry_date": "must not be before the issue date"}}).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "must not be before the issue date", decodeError(t, resp).Error.Fields["expiry_date"])
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp(&clerk)
	app.Get("/documents/:id", GetDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		expectedDoc := &service.DocumentDetail{
			Document:    model.Document{ID: id, Title: "Diploma"},
			DownloadURL: "/documents/" + id + "/file",
		}
		mockSvc.On("Get", mock.Anything, clerk, id).Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.DocumentDetail
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, id, result.ID)
		assert.Equal(t, expectedDoc.DownloadURL, result.DownloadURL)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, clerk, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp).Error.Code)
	})
}

func TestUpdateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp(&clerk)
	app.Put("/documents/:id", UpdateDocument(mockSvc))

	t.Run("json body", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Update", mock.Anything, clerk, id,
			mock.MatchedBy(func(in service.DocumentInput) bool { return in.Title == "Renamed" }),
			(*service.FileUpload)(nil)).Return(&model.Document{ID: id, Title: "Renamed"}, nil).Once()

		payload := `{"title":"Renamed","document_type":"order","document_number":"O-12","issue_date":"2024-05-02"}`
		req := httptest.NewRequest(http.MethodPut, "/documents/"+id, strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not the owner", func(t *testing.T) {
		id := uuid.New().String()
		body, ct := documentForm(t, validDocumentFields(), "")
		mockSvc.On("Update", mock.Anything, clerk, id, mock.Anything, mock.Anything).
			Return(nil, service.ErrForbidden).Once()

		req := httptest.NewRequest(http.MethodPut, "/documents/"+id, body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp(&clerk)
	app.Delete("/documents/:id", DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, clerk, id).Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, clerk, id).Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("forbidden", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, clerk, id).Return(service.ErrForbidden).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDocumentHistoryAndDownload(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newApp(&clerk)
	app.Get("/documents/:id/history", DocumentHistory(mockSvc))
	app.Get("/documents/:id/file", DownloadDocument(mockSvc))
	id := uuid.New().String()

	t.Run("history page", func(t *testing.T) {
		mockSvc.On("History", mock.Anything, id, 3).
			Return(&service.HistoryListResult{Items: []model.DocumentHistory{{Action: model.ActionView}}, Total: 1, Page: 1, Pages: 1}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id+"/history?page=3", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("download streams the file", func(t *testing.T) {
		ref := &model.FileRef{Key: "documents/x.pdf", Name: "order.pdf", Size: 5, ContentType: "application/pdf"}
		mockSvc.On("Open", mock.Anything, id).Return(io.NopCloser(strings.NewReader("%PDF-")), ref, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id+"/file", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="order.pdf"`)
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "%PDF-", string(b))
	})

	t.Run("no file attached", func(t *testing.T) {
		mockSvc.On("Open", mock.Anything, id).Return(nil, nil, service.ErrNoFile).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/"+id+"/file", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestCatalogHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockCatalogService)
	app := newApp(&clerk)
	app.Get("/categories", ListCategories(mockSvc))
	app.Post("/categories", CreateCategory(mockSvc))
	app.Delete("/categories/:id", DeleteCategory(mockSvc))
	app.Post("/locations", CreateLocation(mockSvc))
	app.Put("/locations/:id", UpdateLocation(mockSvc))

	t.Run("list categories", func(t *testing.T) {
		mockSvc.On("ListCategories", mock.Anything).
			Return([]model.DocumentCategory{{ID: "c-1", Name: "Orders"}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/categories", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var out []model.DocumentCategory
		json.NewDecoder(resp.Body).Decode(&out)
		assert.Len(t, out, 1)
	})

	t.Run("create category", func(t *testing.T) {
		mockSvc.On("CreateCategory", mock.Anything, service.CategoryInput{Name: "Orders"}).
			Return(&model.DocumentCategory{ID: "c-1", Name: "Orders"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"Orders"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("delete category forbidden for non staff", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("DeleteCategory", mock.Anything, clerk, id).Return(service.ErrForbidden).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/categories/"+id, nil))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("create location requires room and shelf", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/locations", strings.NewReader(`{"name":"Main"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Contains(t, res.Error.Fields, "room")
		assert.Contains(t, res.Error.Fields, "shelf")
	})

	t.Run("update location urlencoded", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("UpdateLocation", mock.Anything, id, service.LocationInput{Name: "Main", Room: "101", Shelf: "A", Box: "3"}).
			Return(&model.StorageLocation{ID: id}, nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/locations/"+id, strings.NewReader("name=Main&room=101&shelf=A&box=3"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestReportHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockReportService)
	app := newApp(&clerk)
	app.Post("/reports", CreateReport(mockSvc))
	app.Get("/reports/export-csv", ExportDocuments(mockSvc, model.FormatCSV))
	app.Get("/reports/:id", GetReport(mockSvc))

	t.Run("create defaults to pdf", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, clerk, mock.MatchedBy(func(in service.ReportInput) bool {
			return in.Format == model.FormatPDF && in.ReportType == model.ReportActivityLog && in.StartDate != nil
		})).Return(&model.Report{ID: "r-1"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/reports",
			strings.NewReader(`{"title":"Audit","report_type":"activity_log","start_date":"2024-01-01"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("generation failure", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, clerk, mock.Anything).
			Return(nil, errors.Join(service.ErrReportGeneration, errors.New("font missing"))).Once()

		req := httptest.NewRequest(http.MethodPost, "/reports",
			strings.NewReader(`{"title":"Q2","report_type":"document_list","format":"pdf"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "REPORT_GENERATION_FAILED", decodeError(t, resp).Error.Code)
	})

	t.Run("unknown format", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/reports",
			strings.NewReader(`{"title":"Q2","report_type":"document_list","format":"docx"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Error.Fields, "format")
	})

	t.Run("export csv is an attachment", func(t *testing.T) {
		mockSvc.On("Export", mock.Anything, model.FormatCSV).Return(&service.ExportFile{
			Name: "documents_20240630_140509.csv", ContentType: "text/csv", Body: []byte("Title\n"),
		}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reports/export-csv", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "documents_20240630_140509.csv")
	})

	t.Run("get report", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).
			Return(&service.ReportDetail{Report: model.Report{ID: id}, DownloadURL: "/reports/" + id + "/file"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/reports/"+id, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestAuthHandlers(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := newApp(&clerk)
	app.Post("/auth/login", Login(mockSvc))
	app.Get("/auth/me", Me(mockSvc))

	t.Run("login", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "clerk", "correct-horse").
			Return(&service.LoginResult{Token: "tok", User: &model.User{ID: "user-1"}}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"username":"clerk","password":"correct-horse"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var out service.LoginResult
		json.NewDecoder(resp.Body).Decode(&out)
		assert.Equal(t, "tok", out.Token)
	})

	t.Run("bad credentials", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "clerk", "nope").Return(nil, service.ErrInvalidCredentials).Once()

		req := httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"username":"clerk","password":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"clerk"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, decodeError(t, resp).Error.Fields, "password")
	})

	t.Run("me", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "user-1").
			Return(&model.User{ID: "user-1", Profile: model.Profile{Position: "Archivist"}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/auth/me", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var out model.User
		json.NewDecoder(resp.Body).Decode(&out)
		assert.Equal(t, "Archivist", out.Profile.Position)
	})

	mockSvc.AssertExpectations(t)
}

func TestAdminHandlers(t *testing.T) {
	admin := auth.Principal{UserID: "admin-1", Username: "admin", IsStaff: true}
	users := new(serviceMocks.MockUserService)
	docs := new(serviceMocks.MockDocumentService)
	app := newApp(&admin)
	app.Post("/admin/users", CreateUser(users))
	app.Delete("/admin/users/:id", DeleteUser(users))
	app.Get("/admin/history", AuditTrail(docs))

	t.Run("create user defaults to active", func(t *testing.T) {
		users.On("Create", mock.Anything, mock.MatchedBy(func(in service.UserInput) bool {
			return in.Username == "clerk" && in.IsActive && in.Department == "Records"
		})).Return(&model.User{ID: "user-1"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/admin/users",
			strings.NewReader(`{"username":"clerk","password":"long-enough","department":"Records"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("cannot delete self", func(t *testing.T) {
		id := uuid.New().String()
		users.On("Delete", mock.Anything, admin, id).Return(service.ErrForbidden).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/admin/users/"+id, nil))

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("history end date is inclusive", func(t *testing.T) {
		docs.On("Audit", mock.Anything, mock.MatchedBy(func(f repository.HistoryFilter) bool {
			return f.Action == "view" && f.To != nil &&
				f.To.Equal(time.Date(2024, 6, 30, 23, 59, 59, 999999999, time.UTC))
		}), 1).Return(&service.HistoryListResult{Page: 1, Pages: 1}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/admin/history?action=view&end_date=2024-06-30", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	users.AssertExpectations(t)
	docs.AssertExpectations(t)
}

func TestListChoices(t *testing.T) {
	labels, err := i18n.NewBundle("en")
	require.NoError(t, err)
	app := newApp(&clerk)
	app.Use(middleware.Lang(labels))
	app.Get("/choices", ListChoices(labels))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/choices", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out Choices
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Len(t, out.DocumentTypes, len(model.DocumentTypes))
	assert.Len(t, out.Actions, 4)
	assert.Equal(t, Choice{"order", "Order"}, out.DocumentTypes[3])
}

func TestRouting(t *testing.T) {
	users := new(serviceMocks.MockUserService)
	app := newApp(nil)
	RegisterRoutes(app, Deps{
		Documents: new(serviceMocks.MockDocumentService),
		Catalog:   new(serviceMocks.MockCatalogService),
		Reports:   new(serviceMocks.MockReportService),
		Users:     users,
	})

	t.Run("liveness is public", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("documents require a token", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents", nil))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
	})

	t.Run("admin requires staff", func(t *testing.T) {
		users.On("Authenticate", mock.Anything, "tok").Return(&clerk, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req.Header.Set("Authorization", "Bearer tok")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
	})

	t.Run("not found route", func(t *testing.T) {
		users.On("Authenticate", mock.Anything, "tok").Return(&clerk, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		req.Header.Set("Authorization", "Bearer tok")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})
}
