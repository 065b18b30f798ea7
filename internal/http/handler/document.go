package handler

import (
	"github.com/gofiber/fiber/v2"

	"archivesys/internal/http/form"
	"archivesys/internal/service"
)

// ListDocuments returns one page of documents matching the search parameters.
//
// @Summary List documents
// @Tags documents
// @Produce json
// @Param query query string false "substring of title, number or description"
// @Param document_type query string false "document type"
// @Param category query string false "category id"
// @Param storage_location query string false "storage location id"
// @Param start_date query string false "issued on or after (YYYY-MM-DD)"
// @Param end_date query string false "issued on or before (YYYY-MM-DD)"
// @Param page query int false "page number"
// @Success 200 {object} service.DocumentListResult
// @Security BearerAuth
// @Router /documents [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q form.DocumentSearch
		// Unparseable queries fall back to the unfiltered first page.
		_ = c.QueryParser(&q)

		res, err := svc.List(c.UserContext(), q.Filter(), form.Page(q.Page))
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// GetDocument returns a document and records the view.
//
// @Summary Get document
// @Tags documents
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} service.DocumentDetail
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /documents/{id} [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		p, err := principal(c)
		if err != nil {
			return err
		}
		doc, err := svc.Get(c.UserContext(), p, id)
		if err != nil {
			return err
		}
		return c.JSON(doc)
	}
}

// CreateDocument registers a document with an optional attached file.
//
// @Summary Create document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "title"
// @Param document_type formData string true "document type"
// @Param document_number formData string true "number"
// @Param issue_date formData string true "issue date (YYYY-MM-DD)"
// @Param file formData file false "attached file"
// @Success 201 {object} model.Document
// @Failure 400 {object} errorPayload
// @Security BearerAuth
// @Router /documents [post]
func CreateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		var f form.Document
		if err := bind(c, &f); err != nil {
			return err
		}
		in, err := f.Input()
		if err != nil {
			return err
		}
		file, closer, err := upload(c)
		if err != nil {
			return err
		}
		defer closer.Close()

		doc, err := svc.Create(c.UserContext(), p, in, file)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// UpdateDocument overwrites a document the caller owns, or any document for staff.
//
// @Summary Update document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "document id"
// @Success 200 {object} model.Document
// @Failure 403 {object} errorPayload
// @Security BearerAuth
// @Router /documents/{id} [put]
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		p, err := principal(c)
		if err != nil {
			return err
		}
		var f form.Document
		if err := bind(c, &f); err != nil {
			return err
		}
		in, err := f.Input()
		if err != nil {
			return err
		}
		file, closer, err := upload(c)
		if err != nil {
			return err
		}
		defer closer.Close()

		doc, err := svc.Update(c.UserContext(), p, id, in, file)
		if err != nil {
			return err
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document the caller owns, or any document for staff.
//
// @Summary Delete document
// @Tags documents
// @Param id path string true "document id"
// @Success 204
// @Failure 403 {object} errorPayload
// @Security BearerAuth
// @Router /documents/{id} [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		p, err := principal(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), p, id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DocumentHistory returns one page of a document's audit trail.
//
// @Summary Document history
// @Tags documents
// @Produce json
// @Param id path string true "document id"
// @Param page query int false "page number"
// @Success 200 {object} service.HistoryListResult
// @Security BearerAuth
// @Router /documents/{id}/history [get]
func DocumentHistory(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		res, err := svc.History(c.UserContext(), id, form.Page(c.Query("page")))
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// DownloadDocument streams the file attached to a document.
//
// @Summary Download document file
// @Tags documents
// @Produce octet-stream
// @Param id path string true "document id"
// @Success 200 {file} file
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /documents/{id}/file [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		rc, ref, err := svc.Open(c.UserContext(), id)
		if err != nil {
			return err
		}
		return sendAttachment(c, rc, ref)
	}
}
