package handler

import (
	"github.com/gofiber/fiber/v2"

	"archivesys/internal/http/form"
	"archivesys/internal/model"
	"archivesys/internal/service"
)

// @Summary List reports
// @Tags reports
// @Produce json
// @Param page query int false "page number"
// @Success 200 {object} service.ReportListResult
// @Security BearerAuth
// @Router /reports [get]
func ListReports(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext(), form.Page(c.Query("page")))
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// @Summary Get report
// @Tags reports
// @Produce json
// @Param id path string true "report id"
// @Success 200 {object} service.ReportDetail
// @Security BearerAuth
// @Router /reports/{id} [get]
func GetReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		rep, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(rep)
	}
}

// CreateReport generates the report file before answering.
//
// @Summary Generate report
// @Tags reports
// @Accept json
// @Produce json
// @Success 201 {object} model.Report
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Security BearerAuth
// @Router /reports [post]
func CreateReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := principal(c)
		if err != nil {
			return err
		}
		var f form.Report
		if err := bind(c, &f); err != nil {
			return err
		}
		in, err := f.Input()
		if err != nil {
			return err
		}
		rep, err := svc.Create(c.UserContext(), p, in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(rep)
	}
}

// @Summary Delete report
// @Tags reports
// @Param id path string true "report id"
// @Success 204
// @Failure 403 {object} errorPayload
// @Security BearerAuth
// @Router /reports/{id} [delete]
func DeleteReport(svc service.ReportService) fiber.Handler {
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

// @Summary Download report file
// @Tags reports
// @Produce octet-stream
// @Param id path string true "report id"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /reports/{id}/file [get]
func DownloadReport(svc service.ReportService) fiber.Handler {
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

// ExportDocuments sends every document as a csv or xlsx attachment.
//
// @Summary Export all documents
// @Tags reports
// @Produce octet-stream
// @Success 200 {file} file
// @Security BearerAuth
// @Router /reports/export-csv [get]
// @Router /reports/export-xlsx [get]
func ExportDocuments(svc service.ReportService, format model.ReportFormat) fiber.Handler {
	return func(c *fiber.Ctx) error {
		out, err := svc.Export(c.UserContext(), format)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, out.ContentType)
		c.Set(fiber.HeaderContentDisposition, contentDisposition(out.Name))
		return c.Send(out.Body)
	}
}
