package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"archivesys/internal/auth"
	"archivesys/internal/http/middleware"
	"archivesys/internal/model"
	"archivesys/internal/service"
)

var errInvalidID = fmt.Errorf("%w: malformed uuid", service.ErrIDRequired)

// pathID returns the :id parameter if it is a UUID.
func pathID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", errInvalidID
	}
	return id, nil
}

func principal(c *fiber.Ctx) (auth.Principal, error) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		return auth.Principal{}, fiber.ErrUnauthorized
	}
	return p, nil
}

// bind parses a JSON, urlencoded or multipart body into dst.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "malformed request body")
	}
	return nil
}

// upload opens the optional "file" part of a multipart request. The returned
// closer must be called once the service is done with the reader.
func upload(c *fiber.Ctx) (*service.FileUpload, io.Closer, error) {
	fh, err := c.FormFile("file")
	if err != nil || fh == nil {
		return nil, nopCloser{}, nil
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*service.FileUpload, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, service.ErrReaderNil
	}
	ct := fh.Header.Get(fiber.HeaderContentType)
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &service.FileUpload{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: ct,
		Size:        fh.Size,
	}, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// sendAttachment streams rc to the client as a download named after ref.
func sendAttachment(c *fiber.Ctx, rc io.ReadCloser, ref *model.FileRef) error {
	ct := ref.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Set(fiber.HeaderContentType, ct)
	c.Set(fiber.HeaderContentDisposition, contentDisposition(ref.Name))
	size := -1
	if ref.Size > 0 {
		size = int(ref.Size)
	}
	return c.SendStream(rc, size)
}

func contentDisposition(name string) string {
	return fmt.Sprintf(`attachment; filename=%q; filename*=UTF-8''%s`, name, url.PathEscape(name))
}
