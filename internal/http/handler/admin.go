package handler

import (
	"github.com/gofiber/fiber/v2"

	"archivesys/internal/http/form"
	"archivesys/internal/service"
)

// @Summary List users
// @Tags admin
// @Produce json
// @Param page query int false "page number"
// @Success 200 {object} service.UserListResult
// @Security BearerAuth
// @Router /admin/users [get]
func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.List(c.UserContext(), form.Page(c.Query("page")))
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// @Summary Get user
// @Tags admin
// @Produce json
// @Param id path string true "user id"
// @Success 200 {object} model.User
// @Security BearerAuth
// @Router /admin/users/{id} [get]
func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}

// @Summary Create user
// @Tags admin
// @Accept json
// @Produce json
// @Success 201 {object} model.User
// @Security BearerAuth
// @Router /admin/users [post]
func CreateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f form.User
		if err := bind(c, &f); err != nil {
			return err
		}
		in, err := f.Input()
		if err != nil {
			return err
		}
		u, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// UpdateUser edits an account and its profile; an empty password keeps the current one.
//
// @Summary Update user
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "user id"
// @Success 200 {object} model.User
// @Security BearerAuth
// @Router /admin/users/{id} [put]
func UpdateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		var f form.User
		if err := bind(c, &f); err != nil {
			return err
		}
		in, err := f.Input()
		if err != nil {
			return err
		}
		u, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}

// @Summary Delete user
// @Tags admin
// @Param id path string true "user id"
// @Success 204
// @Failure 403 {object} errorPayload
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func DeleteUser(svc service.UserService) fiber.Handler {
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

// AuditTrail is the read-only view of every history record.
//
// @Summary Audit trail
// @Tags admin
// @Produce json
// @Param action query string false "history action"
// @Param user query string false "user id"
// @Param document query string false "document id"
// @Param query query string false "substring of title, username or details"
// @Param start_date query string false "from (YYYY-MM-DD)"
// @Param end_date query string false "to, inclusive (YYYY-MM-DD)"
// @Param page query int false "page number"
// @Success 200 {object} service.HistoryListResult
// @Security BearerAuth
// @Router /admin/history [get]
func AuditTrail(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q form.HistorySearch
		_ = c.QueryParser(&q)

		res, err := svc.Audit(c.UserContext(), q.Filter(), form.Page(q.Page))
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}
