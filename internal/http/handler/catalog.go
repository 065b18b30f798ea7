package handler

import (
	"github.com/gofiber/fiber/v2"

	"archivesys/internal/http/form"
	"archivesys/internal/service"
)

// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {array} model.DocumentCategory
// @Security BearerAuth
// @Router /categories [get]
func ListCategories(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListCategories(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// @Summary Get category
// @Tags categories
// @Produce json
// @Param id path string true "category id"
// @Success 200 {object} model.DocumentCategory
// @Security BearerAuth
// @Router /categories/{id} [get]
func GetCategory(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		cat, err := svc.GetCategory(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(cat)
	}
}

// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Success 201 {object} model.DocumentCategory
// @Security BearerAuth
// @Router /categories [post]
func CreateCategory(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f form.Category
		if err := bind(c, &f); err != nil {
			return err
		}
		in, err := f.Input()
		if err != nil {
			return err
		}
		cat, err := svc.CreateCategory(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(cat)
	}
}

// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "category id"
// @Success 200 {object} model.DocumentCategory
// @Security BearerAuth
// @Router /categories/{id} [put]
func UpdateCategory(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		var f form.Category
		if err := bind(c, &f); err != nil {
			return err
		}
		in, err := f.Input()
		if err != nil {
			return err
		}
		cat, err := svc.UpdateCategory(c.UserContext(), id, in)
		if err != nil {
			return err
		}
		return c.JSON(cat)
	}
}

// DeleteCategory is staff only; documents in the category are kept.
//
// @Summary Delete category
// @Tags categories
// @Param id path string true "category id"
// @Success 204
// @Failure 403 {object} errorPayload
// @Security BearerAuth
// @Router /categories/{id} [delete]
func DeleteCategory(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		p, err := principal(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteCategory(c.UserContext(), p, id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// @Summary List storage locations
// @Tags locations
// @Produce json
// @Success 200 {array} model.StorageLocation
// @Security BearerAuth
// @Router /locations [get]
func ListLocations(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListLocations(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// @Summary Get storage location
// @Tags locations
// @Produce json
// @Param id path string true "location id"
// @Success 200 {object} model.StorageLocation
// @Security BearerAuth
// @Router /locations/{id} [get]
func GetLocation(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		loc, err := svc.GetLocation(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(loc)
	}
}

// @Summary Create storage location
// @Tags locations
// @Accept json
// @Produce json
// @Success 201 {object} model.StorageLocation
// @Security BearerAuth
// @Router /locations [post]
func CreateLocation(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f form.Location
		if err := bind(c, &f); err != nil {
			return err
		}
		in, err := f.Input()
		if err != nil {
			return err
		}
		loc, err := svc.CreateLocation(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(loc)
	}
}

// @Summary Update storage location
// @Tags locations
// @Accept json
// @Produce json
// @Param id path string true "location id"
// @Success 200 {object} model.StorageLocation
// @Security BearerAuth
// @Router /locations/{id} [put]
func UpdateLocation(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		var f form.Location
		if err := bind(c, &f); err != nil {
			return err
		}
		in, err := f.Input()
		if err != nil {
			return err
		}
		loc, err := svc.UpdateLocation(c.UserContext(), id, in)
		if err != nil {
			return err
		}
		return c.JSON(loc)
	}
}

// @Summary Delete storage location
// @Tags locations
// @Param id path string true "location id"
// @Success 204
// @Failure 403 {object} errorPayload
// @Security BearerAuth
// @Router /locations/{id} [delete]
func DeleteLocation(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return err
		}
		p, err := principal(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteLocation(c.UserContext(), p, id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
