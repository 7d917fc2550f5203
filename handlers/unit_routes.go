// handlers/unit_routes.go
package handlers

import (
	"clubquest/middleware"
	"clubquest/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUnitRoutes(app *fiber.App, units *services.UnitService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/units", func(c *fiber.Ctx) error {
		list, err := units.ListUnits()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	admin.Post("/units", func(c *fiber.Ctx) error {
		var in services.UnitInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		unit, err := units.CreateUnit(middleware.UserID(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(unit)
	})

	admin.Put("/units/:id", func(c *fiber.Ctx) error {
		var in services.UnitInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		unit, err := units.UpdateUnit(middleware.UserID(c), c.Params("id"), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(unit)
	})

	admin.Delete("/units/:id", func(c *fiber.Ctx) error {
		if err := units.Deactivate(middleware.UserID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "unit deactivated"})
	})
}
