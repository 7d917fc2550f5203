// handlers/mission_routes.go
package handlers

import (
	"clubquest/middleware"
	"clubquest/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMissionRoutes(app *fiber.App, missions *services.MissionService, validation *services.ValidationService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	// Member-facing: the missions currently assigned to the caller.
	secured.Get("/missions/mine", func(c *fiber.Ctx) error {
		rows, err := missions.ListMemberMissions(middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rows)
	})

	// Validation is open to any authenticated member; the engine enforces
	// assignment and leader rules itself.
	secured.Post("/missions/:id/validate", func(c *fiber.Ctx) error {
		var req struct {
			MemberID string `json:"member_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		validatorID := middleware.UserID(c)
		memberID := req.MemberID
		if memberID == "" {
			memberID = validatorID
		}

		result, err := validation.Validate(c.Params("id"), memberID, validatorID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "mission validated and rewards granted",
			"result":  result,
		})
	})

	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	admin.Get("/missions", func(c *fiber.Ctx) error {
		list, err := missions.ListMissions(c.Query("type"), c.Query("season"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	admin.Post("/missions", func(c *fiber.Ctx) error {
		var in services.MissionInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		mission, err := missions.CreateMission(middleware.UserID(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(mission)
	})

	admin.Put("/missions/:id", func(c *fiber.Ctx) error {
		var in services.MissionInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		mission, err := missions.UpdateMission(middleware.UserID(c), c.Params("id"), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(mission)
	})

	admin.Delete("/missions/:id", func(c *fiber.Ctx) error {
		if err := missions.DeleteMission(middleware.UserID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "mission deleted"})
	})

	admin.Post("/missions/:id/assign", func(c *fiber.Ctx) error {
		var req struct {
			MemberID string `json:"member_id"`
			UnitID   string `json:"unit_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.MemberID == "" && req.UnitID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "member_id or unit_id is required"})
		}

		actorID := middleware.UserID(c)
		if req.MemberID != "" {
			if err := missions.Assign(actorID, c.Params("id"), req.MemberID); err != nil {
				return fail(c, err)
			}
		}
		if req.UnitID != "" {
			if err := missions.AssignUnit(actorID, c.Params("id"), req.UnitID); err != nil {
				return fail(c, err)
			}
		}
		return c.JSON(fiber.Map{"message": "mission assigned"})
	})
}
