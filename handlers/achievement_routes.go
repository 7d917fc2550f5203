// handlers/achievement_routes.go
package handlers

import (
	"clubquest/middleware"
	"clubquest/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAchievementRoutes(app *fiber.App, achievements *services.AchievementService, ranks *services.RankService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/achievements", func(c *fiber.Ctx) error {
		list, err := achievements.ListAchievements()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	secured.Get("/achievements/mine", func(c *fiber.Ctx) error {
		rows, err := achievements.ListMemberAchievements(middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rows)
	})

	secured.Get("/ranks", func(c *fiber.Ctx) error {
		list, err := ranks.ListRanks()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	admin.Post("/achievements", func(c *fiber.Ctx) error {
		var in services.AchievementInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		ach, err := achievements.CreateAchievement(middleware.UserID(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(ach)
	})

	admin.Post("/achievements/grant", func(c *fiber.Ctx) error {
		var req struct {
			AchievementID string `json:"achievement_id"`
			MemberID      string `json:"member_id"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := achievements.Grant(middleware.UserID(c), req.AchievementID, req.MemberID); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "achievement granted"})
	})

	admin.Get("/achievements/member/:id", func(c *fiber.Ctx) error {
		rows, err := achievements.ListMemberAchievements(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rows)
	})

	admin.Post("/ranks", func(c *fiber.Ctx) error {
		var in services.RankInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		rank, err := ranks.CreateRank(middleware.UserID(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rank)
	})
}
