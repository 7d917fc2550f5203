// handlers/season_routes.go
package handlers

import (
	"time"

	"clubquest/middleware"
	"clubquest/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSeasonRoutes(app *fiber.App, seasons *services.SeasonService) {
	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	admin.Get("/seasons", func(c *fiber.Ctx) error {
		list, err := seasons.ListSeasons()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	admin.Post("/seasons", func(c *fiber.Ctx) error {
		var req struct {
			Name     string     `json:"name"`
			StartsAt *time.Time `json:"starts_at"`
			EndsAt   *time.Time `json:"ends_at"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		season, err := seasons.CreateSeason(middleware.UserID(c), req.Name, req.StartsAt, req.EndsAt)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(season)
	})

	admin.Post("/seasons/:id/points", func(c *fiber.Ctx) error {
		var req struct {
			MemberID string `json:"member_id"`
			Points   int64  `json:"points"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if err := seasons.AddSeasonPoints(middleware.UserID(c), c.Params("id"), req.MemberID, req.Points); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "points granted"})
	})

	admin.Post("/seasons/:id/rewards", func(c *fiber.Ctx) error {
		var req struct {
			Description string `json:"description"`
			Kind        string `json:"kind"`
			Value       int64  `json:"value"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		reward, err := seasons.CreateReward(middleware.UserID(c), c.Params("id"), req.Description, req.Kind, req.Value)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(reward)
	})

	admin.Get("/seasons/:id/rewards", func(c *fiber.Ctx) error {
		rewards, err := seasons.ListRewards(c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rewards)
	})

	// Closing is terminal and not retryable; a second call returns 409.
	admin.Post("/seasons/:id/close", func(c *fiber.Ctx) error {
		if err := seasons.CloseSeason(middleware.UserID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "season closed and rankings saved"})
	})
}
