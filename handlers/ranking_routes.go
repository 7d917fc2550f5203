// handlers/ranking_routes.go
package handlers

import (
	"strconv"

	"clubquest/middleware"
	"clubquest/services"

	"github.com/gofiber/fiber/v2"
)

func SetupRankingRoutes(app *fiber.App, ranking *services.RankingService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/ranking", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		rows, err := ranking.IndividualRanking(limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rows)
	})

	secured.Get("/ranking/units", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		rows, err := ranking.UnitRanking(limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rows)
	})

	secured.Get("/ranking/me", func(c *fiber.Ctx) error {
		points, err := ranking.MemberPoints(middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"points": points})
	})
}
