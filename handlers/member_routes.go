// handlers/member_routes.go
package handlers

import (
	"strconv"

	"clubquest/middleware"
	"clubquest/models"
	"clubquest/services"
	"clubquest/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupMemberRoutes(app *fiber.App, members *services.MemberService, ranks *services.RankService, audit *services.AuditService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/members/me", func(c *fiber.Ctx) error {
		member, err := members.Get(middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		level, within, next := services.LevelProgress(member.XP)
		rank, err := ranks.RankForLevel(level)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"member":          member,
			"level":           level,
			"rank":            rank,
			"xp_within_level": within,
			"next_threshold":  next,
		})
	})

	secured.Post("/members/me/avatar", func(c *fiber.Ctx) error {
		avatar, err := c.FormFile("avatar")
		if err != nil || avatar.Size == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
		}
		url, err := utils.UploadImage(avatar, "avatars")
		if err != nil {
			return fail(c, err)
		}
		if err := members.SetAvatarURL(middleware.UserID(c), url); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"avatar_url": url})
	})

	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	admin.Get("/members", func(c *fiber.Ctx) error {
		list, err := members.List()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(list)
	})

	admin.Post("/members", func(c *fiber.Ctx) error {
		var req struct {
			Name  string            `json:"name"`
			Email string            `json:"email"`
			Role  models.MemberRole `json:"role"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		member, err := members.Register(middleware.UserID(c), req.Name, req.Email, req.Role)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(member)
	})

	admin.Delete("/members/:id", func(c *fiber.Ctx) error {
		if err := members.Deactivate(middleware.UserID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "member deactivated"})
	})

	admin.Post("/members/:id/resources", func(c *fiber.Ctx) error {
		var req struct {
			XP    int64 `json:"xp"`
			Coins int64 `json:"coins"`
			Gems  int64 `json:"gems"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		member, err := members.GrantResources(middleware.UserID(c), c.Params("id"), req.XP, req.Coins, req.Gems)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{
			"message": "resources granted",
			"member":  member,
		})
	})

	admin.Get("/audit", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		entries, err := audit.ListAuditLog(c.Query("actor"), limit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(entries)
	})
}
