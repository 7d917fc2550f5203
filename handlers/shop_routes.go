// handlers/shop_routes.go
package handlers

import (
	"log"

	"clubquest/middleware"
	"clubquest/services"
	"clubquest/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupShopRoutes(app *fiber.App, shop *services.ShopService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/shop/items", func(c *fiber.Ctx) error {
		items, err := shop.ListItems()
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})

	secured.Post("/shop/purchase", func(c *fiber.Ctx) error {
		var req struct {
			ItemID   string `json:"item_id"`
			Quantity int64  `json:"quantity"`
			UseCoins *bool  `json:"use_coins"`
			UseGems  *bool  `json:"use_gems"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}

		// Both currencies apply unless explicitly opted out.
		useCoins := req.UseCoins == nil || *req.UseCoins
		useGems := req.UseGems == nil || *req.UseGems

		memberID := middleware.UserID(c)
		purchase, err := shop.Purchase(memberID, memberID, req.ItemID, req.Quantity, useCoins, useGems)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "purchase completed",
			"purchase": purchase,
		})
	})

	secured.Get("/shop/purchases", func(c *fiber.Ctx) error {
		rows, err := shop.PurchaseHistory(middleware.UserID(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(rows)
	})

	admin := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireAdmin())

	admin.Post("/shop/items", func(c *fiber.Ctx) error {
		in := services.ShopItemInput{
			Name:        c.FormValue("name"),
			Description: c.FormValue("description"),
		}
		var err error
		if in.CostCoins, err = formInt(c, "cost_coins"); err != nil {
			return fail(c, err)
		}
		if in.CostGems, err = formInt(c, "cost_gems"); err != nil {
			return fail(c, err)
		}
		if in.Stock, err = formInt(c, "stock"); err != nil {
			return fail(c, err)
		}

		if image, err := c.FormFile("image"); err == nil && image.Size > 0 {
			url, err := utils.UploadImage(image, "items")
			if err != nil {
				log.Printf("⚠️ [SHOP] image upload failed, creating item without image: %v", err)
			} else {
				in.ImageURL = url
			}
		}

		item, err := shop.CreateItem(middleware.UserID(c), in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	})

	admin.Put("/shop/items/:id", func(c *fiber.Ctx) error {
		in := services.ShopItemInput{
			Name:        c.FormValue("name"),
			Description: c.FormValue("description"),
		}
		var err error
		if in.CostCoins, err = formInt(c, "cost_coins"); err != nil {
			return fail(c, err)
		}
		if in.CostGems, err = formInt(c, "cost_gems"); err != nil {
			return fail(c, err)
		}
		if in.Stock, err = formInt(c, "stock"); err != nil {
			return fail(c, err)
		}

		if image, err := c.FormFile("image"); err == nil && image.Size > 0 {
			if url, err := utils.UploadImage(image, "items"); err == nil {
				in.ImageURL = url
			}
		}

		item, err := shop.UpdateItem(middleware.UserID(c), c.Params("id"), in)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(item)
	})

	admin.Delete("/shop/items/:id", func(c *fiber.Ctx) error {
		if err := shop.DeleteItem(middleware.UserID(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "item deleted"})
	})

	// Admin can purchase on behalf of a member (in-person shop desk).
	admin.Post("/shop/purchase", func(c *fiber.Ctx) error {
		var req struct {
			MemberID string `json:"member_id"`
			ItemID   string `json:"item_id"`
			Quantity int64  `json:"quantity"`
			UseCoins *bool  `json:"use_coins"`
			UseGems  *bool  `json:"use_gems"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.MemberID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "member_id is required"})
		}

		useCoins := req.UseCoins == nil || *req.UseCoins
		useGems := req.UseGems == nil || *req.UseGems

		purchase, err := shop.Purchase(middleware.UserID(c), req.MemberID, req.ItemID, req.Quantity, useCoins, useGems)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(purchase)
	})
}
