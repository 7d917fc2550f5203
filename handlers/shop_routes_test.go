package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"clubquest/models"
	"clubquest/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newShopApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Member{},
		&models.ShopItem{},
		&models.Purchase{},
		&models.AuditLog{},
	))

	audit := services.NewAuditService(db, nil)
	shop := services.NewShopService(db, services.NewResourceLedger(db), audit)

	app := fiber.New()
	SetupShopRoutes(app, shop)
	return app, db
}

func itemFormRequest(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	for field, value := range fields {
		require.NoError(t, form.WriteField(field, value))
	}
	require.NoError(t, form.Close())
	return body, form.FormDataContentType()
}

func TestCreateItemRejectsMalformedNumbers(t *testing.T) {
	app, db := newShopApp(t)

	for _, field := range []string{"cost_coins", "cost_gems", "stock"} {
		body, contentType := itemFormRequest(t, map[string]string{
			"name": "Lantern",
			field:  "lots",
		})
		req := httptest.NewRequest("POST", "/s/admin/shop/items", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-User-ID", "admin-1")
		req.Header.Set("X-User-Roles", "administrator")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "field %s", field)
	}

	// Nothing slipped through as a free item.
	var count int64
	require.NoError(t, db.Model(&models.ShopItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateItemParsesFormNumbers(t *testing.T) {
	app, _ := newShopApp(t)

	body, contentType := itemFormRequest(t, map[string]string{
		"name":       "Mess Kit",
		"cost_coins": "45",
		"stock":      "12",
	})
	req := httptest.NewRequest("POST", "/s/admin/shop/items", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "admin-1")
	req.Header.Set("X-User-Roles", "administrator")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var item models.ShopItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))
	assert.Equal(t, int64(45), item.CostCoins)
	assert.Equal(t, int64(12), item.Stock)
}
