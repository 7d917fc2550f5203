package services

import (
	"fmt"
	"log"

	"clubquest/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// ShopService owns the item catalogue and the purchase transaction. A
// purchase debits the member, decrements stock and appends a purchase record
// as one atomic unit; any rejection leaves balances and stock untouched.
type ShopService struct {
	DB     *gorm.DB
	Ledger *ResourceLedger
	Audit  *AuditService
}

func NewShopService(db *gorm.DB, ledger *ResourceLedger, audit *AuditService) *ShopService {
	return &ShopService{DB: db, Ledger: ledger, Audit: audit}
}

// ShopItemInput carries user-supplied item fields.
type ShopItemInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CostCoins   int64  `json:"cost_coins"`
	CostGems    int64  `json:"cost_gems"`
	Stock       int64  `json:"stock"`
	ImageURL    string `json:"image_url"`
}

func (in *ShopItemInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("item name is required: %w", ErrInvalidInput)
	}
	if in.CostCoins < 0 || in.CostGems < 0 || in.Stock < 0 {
		return fmt.Errorf("cost and stock must be non-negative: %w", ErrInvalidInput)
	}
	return nil
}

// CreateItem adds an item to the catalogue.
func (s *ShopService) CreateItem(actorID string, in ShopItemInput) (*models.ShopItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	item := models.ShopItem{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Slug:        slug.Make(in.Name),
		Description: in.Description,
		CostCoins:   in.CostCoins,
		CostGems:    in.CostGems,
		Stock:       in.Stock,
		ImageURL:    in.ImageURL,
	}
	if err := s.DB.Create(&item).Error; err != nil {
		return nil, err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Created shop item %s", item.Name), "CREATE", "ShopItem", item.ID,
		map[string]interface{}{"cost_coins": item.CostCoins, "cost_gems": item.CostGems, "stock": item.Stock})
	return &item, nil
}

// UpdateItem edits an item.
func (s *ShopService) UpdateItem(actorID, itemID string, in ShopItemInput) (*models.ShopItem, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var item models.ShopItem
	if err := s.DB.Where("id = ?", itemID).First(&item).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("shop item %s: %w", itemID, ErrNotFound)
		}
		return nil, err
	}

	item.Name = in.Name
	item.Slug = slug.Make(in.Name)
	item.Description = in.Description
	item.CostCoins = in.CostCoins
	item.CostGems = in.CostGems
	item.Stock = in.Stock
	if in.ImageURL != "" {
		item.ImageURL = in.ImageURL
	}
	if err := s.DB.Save(&item).Error; err != nil {
		return nil, err
	}

	s.Audit.Record(actorID, fmt.Sprintf("Updated shop item %s", item.Name), "UPDATE", "ShopItem", item.ID, nil)
	return &item, nil
}

// DeleteItem removes an item from the catalogue. Purchase history rows stay.
func (s *ShopService) DeleteItem(actorID, itemID string) error {
	res := s.DB.Where("id = ?", itemID).Delete(&models.ShopItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("shop item %s: %w", itemID, ErrNotFound)
	}

	s.Audit.Record(actorID, fmt.Sprintf("Deleted shop item %s", itemID), "DELETE", "ShopItem", itemID, nil)
	return nil
}

// ListItems returns the catalogue ordered by name.
func (s *ShopService) ListItems() ([]models.ShopItem, error) {
	var items []models.ShopItem
	if err := s.DB.Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Purchase buys quantity of an item for a member. Price is the item's unit
// cost times quantity, restricted to the requested currencies (a currency not
// in use contributes 0). The member and item rows are locked for the duration
// so concurrent purchases serialize; the debit, the stock decrement and the
// purchase record commit together or not at all.
func (s *ShopService) Purchase(actorID, memberID, itemID string, quantity int64, useCoins, useGems bool) (*models.Purchase, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", ErrInvalidInput)
	}

	var purchase models.Purchase
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.ShopItem
		if err := lockForUpdate(tx).Where("id = ?", itemID).First(&item).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("shop item %s: %w", itemID, ErrNotFound)
			}
			return err
		}

		if item.Stock < quantity {
			return ErrInsufficientStock
		}

		var totalCoins, totalGems int64
		if useCoins {
			totalCoins = item.CostCoins * quantity
		}
		if useGems {
			totalGems = item.CostGems * quantity
		}

		// Debit locks the member row and rejects overdrafts.
		if _, err := s.Ledger.Debit(tx, memberID, totalCoins, totalGems); err != nil {
			return err
		}

		if err := tx.Model(&models.ShopItem{}).Where("id = ?", item.ID).
			Update("stock", gorm.Expr("stock - ?", quantity)).Error; err != nil {
			return err
		}

		purchase = models.Purchase{
			ID:         uuid.NewString(),
			MemberID:   memberID,
			ItemID:     item.ID,
			Quantity:   quantity,
			TotalCoins: totalCoins,
			TotalGems:  totalGems,
		}
		return tx.Create(&purchase).Error
	})
	if err != nil {
		return nil, err
	}

	s.Audit.Record(actorID,
		fmt.Sprintf("Member %s bought %d of item %s", memberID, quantity, itemID),
		"CREATE", "Purchase", purchase.ID,
		map[string]interface{}{"total_coins": purchase.TotalCoins, "total_gems": purchase.TotalGems})

	log.Printf("🛒 [SHOP] member=%s item=%s qty=%d coins=%d gems=%d",
		memberID, itemID, quantity, purchase.TotalCoins, purchase.TotalGems)
	return &purchase, nil
}

// PurchaseRow joins a purchase with its item for history listings.
type PurchaseRow struct {
	models.Purchase
	ItemName string `json:"item_name"`
	ImageURL string `json:"image_url"`
}

// PurchaseHistory lists a member's purchases, newest first.
func (s *ShopService) PurchaseHistory(memberID string) ([]PurchaseRow, error) {
	var rows []PurchaseRow
	err := s.DB.Model(&models.Purchase{}).
		Select("purchases.*, shop_items.name AS item_name, shop_items.image_url").
		Joins("JOIN shop_items ON shop_items.id = purchases.item_id").
		Where("purchases.member_id = ?", memberID).
		Order("purchases.created_at DESC").
		Scan(&rows).Error
	return rows, err
}
