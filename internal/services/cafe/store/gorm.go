package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kasir-system/internal/database"
	"kasir-system/internal/database/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// --- Menus ---

func (s *GormStore) ListMenus(ctx context.Context, filter MenuFilter) ([]models.Menu, error) {
	query := s.db.WithContext(ctx).Model(&models.Menu{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+strings.TrimSpace(filter.Search)+"%")
	}

	var menus []models.Menu
	if err := query.Order("name ASC").Find(&menus).Error; err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return menus, nil
}

func (s *GormStore) GetMenu(ctx context.Context, id int64) (*models.Menu, error) {
	var menu models.Menu
	if err := s.db.WithContext(ctx).First(&menu, id).Error; err != nil {
		return nil, err
	}
	return &menu, nil
}

func (s *GormStore) FindMenus(ctx context.Context, ids []int64) ([]models.Menu, error) {
	var menus []models.Menu
	if len(ids) == 0 {
		return menus, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&menus).Error; err != nil {
		return nil, fmt.Errorf("find menus: %w", err)
	}
	return menus, nil
}

func (s *GormStore) CreateMenu(ctx context.Context, menu *models.Menu) error {
	return s.db.WithContext(ctx).Create(menu).Error
}

func (s *GormStore) UpdateMenu(ctx context.Context, menu *models.Menu) error {
	menu.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).Model(menu).
		Select("name", "description", "price", "category", "image_url", "updated_at").
		Updates(menu).Error
}

func (s *GormStore) DeleteMenu(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Menu{}, id)
	if res.Error != nil {
		if database.IsForeignKeyViolation(res.Error) {
			return database.ErrReferenced
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// --- Orders ---

func (s *GormStore) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	var orders []models.Order
	err := query.
		Preload("Details.Menu").
		Preload("User").
		Order("created_at DESC, id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

func (s *GormStore) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Details.Menu").
		Preload("User").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *GormStore) LockOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *GormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	for i := range order.Details {
		order.Details[i].Menu = nil
	}
	order.User = nil
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *GormStore) SetOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	res := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// --- Cafes ---

func (s *GormStore) ListCafes(ctx context.Context) ([]models.Cafe, error) {
	var cafes []models.Cafe
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&cafes).Error; err != nil {
		return nil, fmt.Errorf("list cafes: %w", err)
	}
	return cafes, nil
}

func (s *GormStore) CreateCafe(ctx context.Context, cafe *models.Cafe) error {
	return s.db.WithContext(ctx).Create(cafe).Error
}

func (s *GormStore) CafeExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Cafe{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// --- Reports ---

func (s *GormStore) CompletedRevenue(ctx context.Context, since time.Time) (decimal.Decimal, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{}).Where("status = ?", models.OrderCompleted)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}

	var row struct {
		Total decimal.Decimal
		Count int64
	}
	if err := query.Select("COALESCE(SUM(total_price), 0) AS total, COUNT(*) AS count").Scan(&row).Error; err != nil {
		return decimal.Zero, 0, fmt.Errorf("sum revenue: %w", err)
	}
	return row.Total, row.Count, nil
}

func (s *GormStore) TopMenus(ctx context.Context, limit int) ([]TopMenu, error) {
	var rows []TopMenu
	err := s.db.WithContext(ctx).
		Table("order_details AS d").
		Select("d.menu_id, m.name, SUM(d.quantity) AS total_qty, SUM(d.subtotal) AS revenue").
		Joins("JOIN orders o ON o.id = d.order_id").
		Joins("JOIN menus m ON m.id = d.menu_id").
		Where("o.status = ?", models.OrderCompleted).
		Group("d.menu_id, m.name").
		Order("total_qty DESC, d.menu_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top menus: %w", err)
	}
	return rows, nil
}
