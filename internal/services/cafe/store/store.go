// Package store persists the cafe catalog, orders and outlets.
package store

import (
	"context"
	"time"

	"kasir-system/internal/database/models"

	"github.com/shopspring/decimal"
)

type MenuFilter struct {
	Category string
	Search   string
}

type OrderFilter struct {
	Status models.OrderStatus
	UserID int64
	Offset int
	Limit  int
}

type TopMenu struct {
	MenuID   int64           `json:"menu_id"`
	Name     string          `json:"name"`
	TotalQty int64           `json:"total_qty"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// Store is the cafe unit of work. Lookups of unknown ids return
// gorm.ErrRecordNotFound; deleting a menu that order lines still reference
// returns database.ErrReferenced.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	ListMenus(ctx context.Context, filter MenuFilter) ([]models.Menu, error)
	GetMenu(ctx context.Context, id int64) (*models.Menu, error)
	FindMenus(ctx context.Context, ids []int64) ([]models.Menu, error)
	CreateMenu(ctx context.Context, menu *models.Menu) error
	UpdateMenu(ctx context.Context, menu *models.Menu) error
	DeleteMenu(ctx context.Context, id int64) error

	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error)
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	LockOrder(ctx context.Context, id int64) (*models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	SetOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error

	ListCafes(ctx context.Context) ([]models.Cafe, error)
	CreateCafe(ctx context.Context, cafe *models.Cafe) error
	CafeExists(ctx context.Context, id int64) (bool, error)

	// CompletedRevenue sums completed orders created at or after since; a
	// zero since means all time.
	CompletedRevenue(ctx context.Context, since time.Time) (decimal.Decimal, int64, error)
	TopMenus(ctx context.Context, limit int) ([]TopMenu, error)
}
