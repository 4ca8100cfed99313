package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderReady      OrderStatus = "ready"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderFlow is the forward chain; cancelled sits outside it.
var orderFlow = map[OrderStatus]int{
	OrderPending:    0,
	OrderProcessing: 1,
	OrderReady:      2,
	OrderCompleted:  3,
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	if st == OrderCancelled {
		return st, true
	}
	_, ok := orderFlow[st]
	return st, ok
}

func (s OrderStatus) Terminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// CanTransition reports whether an order may move from s to next: forward
// along pending, processing, ready, completed, or to cancelled, and never
// out of a terminal state.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == OrderCancelled {
		return true
	}
	from, ok := orderFlow[s]
	if !ok {
		return false
	}
	to, ok := orderFlow[next]
	return ok && to > from
}

type Menu struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Category    string          `gorm:"type:varchar(64);index" json:"category"`
	ImageURL    string          `gorm:"type:varchar(255)" json:"image_url"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type Order struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64           `gorm:"index;not null" json:"user_id"`
	User        *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TableNumber string          `gorm:"type:varchar(32);not null" json:"table_number"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_price"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Details []OrderDetail `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"details"`
}

// OrderDetail snapshots the menu price at order time.
type OrderDetail struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   int64           `gorm:"index;not null" json:"order_id"`
	MenuID    int64           `gorm:"index;not null" json:"menu_id"`
	Menu      *Menu           `gorm:"foreignKey:MenuID" json:"menu,omitempty"`
	Quantity  int32           `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}
