package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kasir-system/internal/apperr"
	"kasir-system/internal/database/models"
	"kasir-system/internal/redisstore"
	"kasir-system/internal/services/cafe/store"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderItemInput struct {
	MenuID   int64
	Quantity int32
}

type PlaceOrderInput struct {
	TableNumber string
	Items       []OrderItemInput
}

func (s *Service) ListOrders(ctx context.Context, filter store.OrderFilter) ([]models.Order, int64, error) {
	if filter.Status != "" {
		if _, ok := models.ParseOrderStatus(string(filter.Status)); !ok {
			return nil, 0, apperr.Field("status", "The selected status is invalid.")
		}
	}
	orders, total, err := s.store.ListOrders(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list orders", err)
	}
	return orders, total, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Order with ID %d not found", id)
		}
		return nil, apperr.Internal("failed to get order", err)
	}
	return order, nil
}

func validateOrder(in PlaceOrderInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.TableNumber) == "" {
		fields["table_number"] = "The table number field is required."
	}
	if len(in.Items) == 0 {
		fields["items"] = "The items field is required."
	}
	for i, item := range in.Items {
		if item.MenuID <= 0 {
			fields[fmt.Sprintf("items.%d.menu_id", i)] = fmt.Sprintf("The items.%d.menu_id field is required.", i)
		}
		if item.Quantity < 1 {
			fields[fmt.Sprintf("items.%d.quantity", i)] = fmt.Sprintf("The items.%d.quantity must be at least 1.", i)
		}
	}
	if len(fields) > 0 {
		return apperr.Validation("The given data was invalid.", fields)
	}
	return nil
}

// PlaceOrder prices every line from the current menu and stores the order
// with its lines in one transaction.
func (s *Service) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (*models.Order, error) {
	if err := validateOrder(in); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(in.Items))
	seen := make(map[int64]bool, len(in.Items))
	for _, item := range in.Items {
		if !seen[item.MenuID] {
			seen[item.MenuID] = true
			ids = append(ids, item.MenuID)
		}
	}

	var order *models.Order
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		menus, err := tx.FindMenus(ctx, ids)
		if err != nil {
			return apperr.Internal("failed to load menus", err)
		}
		byID := make(map[int64]models.Menu, len(menus))
		for _, m := range menus {
			byID[m.ID] = m
		}

		missing := map[string]string{}
		for i, item := range in.Items {
			if _, ok := byID[item.MenuID]; !ok {
				missing[fmt.Sprintf("items.%d.menu_id", i)] = fmt.Sprintf("The selected items.%d.menu_id is invalid.", i)
			}
		}
		if len(missing) > 0 {
			return apperr.Validation("The given data was invalid.", missing)
		}

		total := decimal.Zero
		details := make([]models.OrderDetail, 0, len(in.Items))
		for _, item := range in.Items {
			menu := byID[item.MenuID]
			subtotal := menu.Price.Mul(decimal.NewFromInt32(item.Quantity))
			details = append(details, models.OrderDetail{
				MenuID:   menu.ID,
				Quantity: item.Quantity,
				Price:    menu.Price,
				Subtotal: subtotal,
			})
			total = total.Add(subtotal)
		}

		order = &models.Order{
			UserID:      userID,
			TableNumber: strings.TrimSpace(in.TableNumber),
			TotalPrice:  total,
			Status:      models.OrderPending,
			Details:     details,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return apperr.Internal("failed to create order", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal("failed to place order", err)
	}

	created, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.OrderPlaced()
	s.publish(ctx, redisstore.Event{
		EventType: EventOrderCreated,
		EntityID:  created.ID,
		Reference: created.TableNumber,
		UserID:    userID,
		Total:     created.TotalPrice.StringFixed(2),
		Status:    string(created.Status),
		Data:      created,
	})
	return created, nil
}

// UpdateOrderStatus moves an order forward along its lifecycle or cancels
// it. Completed and cancelled orders are closed.
func (s *Service) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	next, ok := models.ParseOrderStatus(strings.TrimSpace(status))
	if !ok {
		return nil, apperr.Field("status", "The selected status is invalid.")
	}

	if err := s.transition(ctx, id, next); err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.OrderStatusChanged(string(next))
	s.publish(ctx, redisstore.Event{
		EventType: EventOrderUpdated,
		EntityID:  order.ID,
		Reference: order.TableNumber,
		UserID:    order.UserID,
		Total:     order.TotalPrice.StringFixed(2),
		Status:    string(order.Status),
	})
	return order, nil
}

// Checkout completes an open order.
func (s *Service) Checkout(ctx context.Context, id int64) (*models.Order, error) {
	if err := s.transition(ctx, id, models.OrderCompleted); err != nil {
		return nil, err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	s.metrics.OrderStatusChanged(string(models.OrderCompleted))
	s.publish(ctx, redisstore.Event{
		EventType: EventOrderCompleted,
		EntityID:  order.ID,
		Reference: order.TableNumber,
		UserID:    order.UserID,
		Total:     order.TotalPrice.StringFixed(2),
		Status:    string(order.Status),
	})
	return order, nil
}

func (s *Service) transition(ctx context.Context, id int64, next models.OrderStatus) error {
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		order, err := tx.LockOrder(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Order with ID %d not found", id)
			}
			return apperr.Internal("failed to lock order", err)
		}

		if order.Status.Terminal() {
			return apperr.Rule(msgOrderClosed)
		}
		if !order.Status.CanTransition(next) {
			return apperr.Rule("Status pesanan tidak dapat diubah dari %s ke %s.", order.Status, next)
		}

		if err := tx.SetOrderStatus(ctx, id, next); err != nil {
			return apperr.Internal("failed to update order status", err)
		}
		return nil
	})
	if err != nil {
		return apperr.Internal("failed to update order", err)
	}
	return nil
}
