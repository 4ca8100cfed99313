// Package handler exposes the cafe service over gin.
package handler

import (
	"net/http"

	"kasir-system/internal/api"
	"kasir-system/internal/database/models"
	"kasir-system/internal/middleware"
	"kasir-system/internal/services/cafe/service"
	"kasir-system/internal/services/cafe/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CafeHTTPHandler struct {
	svc *service.Service
}

func NewCafeHTTPHandler(svc *service.Service) *CafeHTTPHandler {
	return &CafeHTTPHandler{svc: svc}
}

type MenuRequest struct {
	Name        string           `json:"name" binding:"required,max=255"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Category    string           `json:"category" binding:"max=64"`
	ImageURL    string           `json:"image_url" binding:"max=255"`
}

type UpdateMenuRequest struct {
	Name        *string          `json:"name,omitempty" binding:"omitempty,max=255"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *string          `json:"category,omitempty" binding:"omitempty,max=64"`
	ImageURL    *string          `json:"image_url,omitempty" binding:"omitempty,max=255"`
}

type OrderItemRequest struct {
	MenuID   int64 `json:"menu_id" binding:"required"`
	Quantity int32 `json:"quantity" binding:"required,min=1"`
}

type PlaceOrderRequest struct {
	TableNumber string             `json:"table_number" binding:"required,max=32"`
	Items       []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type CafeRequest struct {
	Name    string `json:"name" binding:"required,max=255"`
	Address string `json:"address"`
	Phone   string `json:"phone" binding:"max=32"`
}

type ListMenusQuery struct {
	Category string `form:"category"`
	Search   string `form:"search"`
}

type ListOrdersQuery struct {
	api.Pagination
	Status string `form:"status"`
}

// RegisterRoutes mounts the cafe API on an authenticated group and applies
// the per-route role gates.
func (h *CafeHTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	catalogAdmin := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperadmin)
	cashier := middleware.RequireRoles(models.RoleKasir, models.RoleAdmin, models.RoleSuperadmin)
	kitchen := middleware.RequireRoles(models.RoleChef, models.RoleAdmin, models.RoleSuperadmin)
	reporting := middleware.RequireRoles(models.RoleOwner, models.RoleAdmin, models.RoleSuperadmin)
	superadmin := middleware.RequireRoles(models.RoleSuperadmin)

	menus := rg.Group("/menus")
	{
		menus.GET("", h.ListMenus)
		menus.GET("/:id", h.GetMenu)
		menus.POST("", catalogAdmin, h.CreateMenu)
		menus.PUT("/:id", catalogAdmin, h.UpdateMenu)
		menus.DELETE("/:id", catalogAdmin, h.DeleteMenu)
	}

	orders := rg.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("", cashier, h.PlaceOrder)
		orders.PATCH("/:id/status", kitchen, h.UpdateOrderStatus)
		orders.POST("/:id/checkout", cashier, h.Checkout)
	}

	rg.GET("/reports", reporting, h.Report)

	cafes := rg.Group("/cafes", superadmin)
	{
		cafes.GET("", h.ListCafes)
		cafes.POST("", h.CreateCafe)
	}
}

// --- Menus ---

func (h *CafeHTTPHandler) ListMenus(c *gin.Context) {
	var q ListMenusQuery
	if err := api.BindQuery(c, &q); err != nil {
		api.Fail(c, err)
		return
	}
	menus, err := h.svc.ListMenus(c.Request.Context(), store.MenuFilter{Category: q.Category, Search: q.Search})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Menus retrieved successfully", menus)
}

func (h *CafeHTTPHandler) GetMenu(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	menu, err := h.svc.GetMenu(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Menu retrieved successfully", menu)
}

func (h *CafeHTTPHandler) CreateMenu(c *gin.Context) {
	var req MenuRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}
	menu, err := h.svc.CreateMenu(c.Request.Context(), service.MenuInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "Menu berhasil ditambahkan", menu)
}

func (h *CafeHTTPHandler) UpdateMenu(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	var req UpdateMenuRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}
	menu, err := h.svc.UpdateMenu(c.Request.Context(), id, service.UpdateMenuInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Menu berhasil diperbarui", menu)
}

func (h *CafeHTTPHandler) DeleteMenu(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	if err := h.svc.DeleteMenu(c.Request.Context(), id); err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Menu berhasil dihapus", nil)
}

// --- Orders ---

func (h *CafeHTTPHandler) ListOrders(c *gin.Context) {
	var q ListOrdersQuery
	if err := api.BindQuery(c, &q); err != nil {
		api.Fail(c, err)
		return
	}
	page := q.Pagination.Normalize()

	orders, total, err := h.svc.ListOrders(c.Request.Context(), store.OrderFilter{
		Status: models.OrderStatus(q.Status),
		Offset: page.Offset(),
		Limit:  page.PageSize,
	})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.WithMeta(c, "Orders retrieved successfully", orders, page.Meta(total))
}

func (h *CafeHTTPHandler) GetOrder(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	order, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Order retrieved successfully", order)
}

func (h *CafeHTTPHandler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		api.Abort(c, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	items := make([]service.OrderItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.OrderItemInput{MenuID: it.MenuID, Quantity: it.Quantity}
	}

	order, err := h.svc.PlaceOrder(c.Request.Context(), claims.UserId, service.PlaceOrderInput{
		TableNumber: req.TableNumber,
		Items:       items,
	})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "Pesanan berhasil dibuat", order)
}

func (h *CafeHTTPHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	var req UpdateStatusRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}
	order, err := h.svc.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Status pesanan berhasil diperbarui", order)
}

func (h *CafeHTTPHandler) Checkout(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	order, err := h.svc.Checkout(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Pembayaran berhasil, pesanan selesai", order)
}

// --- Reports & outlets ---

func (h *CafeHTTPHandler) Report(c *gin.Context) {
	report, err := h.svc.Report(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Report generated successfully", report)
}

func (h *CafeHTTPHandler) ListCafes(c *gin.Context) {
	cafes, err := h.svc.ListCafes(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Cafes retrieved successfully", cafes)
}

func (h *CafeHTTPHandler) CreateCafe(c *gin.Context) {
	var req CafeRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}
	cafe, err := h.svc.CreateCafe(c.Request.Context(), service.CafeInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "Cafe berhasil ditambahkan", cafe)
}
