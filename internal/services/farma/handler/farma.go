// Package handler exposes the pharmacy service over gin.
package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"kasir-system/internal/api"
	"kasir-system/internal/apperr"
	"kasir-system/internal/database/models"
	"kasir-system/internal/middleware"
	"kasir-system/internal/services/farma/service"
	"kasir-system/internal/services/farma/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type FarmaHTTPHandler struct {
	svc *service.Service
	now func() time.Time
}

func NewFarmaHTTPHandler(svc *service.Service) *FarmaHTTPHandler {
	return &FarmaHTTPHandler{svc: svc, now: time.Now}
}

type ObatRequest struct {
	KodeObat      string           `json:"kode_obat" binding:"required,max=64"`
	NamaObat      string           `json:"nama_obat" binding:"required,max=255"`
	Kategori      string           `json:"kategori" binding:"required,max=64"`
	Satuan        string           `json:"satuan" binding:"max=32"`
	Stok          int32            `json:"stok" binding:"min=0"`
	StokMinimal   int32            `json:"stok_minimal" binding:"min=0"`
	HargaBeli     *decimal.Decimal `json:"harga_beli" binding:"required"`
	HargaJual     *decimal.Decimal `json:"harga_jual" binding:"required"`
	TglKadaluarsa string           `json:"tgl_kadaluarsa" binding:"required"`
}

// UpdateObatRequest ignores stok; stock moves through penjualan and
// penerimaan only.
type UpdateObatRequest struct {
	KodeObat      *string          `json:"kode_obat,omitempty" binding:"omitempty,max=64"`
	NamaObat      *string          `json:"nama_obat,omitempty" binding:"omitempty,max=255"`
	Kategori      *string          `json:"kategori,omitempty" binding:"omitempty,max=64"`
	Satuan        *string          `json:"satuan,omitempty" binding:"omitempty,max=32"`
	StokMinimal   *int32           `json:"stok_minimal,omitempty" binding:"omitempty,min=0"`
	HargaBeli     *decimal.Decimal `json:"harga_beli,omitempty"`
	HargaJual     *decimal.Decimal `json:"harga_jual,omitempty"`
	TglKadaluarsa *string          `json:"tgl_kadaluarsa,omitempty"`
}

type SupplierRequest struct {
	NamaSuppliers string `json:"nama_suppliers" binding:"required,max=255"`
	Telepon       string `json:"telepon" binding:"max=32"`
	Alamat        string `json:"alamat"`
}

type SaleItemRequest struct {
	ObatID int64 `json:"obat_id" binding:"required"`
	Jumlah int32 `json:"jumlah" binding:"required,min=1"`
}

type SaleRequest struct {
	Bayar *decimal.Decimal  `json:"bayar" binding:"required"`
	Items []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
}

type ReceiptItemRequest struct {
	ObatID      int64            `json:"obat_id" binding:"required"`
	Jumlah      int32            `json:"jumlah" binding:"required,min=1"`
	HargaSatuan *decimal.Decimal `json:"harga_satuan" binding:"required"`
}

type ReceiptRequest struct {
	SupplierID int64                `json:"supplier_id" binding:"required"`
	NoFaktur   string               `json:"no_faktur" binding:"required,max=64"`
	Items      []ReceiptItemRequest `json:"items" binding:"required,min=1,dive"`
}

type ListObatQuery struct {
	Search   string `form:"search"`
	Kategori string `form:"kategori"`
}

type LaporanQuery struct {
	Period string `form:"period"`
}

// RegisterRoutes mounts the pharmacy API on an authenticated group and
// applies the per-route role gates.
func (h *FarmaHTTPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := middleware.RequireRoles(models.RoleKasir, models.RoleApoteker, models.RoleSuperadmin)
	pharmacist := middleware.RequireRoles(models.RoleApoteker, models.RoleSuperadmin)

	obat := rg.Group("/obat")
	{
		obat.GET("", h.ListObat)
		obat.GET("/export", pharmacist, h.ExportObat)
		obat.GET("/:id", h.GetObat)
		obat.POST("", pharmacist, h.CreateObat)
		obat.PUT("/:id", pharmacist, h.UpdateObat)
		obat.DELETE("/:id", pharmacist, h.DeleteObat)
	}

	suppliers := rg.Group("/suppliers", pharmacist)
	{
		suppliers.GET("", h.ListSuppliers)
		suppliers.GET("/:id", h.GetSupplier)
		suppliers.POST("", h.CreateSupplier)
		suppliers.PUT("/:id", h.UpdateSupplier)
		suppliers.DELETE("/:id", h.DeleteSupplier)
	}

	penjualan := rg.Group("/penjualan")
	{
		penjualan.GET("", h.ListPenjualan)
		penjualan.GET("/:id", h.GetPenjualan)
		penjualan.POST("", sales, h.SellMedicine)
	}

	penerimaan := rg.Group("/penerimaan", pharmacist)
	{
		penerimaan.GET("", h.ListPenerimaan)
		penerimaan.GET("/:id", h.GetPenerimaan)
		penerimaan.POST("", h.ReceiveStock)
	}

	rg.GET("/dashboard", pharmacist, h.Dashboard)
	rg.GET("/laporan", pharmacist, h.Laporan)
	rg.GET("/laporan/export-pdf", pharmacist, h.ExportLaporan)
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, apperr.Field(field, fmt.Sprintf("The %s is not a valid date.", field))
	}
	return t, nil
}

// --- Obat ---

func (h *FarmaHTTPHandler) ListObat(c *gin.Context) {
	var q ListObatQuery
	if err := api.BindQuery(c, &q); err != nil {
		api.Fail(c, err)
		return
	}
	items, err := h.svc.ListObat(c.Request.Context(), store.ObatFilter{Search: q.Search, Kategori: q.Kategori})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Data obat berhasil diambil", items)
}

func (h *FarmaHTTPHandler) GetObat(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	obat, err := h.svc.GetObat(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Data obat berhasil diambil", obat)
}

func (h *FarmaHTTPHandler) CreateObat(c *gin.Context) {
	var req ObatRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}
	expiry, err := parseDate("tgl_kadaluarsa", req.TglKadaluarsa)
	if err != nil {
		api.Fail(c, err)
		return
	}
	obat, err := h.svc.CreateObat(c.Request.Context(), service.ObatInput{
		KodeObat:      req.KodeObat,
		NamaObat:      req.NamaObat,
		Kategori:      req.Kategori,
		Satuan:        req.Satuan,
		Stok:          req.Stok,
		StokMinimal:   req.StokMinimal,
		HargaBeli:     *req.HargaBeli,
		HargaJual:     *req.HargaJual,
		TglKadaluarsa: expiry,
	})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "Obat berhasil ditambahkan", obat)
}

func (h *FarmaHTTPHandler) UpdateObat(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	var req UpdateObatRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}

	in := service.UpdateObatInput{
		KodeObat:    req.KodeObat,
		NamaObat:    req.NamaObat,
		Kategori:    req.Kategori,
		Satuan:      req.Satuan,
		StokMinimal: req.StokMinimal,
		HargaBeli:   req.HargaBeli,
		HargaJual:   req.HargaJual,
	}
	if req.TglKadaluarsa != nil {
		expiry, err := parseDate("tgl_kadaluarsa", *req.TglKadaluarsa)
		if err != nil {
			api.Fail(c, err)
			return
		}
		in.TglKadaluarsa = &expiry
	}

	obat, err := h.svc.UpdateObat(c.Request.Context(), id, in)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Obat berhasil diperbarui", obat)
}

func (h *FarmaHTTPHandler) DeleteObat(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	if err := h.svc.DeleteObat(c.Request.Context(), id); err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Obat berhasil dihapus", nil)
}

// ExportObat streams the catalog as a CSV attachment.
func (h *FarmaHTTPHandler) ExportObat(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.svc.ExportObatCSV(c.Request.Context(), &buf); err != nil {
		api.Fail(c, err)
		return
	}
	filename := fmt.Sprintf("obat-%s.csv", h.now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// --- Suppliers ---

func (h *FarmaHTTPHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.svc.ListSuppliers(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Data supplier berhasil diambil", suppliers)
}

func (h *FarmaHTTPHandler) GetSupplier(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	supplier, err := h.svc.GetSupplier(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Data supplier berhasil diambil", supplier)
}

func (h *FarmaHTTPHandler) CreateSupplier(c *gin.Context) {
	var req SupplierRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}
	supplier, err := h.svc.CreateSupplier(c.Request.Context(), service.SupplierInput{
		NamaSuppliers: req.NamaSuppliers,
		Telepon:       req.Telepon,
		Alamat:        req.Alamat,
	})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "Supplier berhasil ditambahkan", supplier)
}

func (h *FarmaHTTPHandler) UpdateSupplier(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	var req SupplierRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}
	supplier, err := h.svc.UpdateSupplier(c.Request.Context(), id, service.SupplierInput{
		NamaSuppliers: req.NamaSuppliers,
		Telepon:       req.Telepon,
		Alamat:        req.Alamat,
	})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Supplier berhasil diperbarui", supplier)
}

func (h *FarmaHTTPHandler) DeleteSupplier(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	if err := h.svc.DeleteSupplier(c.Request.Context(), id); err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Supplier berhasil dihapus", nil)
}

// --- Penjualan ---

func (h *FarmaHTTPHandler) ListPenjualan(c *gin.Context) {
	var page api.Pagination
	if err := api.BindQuery(c, &page); err != nil {
		api.Fail(c, err)
		return
	}
	page = page.Normalize()

	sales, total, err := h.svc.ListPenjualan(c.Request.Context(), store.PageFilter{Offset: page.Offset(), Limit: page.PageSize})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.WithMeta(c, "Data penjualan berhasil diambil", sales, page.Meta(total))
}

func (h *FarmaHTTPHandler) GetPenjualan(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	sale, err := h.svc.GetPenjualan(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Data penjualan berhasil diambil", sale)
}

func (h *FarmaHTTPHandler) SellMedicine(c *gin.Context) {
	var req SaleRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		api.Abort(c, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	items := make([]service.SaleItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.SaleItemInput{ObatID: it.ObatID, Jumlah: it.Jumlah}
	}

	sale, err := h.svc.SellMedicine(c.Request.Context(), claims.UserId, service.SaleInput{
		Bayar: *req.Bayar,
		Items: items,
	})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "Transaksi berhasil", sale)
}

// --- Penerimaan ---

func (h *FarmaHTTPHandler) ListPenerimaan(c *gin.Context) {
	var page api.Pagination
	if err := api.BindQuery(c, &page); err != nil {
		api.Fail(c, err)
		return
	}
	page = page.Normalize()

	receipts, total, err := h.svc.ListPenerimaan(c.Request.Context(), store.PageFilter{Offset: page.Offset(), Limit: page.PageSize})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.WithMeta(c, "Data penerimaan berhasil diambil", receipts, page.Meta(total))
}

func (h *FarmaHTTPHandler) GetPenerimaan(c *gin.Context) {
	id, err := api.ParamID(c, "id")
	if err != nil {
		api.Fail(c, err)
		return
	}
	receipt, err := h.svc.GetPenerimaan(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Data penerimaan berhasil diambil", receipt)
}

func (h *FarmaHTTPHandler) ReceiveStock(c *gin.Context) {
	var req ReceiptRequest
	if err := api.BindJSON(c, &req); err != nil {
		api.Fail(c, err)
		return
	}
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		api.Abort(c, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	items := make([]service.ReceiptItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = service.ReceiptItemInput{ObatID: it.ObatID, Jumlah: it.Jumlah, HargaSatuan: *it.HargaSatuan}
	}

	receipt, err := h.svc.ReceiveStock(c.Request.Context(), claims.UserId, service.ReceiveInput{
		SupplierID: req.SupplierID,
		NoFaktur:   req.NoFaktur,
		Items:      items,
	})
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.Created(c, "Stok berhasil ditambahkan", receipt)
}

// --- Reports ---

func (h *FarmaHTTPHandler) Dashboard(c *gin.Context) {
	dash, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Dashboard berhasil diambil", dash)
}

func (h *FarmaHTTPHandler) Laporan(c *gin.Context) {
	var q LaporanQuery
	if err := api.BindQuery(c, &q); err != nil {
		api.Fail(c, err)
		return
	}
	report, err := h.svc.Laporan(c.Request.Context(), q.Period)
	if err != nil {
		api.Fail(c, err)
		return
	}
	api.OK(c, "Laporan berhasil diambil", report)
}
