package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"kasir-system/config"
	"kasir-system/internal/apperr"
	"kasir-system/internal/database/models"
	"kasir-system/internal/pricing"
	"kasir-system/internal/redisstore"
	"kasir-system/internal/services/farma/store"

	"github.com/shopspring/decimal"
)

type fakePublisher struct {
	events []redisstore.Event
}

func (f *fakePublisher) Publish(_ context.Context, event redisstore.Event) error {
	f.events = append(f.events, event)
	return nil
}

var fixedNow = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.Local)

type fixture struct {
	svc      *Service
	store    *store.MemoryStore
	pub      *fakePublisher
	supplier *models.Supplier
	para     *models.Obat
	amox     *models.Obat
}

func newFixture(t *testing.T, markup pricing.Markup) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	st.SetClock(func() time.Time { return fixedNow })
	st.AddUser(models.User{ID: 1, Name: "Kasir Apotek", Role: models.RoleKasir})

	pub := &fakePublisher{}
	svc := NewService(st, Options{
		Publisher: pub,
		Markup:    markup,
		Reports:   config.ReportConfig{LowStockFallback: 10, ExpiryWindowDays: 90, TopItems: 5, RecentSales: 3},
	})
	svc.now = func() time.Time { return fixedNow }

	ctx := context.Background()
	supplier, err := svc.CreateSupplier(ctx, SupplierInput{NamaSuppliers: "PT Kimia Farma", Telepon: "021-123"})
	if err != nil {
		t.Fatalf("create supplier: %v", err)
	}
	para, err := svc.CreateObat(ctx, ObatInput{
		KodeObat: "OBT-001", NamaObat: "Paracetamol 500mg", Kategori: "Obat Bebas", Satuan: "Strip",
		Stok: 10, StokMinimal: 5, HargaBeli: decimal.NewFromInt(4000), HargaJual: decimal.NewFromInt(6000),
		TglKadaluarsa: fixedNow.AddDate(2, 0, 0),
	})
	if err != nil {
		t.Fatalf("create obat: %v", err)
	}
	amox, err := svc.CreateObat(ctx, ObatInput{
		KodeObat: "OBT-002", NamaObat: "Amoxicillin 500mg", Kategori: "Obat Keras", Satuan: "Strip",
		Stok: 50, StokMinimal: 10, HargaBeli: decimal.NewFromInt(12000), HargaJual: decimal.NewFromInt(15000),
		TglKadaluarsa: fixedNow.AddDate(0, 0, 30),
	})
	if err != nil {
		t.Fatalf("create obat: %v", err)
	}

	return &fixture{svc: svc, store: st, pub: pub, supplier: supplier, para: para, amox: amox}
}

func (f *fixture) stok(t *testing.T, id int64) int32 {
	t.Helper()
	o, err := f.svc.GetObat(context.Background(), id)
	if err != nil {
		t.Fatalf("get obat %d: %v", id, err)
	}
	return o.Stok
}

func (f *fixture) saleCount(t *testing.T) int64 {
	t.Helper()
	_, total, err := f.svc.ListPenjualan(context.Background(), store.PageFilter{Limit: 100})
	if err != nil {
		t.Fatalf("list penjualan: %v", err)
	}
	return total
}

func TestSellMedicineDecrementsStock(t *testing.T) {
	f := newFixture(t, pricing.Markup{})
	ctx := context.Background()

	sale, err := f.svc.SellMedicine(ctx, 1, SaleInput{
		Bayar: decimal.NewFromInt(20000),
		Items: []SaleItemInput{{ObatID: f.para.ID, Jumlah: 3}},
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if got := f.stok(t, f.para.ID); got != 7 {
		t.Fatalf("expected stok 7, got %d", got)
	}
	if !sale.TotalHarga.Equal(decimal.NewFromInt(18000)) || !sale.Kembali.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("unexpected totals %s / %s", sale.TotalHarga, sale.Kembali)
	}
	if !strings.HasPrefix(sale.NoTransaksi, "TRX-20260315103000-") || len(sale.NoTransaksi) != len("TRX-20260315103000-")+6 {
		t.Fatalf("unexpected no_transaksi %q", sale.NoTransaksi)
	}

	_, err = f.svc.SellMedicine(ctx, 1, SaleInput{
		Bayar: decimal.NewFromInt(100000),
		Items: []SaleItemInput{{ObatID: f.para.ID, Jumlah: 8}},
	})
	if apperr.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if msg := apperr.Message(err); msg != "Stok tidak cukup untuk obat: Paracetamol 500mg" {
		t.Fatalf("unexpected message %q", msg)
	}
	if got := f.stok(t, f.para.ID); got != 7 {
		t.Fatalf("stok changed on rejected sale: %d", got)
	}
	if n := f.saleCount(t); n != 1 {
		t.Fatalf("expected 1 sale, got %d", n)
	}
}

func TestSellMedicineTotals(t *testing.T) {
	f := newFixture(t, pricing.Markup{})

	sale, err := f.svc.SellMedicine(context.Background(), 1, SaleInput{
		Bayar: decimal.NewFromInt(50000),
		Items: []SaleItemInput{
			{ObatID: f.para.ID, Jumlah: 2},
			{ObatID: f.amox.ID, Jumlah: 1},
		},
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	sum := decimal.Zero
	for _, d := range sale.Details {
		if d.Obat == nil {
			t.Fatalf("expected obat to be expanded on line %d", d.ID)
		}
		if !d.Subtotal.Equal(d.Harga.Mul(decimal.NewFromInt32(d.Qty))) {
			t.Fatalf("line subtotal mismatch on %d", d.ID)
		}
		sum = sum.Add(d.Subtotal)
	}
	if !sum.Equal(sale.TotalHarga) || !sale.TotalHarga.Equal(decimal.NewFromInt(27000)) {
		t.Fatalf("expected total 27000 matching lines, got %s (lines %s)", sale.TotalHarga, sum)
	}
	if !sale.Bayar.Sub(sale.TotalHarga).Equal(sale.Kembali) || sale.Kembali.IsNegative() {
		t.Fatalf("kembali mismatch: %s", sale.Kembali)
	}

	if len(f.pub.events) != 1 || f.pub.events[0].EventType != EventSaleCreated || f.pub.events[0].Reference != sale.NoTransaksi {
		t.Fatalf("expected sale.created event, got %+v", f.pub.events)
	}
}

func TestSellMedicineRejectsWithoutWrites(t *testing.T) {
	tests := []struct {
		name   string
		input  func(f *fixture) SaleInput
		status int
		field  string
	}{
		{
			name: "short payment",
			input: func(f *fixture) SaleInput {
				return SaleInput{Bayar: decimal.NewFromInt(5000), Items: []SaleItemInput{{ObatID: f.para.ID, Jumlah: 1}}}
			},
			status: http.StatusBadRequest,
		},
		{
			name: "repeated item summed over stock",
			input: func(f *fixture) SaleInput {
				return SaleInput{Bayar: decimal.NewFromInt(100000), Items: []SaleItemInput{
					{ObatID: f.para.ID, Jumlah: 6},
					{ObatID: f.amox.ID, Jumlah: 1},
					{ObatID: f.para.ID, Jumlah: 5},
				}}
			},
			status: http.StatusBadRequest,
		},
		{
			name: "unknown obat",
			input: func(f *fixture) SaleInput {
				return SaleInput{Bayar: decimal.NewFromInt(100000), Items: []SaleItemInput{
					{ObatID: f.para.ID, Jumlah: 1},
					{ObatID: 999, Jumlah: 1},
				}}
			},
			status: http.StatusUnprocessableEntity,
			field:  "items.1.obat_id",
		},
		{
			name: "zero quantity",
			input: func(f *fixture) SaleInput {
				return SaleInput{Bayar: decimal.NewFromInt(100000), Items: []SaleItemInput{{ObatID: f.para.ID, Jumlah: 0}}}
			},
			status: http.StatusUnprocessableEntity,
			field:  "items.0.jumlah",
		},
		{
			name: "repeated item summed past int32",
			input: func(f *fixture) SaleInput {
				return SaleInput{Bayar: decimal.New(1, 15), Items: []SaleItemInput{
					{ObatID: f.para.ID, Jumlah: math.MaxInt32},
					{ObatID: f.para.ID, Jumlah: math.MaxInt32},
				}}
			},
			status: http.StatusUnprocessableEntity,
			field:  "items",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, pricing.Markup{})
			_, err := f.svc.SellMedicine(context.Background(), 1, tt.input(f))
			if apperr.HTTPStatus(err) != tt.status {
				t.Fatalf("expected %d, got %v", tt.status, err)
			}
			if tt.field != "" {
				if _, ok := apperr.Fields(err)[tt.field]; !ok {
					t.Fatalf("expected violation on %s, got %v", tt.field, apperr.Fields(err))
				}
			}
			if f.stok(t, f.para.ID) != 10 || f.stok(t, f.amox.ID) != 50 {
				t.Fatalf("stock changed on rejected sale")
			}
			if n := f.saleCount(t); n != 0 {
				t.Fatalf("expected no sale rows, got %d", n)
			}
			if len(f.pub.events) != 0 {
				t.Fatalf("expected no events")
			}
		})
	}
}

func TestReceiveStock(t *testing.T) {
	f := newFixture(t, pricing.Markup{})
	ctx := context.Background()

	receipt, err := f.svc.ReceiveStock(ctx, 1, ReceiveInput{
		SupplierID: f.supplier.ID,
		NoFaktur:   "INV-001",
		Items: []ReceiptItemInput{
			{ObatID: f.para.ID, Jumlah: 20, HargaSatuan: decimal.NewFromInt(4500)},
			{ObatID: f.amox.ID, Jumlah: 5, HargaSatuan: decimal.NewFromInt(14000)},
		},
	})
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if !receipt.TotalHarga.Equal(decimal.NewFromInt(160000)) {
		t.Fatalf("expected total 160000, got %s", receipt.TotalHarga)
	}
	if receipt.Supplier == nil || receipt.Supplier.ID != f.supplier.ID {
		t.Fatalf("expected supplier to be expanded")
	}

	para, _ := f.svc.GetObat(ctx, f.para.ID)
	if para.Stok != 30 || !para.HargaBeli.Equal(decimal.NewFromInt(4500)) {
		t.Fatalf("unexpected paracetamol after receipt: stok %d harga_beli %s", para.Stok, para.HargaBeli)
	}
	if !para.HargaJual.Equal(decimal.NewFromInt(6000)) {
		t.Fatalf("harga_jual must not change with markup off, got %s", para.HargaJual)
	}
	if got := f.stok(t, f.amox.ID); got != 55 {
		t.Fatalf("expected amox stok 55, got %d", got)
	}
}

func TestReceiveStockAppliesMarkup(t *testing.T) {
	markup := pricing.Markup{Enabled: true, Percent: decimal.NewFromInt(20), Step: decimal.NewFromInt(500)}
	f := newFixture(t, markup)
	ctx := context.Background()

	_, err := f.svc.ReceiveStock(ctx, 1, ReceiveInput{
		SupplierID: f.supplier.ID,
		NoFaktur:   "INV-002",
		Items:      []ReceiptItemInput{{ObatID: f.amox.ID, Jumlah: 10, HargaSatuan: decimal.NewFromInt(14000)}},
	})
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	amox, _ := f.svc.GetObat(ctx, f.amox.ID)
	if !amox.HargaJual.Equal(decimal.NewFromInt(17000)) {
		t.Fatalf("expected harga_jual 17000, got %s", amox.HargaJual)
	}
	if !amox.HargaBeli.Equal(decimal.NewFromInt(14000)) {
		t.Fatalf("expected harga_beli 14000, got %s", amox.HargaBeli)
	}
}

func TestReceiveStockDuplicateInvoice(t *testing.T) {
	f := newFixture(t, pricing.Markup{})
	ctx := context.Background()

	in := ReceiveInput{
		SupplierID: f.supplier.ID,
		NoFaktur:   "INV-777",
		Items:      []ReceiptItemInput{{ObatID: f.para.ID, Jumlah: 5, HargaSatuan: decimal.NewFromInt(4000)}},
	}
	if _, err := f.svc.ReceiveStock(ctx, 1, in); err != nil {
		t.Fatalf("first receipt: %v", err)
	}

	_, err := f.svc.ReceiveStock(ctx, 1, in)
	if apperr.HTTPStatus(err) != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
	if got := f.stok(t, f.para.ID); got != 15 {
		t.Fatalf("expected stok 15 after one receipt, got %d", got)
	}
	_, total, _ := f.svc.ListPenerimaan(ctx, store.PageFilter{Limit: 10})
	if total != 1 {
		t.Fatalf("expected 1 receipt, got %d", total)
	}
}

func TestReceiveStockValidation(t *testing.T) {
	f := newFixture(t, pricing.Markup{})
	ctx := context.Background()

	_, err := f.svc.ReceiveStock(ctx, 1, ReceiveInput{
		SupplierID: 999,
		NoFaktur:   "INV-X",
		Items:      []ReceiptItemInput{{ObatID: f.para.ID, Jumlah: 1, HargaSatuan: decimal.NewFromInt(1000)}},
	})
	if _, ok := apperr.Fields(err)["supplier_id"]; !ok || apperr.HTTPStatus(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected supplier_id violation, got %v", err)
	}

	_, err = f.svc.ReceiveStock(ctx, 1, ReceiveInput{
		SupplierID: f.supplier.ID,
		NoFaktur:   "INV-Y",
		Items: []ReceiptItemInput{
			{ObatID: f.para.ID, Jumlah: 0, HargaSatuan: decimal.NewFromInt(-1)},
		},
	})
	fields := apperr.Fields(err)
	if _, ok := fields["items.0.jumlah"]; !ok {
		t.Fatalf("expected jumlah violation, got %v", fields)
	}
	if _, ok := fields["items.0.harga_satuan"]; !ok {
		t.Fatalf("expected harga_satuan violation, got %v", fields)
	}

	_, err = f.svc.ReceiveStock(ctx, 1, ReceiveInput{
		SupplierID: f.supplier.ID,
		NoFaktur:   "INV-Z",
		Items:      []ReceiptItemInput{{ObatID: 404, Jumlah: 1, HargaSatuan: decimal.NewFromInt(1)}},
	})
	if _, ok := apperr.Fields(err)["items.0.obat_id"]; !ok {
		t.Fatalf("expected obat_id violation, got %v", err)
	}
	if exists, _ := f.store.InvoiceExists(ctx, "INV-Z"); exists {
		t.Fatalf("rejected receipt must not be written")
	}
}

func TestReceiveStockRejectsStokOverflow(t *testing.T) {
	f := newFixture(t, pricing.Markup{})
	ctx := context.Background()

	_, err := f.svc.ReceiveStock(ctx, 1, ReceiveInput{
		SupplierID: f.supplier.ID,
		NoFaktur:   "INV-BIG",
		Items: []ReceiptItemInput{
			{ObatID: f.para.ID, Jumlah: math.MaxInt32 - 5, HargaSatuan: decimal.NewFromInt(1)},
			{ObatID: f.para.ID, Jumlah: 1, HargaSatuan: decimal.NewFromInt(1)},
		},
	})
	if _, ok := apperr.Fields(err)["items"]; !ok || apperr.HTTPStatus(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected items violation, got %v", err)
	}
	if got := f.stok(t, f.para.ID); got != 10 {
		t.Fatalf("expected stok 10, got %d", got)
	}
	if exists, _ := f.store.InvoiceExists(ctx, "INV-BIG"); exists {
		t.Fatalf("rejected receipt must not be written")
	}
}

// receiptOnLock commits a receipt on the backing store right after the
// obat row is read inside the update transaction.
type receiptOnLock struct {
	*store.MemoryStore
	obatID int64
	fired  bool
}

func (r *receiptOnLock) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	return r.MemoryStore.Transaction(ctx, func(store.Store) error { return fn(r) })
}

func (r *receiptOnLock) LockObat(ctx context.Context, ids []int64) ([]models.Obat, error) {
	locked, err := r.MemoryStore.LockObat(ctx, ids)
	if err == nil && !r.fired {
		r.fired = true
		err = r.MemoryStore.ApplyReceipt(ctx, r.obatID, 5, decimal.NewFromInt(14000), decimal.NewFromInt(17000))
	}
	return locked, err
}

func TestUpdateObatKeepsReceiptPrices(t *testing.T) {
	f := newFixture(t, pricing.Markup{})
	ctx := context.Background()

	svc := NewService(&receiptOnLock{MemoryStore: f.store, obatID: f.para.ID}, Options{})
	name := "Paracetamol 650mg"
	updated, err := svc.UpdateObat(ctx, f.para.ID, UpdateObatInput{NamaObat: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.NamaObat != name {
		t.Fatalf("expected nama %q, got %q", name, updated.NamaObat)
	}
	if !updated.HargaBeli.Equal(decimal.NewFromInt(14000)) || !updated.HargaJual.Equal(decimal.NewFromInt(17000)) {
		t.Fatalf("receipt prices overwritten: %s / %s", updated.HargaBeli, updated.HargaJual)
	}
	if updated.Stok != 15 {
		t.Fatalf("expected stok 15, got %d", updated.Stok)
	}
}

func TestObatCatalogRules(t *testing.T) {
	f := newFixture(t, pricing.Markup{})
	ctx := context.Background()

	_, err := f.svc.CreateObat(ctx, ObatInput{KodeObat: "OBT-001", NamaObat: "Duplikat", Kategori: "X", TglKadaluarsa: fixedNow})
	if apperr.HTTPStatus(err) != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate kode, got %v", err)
	}

	name := "Paracetamol 650mg"
	updated, err := f.svc.UpdateObat(ctx, f.para.ID, UpdateObatInput{NamaObat: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.NamaObat != name || updated.Stok != 10 {
		t.Fatalf("unexpected update result %+v", updated)
	}

	negative := decimal.NewFromInt(-5)
	if _, err := f.svc.UpdateObat(ctx, f.para.ID, UpdateObatInput{HargaJual: &negative}); apperr.HTTPStatus(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for negative price, got %v", err)
	}

	if _, err := f.svc.SellMedicine(ctx, 1, SaleInput{Bayar: decimal.NewFromInt(6000), Items: []SaleItemInput{{ObatID: f.para.ID, Jumlah: 1}}}); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if err := f.svc.DeleteObat(ctx, f.para.ID); apperr.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400 deleting sold obat, got %v", err)
	}
	if err := f.svc.DeleteObat(ctx, 999); apperr.HTTPStatus(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestSupplierDeleteBlockedByReceipts(t *testing.T) {
	f := newFixture(t, pricing.Markup{})
	ctx := context.Background()

	_, err := f.svc.ReceiveStock(ctx, 1, ReceiveInput{
		SupplierID: f.supplier.ID,
		NoFaktur:   "INV-100",
		Items:      []ReceiptItemInput{{ObatID: f.para.ID, Jumlah: 1, HargaSatuan: decimal.NewFromInt(4000)}},
	})
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if err := f.svc.DeleteSupplier(ctx, f.supplier.ID); apperr.HTTPStatus(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}

	other, _ := f.svc.CreateSupplier(ctx, SupplierInput{NamaSuppliers: "CV Sehat"})
	if err := f.svc.DeleteSupplier(ctx, other.ID); err != nil {
		t.Fatalf("delete unused supplier: %v", err)
	}
}

func TestExportObatCSV(t *testing.T) {
	f := newFixture(t, pricing.Markup{})

	var buf bytes.Buffer
	if err := f.svc.ExportObatCSV(context.Background(), &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 || records[0][1] != "kode_obat" {
		t.Fatalf("unexpected csv %v", records)
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, pricing.Markup{})
	ctx := context.Background()

	extra, err := f.svc.CreateObat(ctx, ObatInput{
		KodeObat: "OBT-003", NamaObat: "Vitamin C", Kategori: "Vitamin", Satuan: "Botol",
		Stok: 40, StokMinimal: 5, HargaBeli: decimal.NewFromInt(8000), HargaJual: decimal.NewFromInt(10000),
		TglKadaluarsa: fixedNow.AddDate(1, 0, 0),
	})
	if err != nil {
		t.Fatalf("create obat: %v", err)
	}

	_, err = f.svc.SellMedicine(ctx, 1, SaleInput{
		Bayar: decimal.NewFromInt(100000),
		Items: []SaleItemInput{
			{ObatID: f.para.ID, Jumlah: 1},
			{ObatID: f.amox.ID, Jumlah: 2},
			{ObatID: extra.ID, Jumlah: 1},
		},
	})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	dash, err := f.svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if !dash.OmzetHariIni.Equal(decimal.NewFromInt(46000)) {
		t.Fatalf("expected omzet 46000, got %s", dash.OmzetHariIni)
	}
	if dash.StokMenipisCount != 1 || dash.StokMenipisItems[0].ID != f.para.ID {
		t.Fatalf("expected paracetamol as only low stock item, got %+v", dash.StokMenipisItems)
	}
	if dash.HampirKadaluarsaCount != 1 || dash.HampirKadaluarsaItems[0].ID != f.amox.ID {
		t.Fatalf("expected amoxicillin as only expiring item, got %+v", dash.HampirKadaluarsaItems)
	}
	if dash.TotalProduk != 3 {
		t.Fatalf("expected 3 products, got %d", dash.TotalProduk)
	}
	if len(dash.TopItems) != 3 || dash.TopItems[0].ObatID != f.amox.ID || dash.TopItems[0].TotalQty != 2 {
		t.Fatalf("unexpected top items %+v", dash.TopItems)
	}
	if len(dash.RecentTransactions) != 1 {
		t.Fatalf("expected 1 recent sale, got %d", len(dash.RecentTransactions))
	}
	recent := dash.RecentTransactions[0]
	if recent.Waktu != "10:30" {
		t.Fatalf("expected waktu 10:30, got %q", recent.Waktu)
	}
	if recent.DeskripsiObat != "Paracetamol 500mg, Amoxicillin 500mg, dll" {
		t.Fatalf("unexpected deskripsi %q", recent.DeskripsiObat)
	}
}

func TestLaporan(t *testing.T) {
	f := newFixture(t, pricing.Markup{})
	ctx := context.Background()

	if _, err := f.svc.SellMedicine(ctx, 1, SaleInput{
		Bayar: decimal.NewFromInt(30000),
		Items: []SaleItemInput{{ObatID: f.amox.ID, Jumlah: 2}},
	}); err != nil {
		t.Fatalf("sell: %v", err)
	}
	if _, err := f.svc.ReceiveStock(ctx, 1, ReceiveInput{
		SupplierID: f.supplier.ID,
		NoFaktur:   "INV-900",
		Items:      []ReceiptItemInput{{ObatID: f.para.ID, Jumlah: 10, HargaSatuan: decimal.NewFromInt(4000)}},
	}); err != nil {
		t.Fatalf("receive: %v", err)
	}

	report, err := f.svc.Laporan(ctx, PeriodThisMonth)
	if err != nil {
		t.Fatalf("laporan: %v", err)
	}
	if report.Period.From != "2026-03-01" || report.Period.To != "2026-03-31" {
		t.Fatalf("unexpected period %+v", report.Period)
	}
	stats := report.Stats
	if !stats.TotalIncome.Equal(decimal.NewFromInt(30000)) || !stats.TotalExpense.Equal(decimal.NewFromInt(40000)) {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if !stats.NetProfit.Equal(decimal.NewFromInt(-10000)) || stats.IsProfitable {
		t.Fatalf("expected a loss, got %+v", stats)
	}
	if len(report.Transactions) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(report.Transactions))
	}
	if report.Transactions[1].Type != "expense" || report.Transactions[1].Desc != "Restock PT Kimia Farma" {
		t.Fatalf("unexpected expense row %+v", report.Transactions[1])
	}

	last, err := f.svc.Laporan(ctx, PeriodLastMonth)
	if err != nil || len(last.Transactions) != 0 {
		t.Fatalf("expected empty last month, got %v %v", last, err)
	}

	if _, err := f.svc.Laporan(ctx, "yesterday"); apperr.HTTPStatus(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for unknown period, got %v", err)
	}
}
