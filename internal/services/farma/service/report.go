package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"kasir-system/internal/apperr"
	"kasir-system/internal/database/models"
	"kasir-system/internal/services/farma/store"

	"github.com/shopspring/decimal"
)

const dashboardPreview = 3

type RecentSale struct {
	models.Penjualan
	Waktu         string `json:"waktu"`
	DeskripsiObat string `json:"deskripsi_obat"`
}

type Dashboard struct {
	OmzetHariIni          decimal.Decimal `json:"omzet_hari_ini"`
	StokMenipisCount      int             `json:"stok_menipis_count"`
	StokMenipisItems      []models.Obat   `json:"stok_menipis_items"`
	HampirKadaluarsaCount int             `json:"hampir_kadaluarsa_count"`
	HampirKadaluarsaItems []models.Obat   `json:"hampir_kadaluarsa_items"`
	TotalProduk           int64           `json:"total_produk"`
	TopItems              []store.TopObat `json:"top_items"`
	RecentTransactions    []RecentSale    `json:"recent_transactions"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

func preview(items []models.Obat) []models.Obat {
	if len(items) > dashboardPreview {
		return items[:dashboardPreview]
	}
	return items
}

// describeSale lists the first two item names, adding ", dll" when the sale
// has more lines.
func describeSale(p models.Penjualan) string {
	names := make([]string, 0, 2)
	for i, d := range p.Details {
		if i == 2 {
			break
		}
		name := "Obat"
		if d.Obat != nil {
			name = d.Obat.NamaObat
		}
		names = append(names, name)
	}
	desc := strings.Join(names, ", ")
	if len(p.Details) > 2 {
		desc += ", dll"
	}
	return desc
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now()
	today := startOfDay(now)
	month := startOfMonth(now)

	omzet, err := s.store.SalesTotal(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperr.Internal("failed to sum today's sales", err)
	}
	low, err := s.store.LowStock(ctx, s.reports.LowStockFallback)
	if err != nil {
		return nil, apperr.Internal("failed to list low stock", err)
	}
	expiring, err := s.store.Expiring(ctx, today, today.AddDate(0, 0, s.reports.ExpiryWindowDays))
	if err != nil {
		return nil, apperr.Internal("failed to list expiring obat", err)
	}
	count, err := s.store.CountObat(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to count obat", err)
	}
	top, err := s.store.TopObat(ctx, month, month.AddDate(0, 1, 0), s.reports.TopItems)
	if err != nil {
		return nil, apperr.Internal("failed to rank obat", err)
	}
	recent, err := s.store.RecentPenjualan(ctx, s.reports.RecentSales)
	if err != nil {
		return nil, apperr.Internal("failed to list recent sales", err)
	}

	if top == nil {
		top = []store.TopObat{}
	}
	recentSales := make([]RecentSale, 0, len(recent))
	for _, p := range recent {
		recentSales = append(recentSales, RecentSale{
			Penjualan:     p,
			Waktu:         p.CreatedAt.In(now.Location()).Format("15:04"),
			DeskripsiObat: describeSale(p),
		})
	}

	return &Dashboard{
		OmzetHariIni:          omzet,
		StokMenipisCount:      len(low),
		StokMenipisItems:      preview(low),
		HampirKadaluarsaCount: len(expiring),
		HampirKadaluarsaItems: preview(expiring),
		TotalProduk:           count,
		TopItems:              top,
		RecentTransactions:    recentSales,
	}, nil
}

const (
	PeriodThisMonth = "this_month"
	PeriodLastMonth = "last_month"
	PeriodThisYear  = "this_year"
)

type Period struct {
	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
	From  string    `json:"start"`
	To    string    `json:"end"`
}

type LaporanStats struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	IsProfitable bool            `json:"is_profitable"`
}

type LaporanEntry struct {
	ID     string          `json:"id"`
	Date   string          `json:"date"`
	Desc   string          `json:"desc"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Status string          `json:"status"`
	At     time.Time       `json:"-"`
}

type Laporan struct {
	Period       Period         `json:"period"`
	Stats        LaporanStats   `json:"stats"`
	Transactions []LaporanEntry `json:"transactions"`
}

// ResolvePeriod maps a period name onto a half-open [Start, End) range. An
// empty name means the current month.
func ResolvePeriod(name string, now time.Time) (Period, error) {
	month := startOfMonth(now)
	var start, end time.Time
	switch name {
	case "", PeriodThisMonth:
		start, end = month, month.AddDate(0, 1, 0)
	case PeriodLastMonth:
		start, end = month.AddDate(0, -1, 0), month
	case PeriodThisYear:
		start = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(1, 0, 0)
	default:
		return Period{}, apperr.Field("period", "The selected period is invalid.")
	}
	return Period{
		Start: start,
		End:   end,
		From:  start.Format("2006-01-02"),
		To:    end.AddDate(0, 0, -1).Format("2006-01-02"),
	}, nil
}

// Laporan reports sales as income and stock receipts as expense for the
// period, with a merged history sorted newest first.
func (s *Service) Laporan(ctx context.Context, periodName string) (*Laporan, error) {
	period, err := ResolvePeriod(periodName, s.now())
	if err != nil {
		return nil, err
	}

	sales, err := s.store.PenjualanBetween(ctx, period.Start, period.End)
	if err != nil {
		return nil, apperr.Internal("failed to list penjualan", err)
	}
	receipts, err := s.store.PenerimaanBetween(ctx, period.Start, period.End)
	if err != nil {
		return nil, apperr.Internal("failed to list penerimaan", err)
	}

	income, expense := decimal.Zero, decimal.Zero
	entries := make([]LaporanEntry, 0, len(sales)+len(receipts))
	for _, p := range sales {
		income = income.Add(p.TotalHarga)
		entries = append(entries, LaporanEntry{
			ID:     fmt.Sprintf("S-%d", p.ID),
			Date:   p.CreatedAt.Format("2006-01-02 15:04"),
			Desc:   fmt.Sprintf("Penjualan Obat (%s)", p.NoTransaksi),
			Type:   "income",
			Amount: p.TotalHarga,
			Status: "Selesai",
			At:     p.CreatedAt,
		})
	}
	for _, p := range receipts {
		expense = expense.Add(p.TotalHarga)
		supplier := "Supplier"
		if p.Supplier != nil {
			supplier = p.Supplier.NamaSuppliers
		}
		entries = append(entries, LaporanEntry{
			ID:     fmt.Sprintf("P-%d", p.ID),
			Date:   p.CreatedAt.Format("2006-01-02 15:04"),
			Desc:   "Restock " + supplier,
			Type:   "expense",
			Amount: p.TotalHarga,
			Status: "Lunas",
			At:     p.CreatedAt,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].At.After(entries[j].At) })

	net := income.Sub(expense)
	return &Laporan{
		Period: period,
		Stats: LaporanStats{
			TotalIncome:  income,
			TotalExpense: expense,
			NetProfit:    net,
			IsProfitable: !net.IsNegative(),
		},
		Transactions: entries,
	}, nil
}
