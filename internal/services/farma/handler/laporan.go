package handler

import (
	"embed"
	"html/template"
	"net/http"

	"kasir-system/internal/api"
	"kasir-system/internal/pricing"
	"kasir-system/internal/services/farma/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/shopspring/decimal"
)

//go:embed templates/laporan.html
var templateFS embed.FS

var laporanTemplate = template.Must(
	template.New("laporan.html").
		Funcs(template.FuncMap{"rupiah": pricing.Rupiah}).
		ParseFS(templateFS, "templates/laporan.html"),
)

type laporanRow struct {
	Date   string
	Desc   string
	Income bool
	Amount decimal.Decimal
}

type laporanPage struct {
	Start string
	End   string
	Rows  []laporanRow
	Stats service.LaporanStats
}

func newLaporanPage(report *service.Laporan) laporanPage {
	rows := make([]laporanRow, 0, len(report.Transactions))
	for _, t := range report.Transactions {
		rows = append(rows, laporanRow{
			Date:   t.At.Format("02/01/2006"),
			Desc:   t.Desc,
			Income: t.Type == "income",
			Amount: t.Amount,
		})
	}
	return laporanPage{
		Start: report.Period.Start.Format("02 Jan 2006"),
		End:   report.Period.End.AddDate(0, 0, -1).Format("02 Jan 2006"),
		Rows:  rows,
		Stats: report.Stats,
	}
}

// ExportLaporan renders the period report as a print-ready HTML page with
// debit and credit columns.
func (h *FarmaHTTPHandler) ExportLaporan(c *gin.Context) {
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
	c.Render(http.StatusOK, render.HTML{
		Template: laporanTemplate,
		Name:     "laporan.html",
		Data:     newLaporanPage(report),
	})
}
