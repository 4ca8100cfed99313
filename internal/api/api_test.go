package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kasir-system/internal/apperr"

	"github.com/gin-gonic/gin"
)

type lineRequest struct {
	ObatID int64 `json:"obat_id" binding:"required"`
	Jumlah int32 `json:"jumlah" binding:"required,min=1"`
}

type saleRequest struct {
	Bayar int64         `json:"bayar" binding:"required"`
	Items []lineRequest `json:"items" binding:"required,min=1,dive"`
}

func newContext(body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestBindJSONReportsJSONPaths(t *testing.T) {
	c, _ := newContext(`{"bayar": 5000, "items": [{"obat_id": 1, "jumlah": 0}]}`)

	var req saleRequest
	err := BindJSON(c, &req)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if apperr.HTTPStatus(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", apperr.HTTPStatus(err))
	}
	fields := apperr.Fields(err)
	if _, ok := fields["items.0.jumlah"]; !ok {
		t.Fatalf("expected items.0.jumlah in %v", fields)
	}
}

func TestBindJSONMalformedBody(t *testing.T) {
	c, _ := newContext(`{"bayar":`)

	var req saleRequest
	err := BindJSON(c, &req)
	if apperr.HTTPStatus(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for malformed body, got %d", apperr.HTTPStatus(err))
	}
	if _, ok := apperr.Fields(err)["body"]; !ok {
		t.Fatalf("expected body field error")
	}
}

func TestFailWritesEnvelope(t *testing.T) {
	c, w := newContext(`{}`)

	Fail(c, apperr.Field("no_faktur", "The no_faktur field is required."))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success {
		t.Fatalf("expected success=false")
	}
	if resp.Errors["no_faktur"] == "" {
		t.Fatalf("expected no_faktur error, got %v", resp.Errors)
	}
}

func TestPaginationNormalize(t *testing.T) {
	p := Pagination{Page: 0, PageSize: 500}.Normalize()
	if p.Page != 1 || p.PageSize != 100 {
		t.Fatalf("unexpected normalized pagination %+v", p)
	}
	if (Pagination{Page: 3, PageSize: 10}).Offset() != 20 {
		t.Fatalf("unexpected offset")
	}
}
