package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"kasir-system/internal/apperr"
	"kasir-system/internal/database"
	"kasir-system/internal/database/models"
	"kasir-system/internal/pkg/logging"
	"kasir-system/internal/services/farma/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ObatInput struct {
	KodeObat      string
	NamaObat      string
	Kategori      string
	Satuan        string
	Stok          int32
	StokMinimal   int32
	HargaBeli     decimal.Decimal
	HargaJual     decimal.Decimal
	TglKadaluarsa time.Time
}

// UpdateObatInput has no stok field: stock only moves through sales and
// receipts.
type UpdateObatInput struct {
	KodeObat      *string
	NamaObat      *string
	Kategori      *string
	Satuan        *string
	StokMinimal   *int32
	HargaBeli     *decimal.Decimal
	HargaJual     *decimal.Decimal
	TglKadaluarsa *time.Time
}

func checkObat(o *models.Obat) error {
	fields := map[string]string{}
	if o.Stok < 0 {
		fields["stok"] = "The stok must be at least 0."
	}
	if o.StokMinimal < 0 {
		fields["stok_minimal"] = "The stok minimal must be at least 0."
	}
	if o.HargaBeli.IsNegative() {
		fields["harga_beli"] = "The harga beli must be at least 0."
	}
	if o.HargaJual.IsNegative() {
		fields["harga_jual"] = "The harga jual must be at least 0."
	}
	if len(fields) > 0 {
		return apperr.Validation("The given data was invalid.", fields)
	}
	return nil
}

func (s *Service) ListObat(ctx context.Context, filter store.ObatFilter) ([]models.Obat, error) {
	cacheable := filter.Search == "" && filter.Kategori == ""
	if cacheable {
		var cached []models.Obat
		if ok, err := s.cache.GetJSON(ctx, obatListCacheKey, &cached); err != nil {
			logging.FromContext(ctx).Warn("obat cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	items, err := s.store.ListObat(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("failed to list obat", err)
	}
	if cacheable {
		if err := s.cache.SetJSON(ctx, obatListCacheKey, items); err != nil {
			logging.FromContext(ctx).Warn("obat cache write failed", zap.Error(err))
		}
	}
	return items, nil
}

func (s *Service) GetObat(ctx context.Context, id int64) (*models.Obat, error) {
	obat, err := s.store.GetObat(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Obat tidak ditemukan")
		}
		return nil, apperr.Internal("failed to get obat", err)
	}
	return obat, nil
}

func (s *Service) CreateObat(ctx context.Context, in ObatInput) (*models.Obat, error) {
	obat := &models.Obat{
		KodeObat:      strings.TrimSpace(in.KodeObat),
		NamaObat:      strings.TrimSpace(in.NamaObat),
		Kategori:      strings.TrimSpace(in.Kategori),
		Satuan:        strings.TrimSpace(in.Satuan),
		Stok:          in.Stok,
		StokMinimal:   in.StokMinimal,
		HargaBeli:     in.HargaBeli,
		HargaJual:     in.HargaJual,
		TglKadaluarsa: in.TglKadaluarsa,
	}
	if err := checkObat(obat); err != nil {
		return nil, err
	}

	if err := s.store.CreateObat(ctx, obat); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Kode obat %s sudah digunakan", obat.KodeObat)
		}
		return nil, apperr.Internal("failed to create obat", err)
	}
	s.invalidateCatalog(ctx)
	return obat, nil
}

// UpdateObat locks the row and writes back only the columns whose fields
// are set in in. Stok is never touched.
func (s *Service) UpdateObat(ctx context.Context, id int64, in UpdateObatInput) (*models.Obat, error) {
	var obat *models.Obat
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		locked, err := tx.LockObat(ctx, []int64{id})
		if err != nil {
			return apperr.Internal("failed to lock obat", err)
		}
		if len(locked) == 0 {
			return apperr.NotFound("Obat tidak ditemukan")
		}
		obat = &locked[0]

		var columns []string
		if in.KodeObat != nil {
			obat.KodeObat = strings.TrimSpace(*in.KodeObat)
			columns = append(columns, "kode_obat")
		}
		if in.NamaObat != nil {
			obat.NamaObat = strings.TrimSpace(*in.NamaObat)
			columns = append(columns, "nama_obat")
		}
		if in.Kategori != nil {
			obat.Kategori = strings.TrimSpace(*in.Kategori)
			columns = append(columns, "kategori")
		}
		if in.Satuan != nil {
			obat.Satuan = strings.TrimSpace(*in.Satuan)
			columns = append(columns, "satuan")
		}
		if in.StokMinimal != nil {
			obat.StokMinimal = *in.StokMinimal
			columns = append(columns, "stok_minimal")
		}
		if in.HargaBeli != nil {
			obat.HargaBeli = *in.HargaBeli
			columns = append(columns, "harga_beli")
		}
		if in.HargaJual != nil {
			obat.HargaJual = *in.HargaJual
			columns = append(columns, "harga_jual")
		}
		if in.TglKadaluarsa != nil {
			obat.TglKadaluarsa = *in.TglKadaluarsa
			columns = append(columns, "tgl_kadaluarsa")
		}
		if err := checkObat(obat); err != nil {
			return err
		}

		if err := tx.UpdateObat(ctx, obat, columns); err != nil {
			switch {
			case errors.Is(err, gorm.ErrDuplicatedKey):
				return apperr.Conflict("Kode obat %s sudah digunakan", obat.KodeObat)
			case errors.Is(err, gorm.ErrRecordNotFound):
				return apperr.NotFound("Obat tidak ditemukan")
			}
			return apperr.Internal("failed to update obat", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal("failed to update obat", err)
	}
	s.invalidateCatalog(ctx)
	return s.GetObat(ctx, id)
}

func (s *Service) DeleteObat(ctx context.Context, id int64) error {
	if err := s.store.DeleteObat(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return apperr.NotFound("Obat tidak ditemukan")
		case errors.Is(err, database.ErrReferenced):
			return apperr.Rule("Obat sudah memiliki riwayat transaksi dan tidak dapat dihapus")
		}
		return apperr.Internal("failed to delete obat", err)
	}
	s.invalidateCatalog(ctx)
	return nil
}

var obatCSVHeader = []string{
	"id", "kode_obat", "nama_obat", "kategori", "satuan", "stok", "stok_minimal",
	"harga_beli", "harga_jual", "tgl_kadaluarsa",
}

// ExportObatCSV writes the full catalog as CSV.
func (s *Service) ExportObatCSV(ctx context.Context, w io.Writer) error {
	items, err := s.store.ListObat(ctx, store.ObatFilter{})
	if err != nil {
		return apperr.Internal("failed to list obat", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(obatCSVHeader); err != nil {
		return apperr.Internal("failed to write csv", err)
	}
	for _, o := range items {
		record := []string{
			strconv.FormatInt(o.ID, 10),
			o.KodeObat,
			o.NamaObat,
			o.Kategori,
			o.Satuan,
			strconv.FormatInt(int64(o.Stok), 10),
			strconv.FormatInt(int64(o.StokMinimal), 10),
			o.HargaBeli.StringFixed(2),
			o.HargaJual.StringFixed(2),
			o.TglKadaluarsa.Format("2006-01-02"),
		}
		if err := cw.Write(record); err != nil {
			return apperr.Internal("failed to write csv", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperr.Internal("failed to write csv", err)
	}
	return nil
}
