package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"kasir-system/config"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert penerimaan: %w", &pgconn.PgError{Code: "23505"})
	if !IsUniqueViolation(dup) {
		t.Fatalf("expected wrapped 23505 to be detected")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatalf("foreign key violation is not a unique violation")
	}
	if IsUniqueViolation(errors.New("plain")) {
		t.Fatalf("plain error is not a unique violation")
	}
}

func TestNewConnectionRequiresDSN(t *testing.T) {
	if _, err := NewConnection(config.DBConfig{}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
}

func TestGormLoggerSlowQuery(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core), 10*time.Millisecond)

	l.Trace(context.Background(), time.Now().Add(-50*time.Millisecond), func() (string, int64) {
		return "SELECT * FROM obat", 3
	}, nil)

	if logs.FilterMessage("slow query").Len() != 1 {
		t.Fatalf("expected one slow query entry, got %d", logs.Len())
	}
}

func TestGormLoggerSilent(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core), time.Millisecond).LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT 1", 1
	}, errors.New("boom"))

	if logs.Len() != 0 {
		t.Fatalf("expected no output in silent mode, got %d", logs.Len())
	}
}
