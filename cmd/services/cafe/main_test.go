package main

import (
	"strings"
	"testing"

	"kasir-system/config"

	"go.uber.org/zap"
)

func TestRunReturnsStartupErrors(t *testing.T) {
	err := run(config.Config{Service: "cafe", Env: "test"}, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "connect to db") {
		t.Fatalf("expected db connection error, got %v", err)
	}
}
