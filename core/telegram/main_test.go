package telegram

import (
	"os"
	"testing"

	"github.com/m3rciful/marybot/core/logger"
)

func TestMain(m *testing.M) {
	// Package loggers (logger.TG etc.) are nil until Init runs; initialize
	// them so handlers under test can log without panicking.
	_ = logger.Init(logger.LoggingSettings{Level: "error", Format: "kv"})
	code := m.Run()
	_ = logger.Shutdown()
	os.Exit(code)
}
