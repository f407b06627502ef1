package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/aanand-mishra/registration-api/internal/config"
)

func TestOpenStorage_SQLite(t *testing.T) {
	cfg := &config.Config{Storage: config.Storage{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "nested", "app.db"),
	}}

	store, err := openStorage(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	if _, err := openStorage(&config.Config{Storage: config.Storage{Driver: "mongo"}}); err == nil {
		t.Fatalf("expected an error for an unknown driver")
	}
}

func TestSetupLogger_Levels(t *testing.T) {
	ctx := context.Background()
	if setupLogger("prod").Enabled(ctx, slog.LevelDebug) {
		t.Fatalf("prod must not log debug")
	}
	if !setupLogger("dev").Enabled(ctx, slog.LevelDebug) || !setupLogger("staging").Enabled(ctx, slog.LevelDebug) {
		t.Fatalf("dev and staging must log debug")
	}
}
