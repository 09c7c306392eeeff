package service

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"frictionstudy/internal/observability"
)

func TestMain(m *testing.M) {
	observability.SetLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	os.Exit(m.Run())
}
