package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medtransit/internal/platform/config"
	"medtransit/internal/transfer/models"
	transferservice "medtransit/internal/transfer/service"
)

func TestOpenStoresInMemoryWithSeed(t *testing.T) {
	agendaID := uuid.New()
	seed := filepath.Join(t.TempDir(), "directory.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`
agendas:
  - id: `+agendaID.String()+`
    driver_name: Ana Gómez
    active: true
`), 0o600))

	cfg := &config.Config{Directory: config.Directory{SeedFile: seed}}
	stores, err := OpenStores(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer func() { _ = stores.Close() }()

	assert.Nil(t, stores.DB())
	agenda, err := stores.Directory.FindAgenda(context.Background(), agendaID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Gómez", agenda.DriverName)

	err = stores.Tx.RunInTx(context.Background(), func(ctx context.Context, store transferservice.Store) error {
		list, err := store.ListSchedules(ctx, models.ScheduleFilter{})
		assert.Empty(t, list)
		return err
	})
	require.NoError(t, err)
}

func TestOpenStoresMissingSeed(t *testing.T) {
	cfg := &config.Config{Directory: config.Directory{SeedFile: filepath.Join(t.TempDir(), "missing.yaml")}}
	_, err := OpenStores(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}
