package export

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"webstudio/internal/config"
	"webstudio/internal/models"
	"webstudio/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportOrders(t *testing.T) {
	tempDir := t.TempDir()

	st, err := store.Open(filepath.Join(tempDir, "data"))
	require.NoError(t, err)

	base := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveOrders([]models.Order{
		{
			ID:           "1743501600000",
			CustomerName: "Анна",
			ServiceName:  "Лендинг",
			TotalPrice:   50000,
			Status:       models.StatusPending,
			CreatedAt:    base,
			UpdatedAt:    base,
		},
		{
			ID:           "1743588000000",
			CustomerName: "Борис",
			ServiceName:  "CRM",
			TotalPrice:   250000,
			Status:       models.StatusCompleted,
			CreatedAt:    base.AddDate(0, 0, 1),
			UpdatedAt:    base.AddDate(0, 0, 2),
		},
	}))

	logger := zerolog.Nop()
	exporter := NewExcelExporter(st, config.ExportConfig{Path: filepath.Join(tempDir, "exports")}, &logger)

	path, err := exporter.ExportOrders(context.Background())
	require.NoError(t, err)
	require.FileExists(t, path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ordersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Статус", rows[0][6])

	// Newest order first.
	assert.Equal(t, "1743588000000", rows[1][0])
	assert.Equal(t, "Завершен", rows[1][6])
	assert.Equal(t, "1743501600000", rows[2][0])
	assert.Equal(t, "Ожидает оплаты", rows[2][6])
}

func TestExportOrders_EmptyCollection(t *testing.T) {
	tempDir := t.TempDir()

	st, err := store.Open(filepath.Join(tempDir, "data"))
	require.NoError(t, err)

	logger := zerolog.Nop()
	exporter := NewExcelExporter(st, config.ExportConfig{Path: filepath.Join(tempDir, "exports")}, &logger)

	path, err := exporter.ExportOrders(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, path)
}
