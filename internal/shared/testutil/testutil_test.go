package testutil

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures records and attrs", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("dataset loaded", slog.String("source", "workbook"))
		logger.Error("load failed", slog.Int("code", 500))

		assert.Equal(t, 2, handler.Count())
		rec, ok := handler.Find("dataset")
		require.True(t, ok)
		assert.Equal(t, "workbook", rec.Attrs["source"])
		AssertLogContains(t, handler, slog.LevelError, "load failed")
	})

	t.Run("derived loggers share records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("component", "exporter")).WithGroup("req").Warn("slow", slog.Int("ms", 12))

		rec, ok := handler.Find("slow")
		require.True(t, ok)
		assert.Equal(t, "exporter", rec.Attrs["component"])
		assert.Equal(t, int64(12), rec.Attrs["req.ms"])
		AssertNoErrors(t, handler)
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.False(t, handler.ContainsMessage("error msg"))
	})
}

func TestWriteSampleWorkbook(t *testing.T) {
	dir := t.TempDir()

	path := WriteSampleWorkbook(t, dir, 1)
	assert.Equal(t, filepath.Join(dir, "data", "financial_data_us.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Company", rows[0][0])
	assert.Equal(t, "1", rows[1][2])
}
