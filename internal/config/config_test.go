package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Report.Format = "json"
	cfg.Input.Format = "csv"
	cfg.Clock.Today = "2024-01-15"
	cfg.History.Dir = "/var/lib/transfers"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "table", cfg.Report.Format)
	assert.Equal(t, "USD", cfg.Report.Currency)
	assert.Empty(t, cfg.Input.Format)
	assert.Empty(t, cfg.Clock.Today)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, ".", cfg.History.Dir)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("report:\n  format: csv\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Report.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.History.Enabled)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("report: [unclosed\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "format: table")
	assert.Contains(t, contents, "currency: USD")
	assert.Contains(t, contents, "enabled: true")
}

func TestToday(t *testing.T) {
	now := time.Date(2026, 3, 4, 15, 0, 0, 0, time.UTC)

	cfg := Default()
	got, err := cfg.Today(now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	cfg.Clock.Today = "2024-01-15"
	got, err = cfg.Today(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)

	cfg.Clock.Today = "15/01/2024"
	_, err = cfg.Today(now)
	assert.Error(t, err)
}

func TestToday_PinnedDateIgnoresLocalZone(t *testing.T) {
	jst := time.FixedZone("JST", 9*3600)
	cfg := Default()
	cfg.Clock.Today = "2023-12-15"

	got, err := cfg.Today(time.Date(2026, 3, 4, 8, 0, 0, 0, jst))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC), got)
}
