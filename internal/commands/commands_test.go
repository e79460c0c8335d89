package commands_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fundtrack/transfers/internal/commands"
	"github.com/fundtrack/transfers/internal/config"
)

const ledgerCSV = "../../testdata/transfers.csv"
const ledgerJSON = "../../testdata/transfers.json"

func runTransfers(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := commands.NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// projectConfig writes a config into a fresh directory with history kept there.
func projectConfig(t *testing.T, mutate func(*config.Config)) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.History.Dir = dir
	cfg.Clock.Today = "2024-01-15"
	if mutate != nil {
		mutate(cfg)
	}
	path := filepath.Join(dir, config.FileName)
	require.NoError(t, config.Save(path, cfg))
	return dir, path
}

func copyFile(t *testing.T, src, dst string) {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dst, data, 0o644))
}
