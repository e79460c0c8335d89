package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_GetUnknown(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Get("nonexistent"))
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&CSVParser{})
	p := r.Get("csv")
	require.NotNil(t, p)
	assert.Equal(t, "csv", p.Format())
}

func TestRegistry_CaseInsensitive(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r.Get("CSV"))
	assert.NotNil(t, r.Get("Json"))
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Register(&JSONParser{})
	assert.Panics(t, func() { r.Register(&JSONParser{}) })
}

func TestRegistry_ForPath(t *testing.T) {
	r := DefaultRegistry()

	p, err := r.ForPath("/tmp/ledger.CSV")
	require.NoError(t, err)
	assert.Equal(t, "csv", p.Format())

	p, err = r.ForPath("export.json")
	require.NoError(t, err)
	assert.Equal(t, "json", p.Format())

	_, err = r.ForPath("ledger.xlsx")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFileSource_LoadByExtension(t *testing.T) {
	s := NewFileSource("")

	records, err := s.Load(context.Background(), "../../testdata/transfers.csv")
	require.NoError(t, err)
	assert.Len(t, records, 6)

	records, err = s.Load(context.Background(), "../../testdata/transfers.json")
	require.NoError(t, err)
	assert.Len(t, records, 6)
}

func TestFileSource_ExplicitFormat(t *testing.T) {
	src, err := os.ReadFile("../../testdata/transfers.json")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "export.txt")
	require.NoError(t, os.WriteFile(path, src, 0o644))

	records, err := NewFileSource("json").Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, records, 6)

	_, err = NewFileSource("").Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = NewFileSource("xml").Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFileSource_Errors(t *testing.T) {
	s := NewFileSource("")

	_, err := s.Load(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte(Header+"\ntx,bad,1,,A,B,,,,,,,\n"), 0o644))
	_, err = s.Load(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing csv ledger bad.csv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Load(ctx, "../../testdata/transfers.csv")
	assert.ErrorIs(t, err, context.Canceled)
}
