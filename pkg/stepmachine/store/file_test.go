package store_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/randalmurphal/stepmachine/pkg/stepmachine/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadMissingIsNotFound(t *testing.T) {
	st := store.NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	_, err := st.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFileStore_CleanMissingIsNoop(t *testing.T) {
	st := store.NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	assert.NoError(t, st.Clean(context.Background()))
}

func TestFileStore_RecordIsReadableJSONOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machine.json")
	st := store.NewFileStore(path)

	require.NoError(t, st.Save(context.Background(), []byte(`{"state": {"stage": "load"}}`)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"stage"`)
}

func TestFileStore_LoadErrorIsNotSwallowed(t *testing.T) {
	// A directory at the record path is an I/O error, not a missing
	// record.
	dir := t.TempDir()
	st := store.NewFileStore(dir)

	_, err := st.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestDefaultPath(t *testing.T) {
	path, err := store.DefaultPath()
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, ".json"))
	assert.True(t, filepath.IsAbs(path))

	// The stem is the running binary's own name.
	exe, err := os.Executable()
	require.NoError(t, err)
	stem := strings.TrimSuffix(exe, filepath.Ext(exe))
	assert.Equal(t, stem+".json", path)
}

func TestFileStore_Path(t *testing.T) {
	st := store.NewFileStore("/tmp/x.json")
	assert.Equal(t, "/tmp/x.json", st.Path())
}
