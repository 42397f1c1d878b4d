package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-decay/measure/decay"
)

func writeDataset(t *testing.T, root, name, content string) string {
	t.Helper()

	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, TableFile), []byte(content), 0o644))

	return dir
}

func TestDirSourceLoad(t *testing.T) {
	root := t.TempDir()
	dir := writeDataset(t, root, "run-a", sampleTable)

	tbl, err := Load(context.Background(), DirSource{}, dir, 2, "y")
	require.NoError(t, err)
	assert.Len(t, tbl.Time, 3)

	// Relative folders resolve against Root.
	tbl, err = Load(context.Background(), DirSource{Root: root}, "run-a", 1, "y")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.25, 0.125}, tbl.Channels[0])
}

func TestDirSourceMissingTable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	_, err := Load(context.Background(), DirSource{Root: root}, "empty", 1, "y")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, decay.ErrInvalidInput)
}

func TestDirSourceCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DirSource{}.Open(ctx, t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadWrapsParseErrors(t *testing.T) {
	root := t.TempDir()
	writeDataset(t, root, "broken", "# t (s)\n0\n")

	_, err := Load(context.Background(), DirSource{Root: root}, "broken", 1, "y")
	require.ErrorIs(t, err, decay.ErrInvalidInput)
	assert.Contains(t, err.Error(), "broken")
}
