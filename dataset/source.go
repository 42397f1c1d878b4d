package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Source opens the table of a dataset folder.
type Source interface {
	Open(ctx context.Context, folder string) (io.ReadCloser, error)
}

// DirSource reads datasets from the local filesystem. Relative folders are
// resolved against Root.
type DirSource struct {
	Root string
}

// Open opens folder/table.txt.
func (d DirSource) Open(ctx context.Context, folder string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := folder
	if !filepath.IsAbs(path) && d.Root != "" {
		path = filepath.Join(d.Root, path)
	}

	f, err := os.Open(filepath.Join(path, TableFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}

	return f, nil
}

// Load opens folder through src and parses its table.
func Load(ctx context.Context, src Source, folder string, channels int, component string) (*Table, error) {
	rc, err := src.Open(ctx, folder)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	tbl, err := ParseTable(rc, channels, component)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", folder, err)
	}

	return tbl, nil
}
