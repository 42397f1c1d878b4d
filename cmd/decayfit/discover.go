package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cwbudde/algo-decay/dataset"
)

// folderLister finds dataset folders.
type folderLister interface {
	Folders(ctx context.Context) ([]string, error)
}

// dirLister lists the visible sub-directories of root by name.
type dirLister struct {
	root string
}

func (d dirLister) Folders(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", d.root, err)
	}

	var folders []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			folders = append(folders, e.Name())
		}
	}

	sort.Strings(folders)

	return folders, nil
}

type s3Lister struct {
	src *dataset.S3Source
}

func (l s3Lister) Folders(ctx context.Context) ([]string, error) {
	folders, err := l.src.Folders(ctx)
	if err != nil {
		return nil, err
	}

	sort.Strings(folders)

	return folders, nil
}
