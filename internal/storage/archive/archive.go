// Package archive stores finished run outputs in cold storage, either
// on the local filesystem or in an S3-compatible bucket.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nepselab/floorwatch/internal/config"
	"github.com/nepselab/floorwatch/internal/core"
)

// Store is a write-mostly blob store for run artifacts.
type Store interface {
	// Put stores data under the given key.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the data stored under the given key.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns all keys under the prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// New builds a Store from configuration.
func New(cfg config.ArchiveConfig) (Store, error) {
	switch cfg.Type {
	case "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type: %s", cfg.Type))
	}
}

// PutDir uploads every regular file directly inside dir, keyed as
// <prefix>/<filename>. Subdirectories are skipped.
func PutDir(ctx context.Context, store Store, prefix, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return core.WrapError(core.ErrArchiveFailed, err)
		}
		key := prefix + "/" + entry.Name()
		if err := store.Put(ctx, key, data); err != nil {
			return core.WrapError(core.ErrArchiveFailed, err)
		}
	}
	return nil
}
