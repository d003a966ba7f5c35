package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hyperjump/resumatch/internal/config"
)

// Footprint returns the bytes held on disk by a data directory: the SQLite
// database with its WAL and shared-memory files, the vector index, and every
// stored resume under the upload directory.
func Footprint(cfg config.StorageConfig) (int64, error) {
	paths := []string{cfg.VectorIndexPath, cfg.UploadDir}
	if cfg.DatabasePath != "" {
		paths = append(paths, cfg.DatabasePath, cfg.DatabasePath+"-wal", cfg.DatabasePath+"-shm")
	}
	return DiskUsageBytes(paths...)
}

// DiskUsageBytes sums the sizes of paths. Directories are walked recursively;
// empty and missing paths count as zero.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		err := filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
			return nil
		})
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
