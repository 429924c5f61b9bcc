package storage

import (
	"errors"
	"io/fs"
	"path/filepath"
)

// DiskUsageBytes sums the on-disk size of the chunk database and keyword index.
// Directories are walked recursively. "", ":memory:" and missing paths count as zero.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" || p == ":memory:" {
			continue
		}
		n, err := pathSize(p)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func pathSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
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
		size += info.Size()
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	return size, err
}

// IndexDiskUsage reports the bytes used by a SQLite chunk database, including its
// WAL sidecar files, and a bleve index directory.
func IndexDiskUsage(dbPath, bleveIndexPath string) (int64, error) {
	paths := []string{bleveIndexPath}
	if dbPath != "" && dbPath != ":memory:" {
		paths = append(paths, dbPath, dbPath+"-wal", dbPath+"-shm")
	}
	return DiskUsageBytes(paths...)
}
