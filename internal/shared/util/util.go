package util

import (
	"bufio"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ContainsPathSeparator returns true when value includes either slash separator.
func ContainsPathSeparator(value string) bool {
	return strings.Contains(value, "/") || strings.Contains(value, "\\")
}

// WriteFileAtomic creates parent directories (0755), streams write into a
// temporary file next to path and renames it over path once it is complete.
// On failure path is left untouched and the temporary file is removed.
func WriteFileAtomic(path string, perm fs.FileMode, write func(io.Writer) error) error {
	return ReplaceFile(path, perm, write, nil)
}

// ReplaceFile is WriteFileAtomic with a hook: prepare runs once the temporary
// file is complete and synced, right before it is renamed over path. A write
// failure never reaches prepare, and a prepare failure leaves path as it was.
func ReplaceFile(path string, perm fs.FileMode, write func(io.Writer) error, prepare func() error) (err error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err = write(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if prepare != nil {
		if err = prepare(); err != nil {
			return err
		}
	}
	return os.Rename(tmp.Name(), path)
}
