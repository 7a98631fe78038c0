package cliapp

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strconv"

	"lv2fix/internal/core/errors"
)

// createBackup moves path aside to path.ext, or to path.ext1, path.ext2, ...
// when that name is taken, and returns the name used. The name is reserved
// with an exclusive create before the rename so an existing backup is never
// replaced.
func createBackup(path, ext string) (string, error) {
	base := path + "." + ext
	for i := 0; ; i++ {
		backup := base
		if i > 0 {
			backup = base + strconv.Itoa(i)
		}
		f, err := os.OpenFile(backup, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if stderrors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", backupError(err, backup)
		}
		_ = f.Close()
		if err := os.Rename(path, backup); err != nil {
			_ = os.Remove(backup)
			return "", backupError(err, backup)
		}
		return backup, nil
	}
}

func backupError(err error, backup string) error {
	return errors.AddContext(errors.Wrap(err, errors.CodeConflict, "could not create backup"), errors.CtxPath, backup)
}
