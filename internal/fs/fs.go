// Package fs provides filesystem utilities for curator on top of afero:
// atomic file install with backup rotation, and guarded removal.
package fs

import (
	"os"

	"github.com/spf13/afero"
)

// syncDir fsyncs dir so a preceding rename is durable. Only the OS
// filesystem has anything to sync; errors are ignored by callers since
// some platforms cannot open directories for sync.
func syncDir(fsys afero.Fs, dir string) error {
	if _, ok := fsys.(*afero.OsFs); !ok {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
