package fs

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// WriteFileAtomic writes data to path via temp file + fsync + rename.
// Readers see either the old content or the new content, never a mix.
func WriteFileAtomic(fsys afero.Fs, path string, data []byte, perm os.FileMode) error {
	return install(fsys, path, "", data, perm)
}

// WriteFileAtomicWithBackup is WriteFileAtomic that first rotates the current
// content of path to backupPath.
//
// Sequence:
//  1. write temp file in the same directory, fsync, close
//  2. rename path -> backupPath (copy when the rename fails)
//  3. rename temp -> path
//  4. fsync the directory (best-effort)
//
// A crash between 2 and 3 leaves no primary but an intact backup, so a
// reader that falls back to the backup still sees the previous document.
// On failure the temp file is removed.
func WriteFileAtomicWithBackup(fsys afero.Fs, path, backupPath string, data []byte, perm os.FileMode) error {
	return install(fsys, path, backupPath, data, perm)
}

func install(fsys afero.Fs, path, backupPath string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = fsys.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = fsys.Chmod(tmpName, perm); err != nil {
		return err
	}

	if backupPath != "" {
		if err = rotateBackup(fsys, path, backupPath, perm); err != nil {
			return err
		}
	}

	if err = fsys.Rename(tmpName, path); err != nil {
		return err
	}

	_ = syncDir(fsys, dir)
	return nil
}

// rotateBackup moves the current primary to the backup slot.
// A missing primary is not an error.
func rotateBackup(fsys afero.Fs, path, backupPath string, perm os.FileMode) error {
	if _, err := fsys.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := fsys.Rename(path, backupPath); err == nil {
		return nil
	}
	// Rename can fail across odd mounts or when the backup is held open
	// (windows); a copy keeps the previous document recoverable.
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return err
	}
	return afero.WriteFile(fsys, backupPath, data, perm)
}
