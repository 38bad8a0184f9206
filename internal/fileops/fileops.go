// Package fileops implements the file operations that change both the
// repository and its state: rename, move to trash, restore, and trash
// listing/purge. Status is written only after the filesystem change
// succeeds.
package fileops

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/NielsdaWheelz/curator/internal/errors"
	"github.com/NielsdaWheelz/curator/internal/store"
)

// TrashDirName is the trash directory under the repository root.
const TrashDirName = ".curator_trash"

// Ops performs file operations for one repository.
type Ops struct {
	Fs     afero.Fs
	Store  *store.Store
	Logger zerolog.Logger
}

// New returns Ops for the store's repository on the OS filesystem.
func New(st *store.Store) *Ops {
	return &Ops{Fs: afero.NewOsFs(), Store: st, Logger: zerolog.Nop()}
}

// Root returns the repository root.
func (o *Ops) Root() string {
	return o.Store.Root
}

// TrashDir returns the absolute trash directory.
func (o *Ops) TrashDir() string {
	return filepath.Join(o.Root(), TrashDirName)
}

func (o *Ops) abs(rel string) string {
	return filepath.Join(o.Root(), filepath.FromSlash(store.Key(rel)))
}

// exists reports whether p exists without following a final symlink.
func (o *Ops) exists(p string) bool {
	if lst, ok := o.Fs.(afero.Lstater); ok {
		_, _, err := lst.LstatIfPossible(p)
		return err == nil
	}
	_, err := o.Fs.Stat(p)
	return err == nil
}

// statFile returns info for a regular file at rel, or E_FILE_NOT_FOUND.
// Paths outside the root are never found.
func (o *Ops) statFile(rel string) (os.FileInfo, error) {
	var info os.FileInfo
	var err error
	if !store.OutsideRoot(store.Key(rel)) {
		info, err = o.Fs.Stat(o.abs(rel))
	}
	if info == nil || err != nil || info.IsDir() {
		return nil, errors.NewWithDetails(errors.EFileNotFound,
			"File '"+rel+"' not found in repository.",
			map[string]string{"path": rel})
	}
	return info, nil
}

// splitExt splits name into stem and extension the way the trash
// disambiguator needs: "a.tar.gz" -> "a.tar", ".gz"; ".env" -> ".env", "".
func splitExt(name string) (string, string) {
	ext := path.Ext(strings.TrimLeft(name, "."))
	return name[:len(name)-len(ext)], ext
}
