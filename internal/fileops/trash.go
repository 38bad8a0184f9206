package fileops

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/NielsdaWheelz/curator/internal/core"
	"github.com/NielsdaWheelz/curator/internal/errors"
	"github.com/NielsdaWheelz/curator/internal/fs"
	"github.com/NielsdaWheelz/curator/internal/store"
)

// DeleteUndo describes a file moved to trash. NewPath is relative to the
// repository root (".curator_trash/<name>").
type DeleteUndo struct {
	OriginalPath string `json:"original_path"`
	NewPath      string `json:"new_path"`
}

// TrashName returns the file name inside the trash directory.
func (u DeleteUndo) TrashName() string {
	return path.Base(u.NewPath)
}

// Delete moves the file at rel into the trash under a name that collides
// with nothing already there, then marks it deleted.
func (o *Ops) Delete(rel string) (DeleteUndo, error) {
	key := store.Key(rel)
	if _, err := o.statFile(key); err != nil {
		return DeleteUndo{}, err
	}
	if err := o.ensureTrash(); err != nil {
		return DeleteUndo{}, err
	}

	name := o.uniqueTrashName(path.Base(key))
	dest := filepath.Join(o.TrashDir(), name)
	if err := o.Fs.Rename(o.abs(key), dest); err != nil {
		return DeleteUndo{}, errors.WrapWithDetails(errors.ETrashFailed, "failed to move file to trash", err,
			map[string]string{"op": "delete", "path": key, "trash_path": dest})
	}

	undo := DeleteUndo{OriginalPath: key, NewPath: TrashDirName + "/" + name}
	if _, err := o.Store.UpdateStatus(key, string(core.StatusDeleted), nil, 0); err != nil {
		return undo, err
	}
	return undo, nil
}

// uniqueTrashName returns name, or "stem (n).ext" for the smallest n that
// is free in the trash.
func (o *Ops) uniqueTrashName(name string) string {
	if !o.exists(filepath.Join(o.TrashDir(), name)) {
		return name
	}
	stem, ext := splitExt(name)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if !o.exists(filepath.Join(o.TrashDir(), candidate)) {
			return candidate
		}
	}
}

func (o *Ops) ensureTrash() error {
	if err := o.Fs.MkdirAll(o.TrashDir(), 0o755); err != nil {
		return errors.WrapWithDetails(errors.ETrashFailed, "failed to create trash directory", err,
			map[string]string{"trash_path": o.TrashDir()})
	}
	if _, ok := o.Fs.(*afero.OsFs); ok {
		if err := setHidden(o.TrashDir()); err != nil {
			o.Logger.Debug().Err(err).Str("trash_path", o.TrashDir()).Msg("could not mark trash hidden")
		}
	}
	return nil
}

// Restore moves a trashed file back to its original path and puts it back
// in the review queue (decide_later), regardless of its earlier status.
func (o *Ops) Restore(u DeleteUndo) error {
	src := filepath.Join(o.Root(), filepath.FromSlash(u.NewPath))
	if info, err := o.Fs.Stat(src); err != nil || info.IsDir() {
		return errors.NewWithDetails(errors.ETrashNotFound,
			"File '"+u.TrashName()+"' not found in trash.",
			map[string]string{"op": "restore", "trash_path": u.NewPath})
	}
	key := store.Key(u.OriginalPath)
	if key == "" || store.OutsideRoot(key) {
		return errors.NewWithDetails(errors.EUsage,
			"restore target must be inside the repository",
			map[string]string{"op": "restore", "path": u.OriginalPath})
	}
	dest := o.abs(key)
	if o.exists(dest) {
		return errors.NewWithDetails(errors.ENameExists,
			"A file named '"+key+"' already exists.",
			map[string]string{"op": "restore", "path": key, "trash_path": u.NewPath})
	}
	if err := o.Fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.WrapWithDetails(errors.ETrashFailed, "failed to recreate parent directory", err,
			map[string]string{"op": "restore", "path": key})
	}
	if err := o.Fs.Rename(src, dest); err != nil {
		return errors.WrapWithDetails(errors.ETrashFailed, "failed to restore file from trash", err,
			map[string]string{"op": "restore", "path": key, "trash_path": u.NewPath})
	}
	_, err := o.Store.UpdateStatus(key, string(core.StatusDecideLater), nil, 0)
	return err
}

// RestoreByName restores the trash entry trashName to target (relative to
// the root). An empty target restores to the trash name at the root.
func (o *Ops) RestoreByName(trashName, target string) (DeleteUndo, error) {
	if trashName == "" || strings.ContainsAny(trashName, `/\`) {
		return DeleteUndo{}, errors.NewWithDetails(errors.EUsage,
			"trash entry must be a bare file name", map[string]string{"path": trashName})
	}
	if target == "" {
		target = trashName
	}
	u := DeleteUndo{OriginalPath: store.Key(target), NewPath: TrashDirName + "/" + trashName}
	return u, o.Restore(u)
}

// ListTrash returns the names of files in the trash, sorted
// case-insensitively. A missing trash directory is empty.
func (o *Ops) ListTrash() ([]string, error) {
	infos, err := afero.ReadDir(o.Fs, o.TrashDir())
	if err != nil {
		if ok, _ := afero.DirExists(o.Fs, o.TrashDir()); !ok {
			return []string{}, nil
		}
		return nil, errors.WrapWithDetails(errors.ETrashFailed, "failed to read trash", err,
			map[string]string{"trash_path": o.TrashDir()})
	}
	out := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		out = append(out, info.Name())
	}
	sortFold(out)
	return out, nil
}

// EmptyTrash permanently removes everything in the trash and leaves an
// empty trash directory. Returns the removed names. Not undoable.
func (o *Ops) EmptyTrash() ([]string, error) {
	var removed []string
	var err error
	if _, ok := o.Fs.(*afero.OsFs); ok {
		removed, err = fs.ClearDir(o.TrashDir())
	} else {
		removed, err = o.clearTrashVirtual()
	}
	if err != nil {
		return removed, errors.WrapWithDetails(errors.ETrashFailed, "failed to empty trash", err,
			map[string]string{"op": "trash empty", "trash_path": o.TrashDir()})
	}
	if err := o.ensureTrash(); err != nil {
		return removed, err
	}
	return removed, nil
}

func (o *Ops) clearTrashVirtual() ([]string, error) {
	infos, err := afero.ReadDir(o.Fs, o.TrashDir())
	if err != nil {
		if ok, _ := afero.DirExists(o.Fs, o.TrashDir()); !ok {
			return []string{}, nil
		}
		return nil, err
	}
	removed := make([]string, 0, len(infos))
	for _, info := range infos {
		if err := o.Fs.RemoveAll(filepath.Join(o.TrashDir(), info.Name())); err != nil {
			sortFold(removed)
			return removed, err
		}
		removed = append(removed, info.Name())
	}
	sortFold(removed)
	return removed, nil
}

func sortFold(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
}
