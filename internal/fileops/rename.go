package fileops

import (
	"path"

	"github.com/NielsdaWheelz/curator/internal/core"
	"github.com/NielsdaWheelz/curator/internal/errors"
	"github.com/NielsdaWheelz/curator/internal/store"
)

// RenameUndo describes a completed rename. Previous is the record that was
// stored under OldPath before the rename (nil if there was none).
type RenameUndo struct {
	OldPath  string            `json:"old_path"`
	NewPath  string            `json:"new_path"`
	Previous *store.FileRecord `json:"previous,omitempty"`
}

// Rename renames the file at rel to newName in the same directory and moves
// its record to the new key with status renamed.
//
// Fails with E_INVALID_NAME, E_FILE_NOT_FOUND, or E_NAME_EXISTS before
// touching anything.
func (o *Ops) Rename(rel, newName string) (RenameUndo, error) {
	if err := core.ValidateFileName(newName); err != nil {
		return RenameUndo{}, err
	}
	oldKey := store.Key(rel)
	if _, err := o.statFile(oldKey); err != nil {
		return RenameUndo{}, err
	}
	newKey := path.Join(path.Dir(oldKey), newName)
	if o.exists(o.abs(newKey)) {
		return RenameUndo{}, errors.NewWithDetails(errors.ENameExists,
			"A file named '"+newName+"' already exists.",
			map[string]string{"op": "rename", "path": oldKey, "new_path": newKey})
	}

	if err := o.Fs.Rename(o.abs(oldKey), o.abs(newKey)); err != nil {
		return RenameUndo{}, errors.WrapWithDetails(errors.ERenameFailed, "failed to rename file", err,
			map[string]string{"op": "rename", "path": oldKey, "new_path": newKey})
	}

	undo := RenameUndo{OldPath: oldKey, NewPath: newKey}
	err := o.Store.Update(func(doc *store.Document) error {
		if prev, ok := doc.Get(oldKey); ok {
			undo.Previous = prev.Clone()
		}
		rec := doc.Move(oldKey, newKey)
		rec.SetStatus(core.StatusRenamed, 0, o.Store.Clock())
		return nil
	})
	if err != nil {
		// keep disk and state consistent: put the file back
		if rbErr := o.Fs.Rename(o.abs(newKey), o.abs(oldKey)); rbErr != nil {
			o.Logger.Error().Err(rbErr).Str("path", newKey).Msg("failed to roll back rename after state write failure")
		}
		return RenameUndo{}, err
	}
	return undo, nil
}

// UndoRename reverses a rename: the file moves back and the previous
// record (if any) is restored under the old key.
func (o *Ops) UndoRename(u RenameUndo) error {
	if _, err := o.statFile(u.NewPath); err != nil {
		return err
	}
	if o.exists(o.abs(u.OldPath)) {
		return errors.NewWithDetails(errors.ENameExists,
			"A file named '"+path.Base(u.OldPath)+"' already exists.",
			map[string]string{"op": "undo", "path": u.NewPath, "new_path": u.OldPath})
	}
	if err := o.Fs.Rename(o.abs(u.NewPath), o.abs(u.OldPath)); err != nil {
		return errors.WrapWithDetails(errors.ERenameFailed, "failed to rename file back", err,
			map[string]string{"op": "undo", "path": u.NewPath, "new_path": u.OldPath})
	}
	return o.Store.Update(func(doc *store.Document) error {
		doc.Delete(u.NewPath)
		if u.Previous != nil {
			rec := u.Previous.Clone()
			rec.Touch(o.Store.Clock())
			doc.Set(u.OldPath, rec)
		}
		return nil
	})
}
