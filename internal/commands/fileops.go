package commands

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/NielsdaWheelz/curator/internal/errors"
	"github.com/NielsdaWheelz/curator/internal/events"
	"github.com/NielsdaWheelz/curator/internal/fileops"
	"github.com/NielsdaWheelz/curator/internal/ids"
	"github.com/NielsdaWheelz/curator/internal/render"
	"github.com/NielsdaWheelz/curator/internal/store"
	"github.com/NielsdaWheelz/curator/internal/tty"
)

// RenameOpts holds options for the rename command.
type RenameOpts struct {
	Old   string
	New   string
	JSON  bool
	Quiet bool
}

// Rename renames a file in place and records the rename for undo.
func Rename(_ context.Context, env *Env, opts RenameOpts, stdout, _ io.Writer) error {
	undo, err := env.Ops().Rename(opts.Old, opts.New)
	if err != nil {
		return err
	}
	env.record(events.TypeRename, undo)

	if opts.JSON {
		return writeJSON(stdout, struct {
			Result string `json:"result"`
			Old    string `json:"old"`
			New    string `json:"new"`
		}{"renamed", opts.Old, opts.New})
	}
	if !opts.Quiet {
		_, _ = fmt.Fprintf(stdout, "Renamed '%s' to '%s'.\n", undo.OldPath, undo.NewPath)
	}
	return nil
}

// DeleteOpts holds options for the delete command.
type DeleteOpts struct {
	File  string
	Yes   bool // skip the confirmation prompt
	JSON  bool
	Quiet bool
}

// Delete moves a file to the trash. On an interactive terminal it asks
// first unless Yes is set; declining is not an error.
func Delete(_ context.Context, env *Env, opts DeleteOpts, stdout, stderr io.Writer) error {
	rel := store.Key(opts.File)
	if err := env.requireFile(rel); err != nil {
		return err
	}
	if !opts.Yes && env.Interactive != nil && env.Interactive() {
		prompt := fmt.Sprintf("Delete '%s' (move to trash)? [y/N]: ", opts.File)
		if !tty.Confirm(env.Stdin, stderr, prompt) {
			if !opts.Quiet && !opts.JSON {
				_, _ = fmt.Fprintln(stdout, "Aborted.")
			}
			return nil
		}
	}

	undo, err := env.Ops().Delete(rel)
	if err != nil {
		return err
	}
	env.record(events.TypeDelete, undo)

	trashPath := filepath.Join(env.Repo, filepath.FromSlash(undo.NewPath))
	if opts.JSON {
		return writeJSON(stdout, struct {
			Result    string `json:"result"`
			Filename  string `json:"filename"`
			TrashPath string `json:"trash_path"`
		}{"deleted", opts.File, trashPath})
	}
	if !opts.Quiet {
		_, _ = fmt.Fprintf(stdout, "Moved '%s' to trash as '%s'.\n", opts.File, undo.TrashName())
	}
	return nil
}

// RestoreOpts holds options for the restore command.
type RestoreOpts struct {
	File  string // name inside the trash
	To    string // destination; empty: journaled original path, else the name
	JSON  bool
	Quiet bool
}

// restoreEvent is the journal payload of a restore.
type restoreEvent struct {
	events.Reversal
	fileops.DeleteUndo
}

// Restore moves a file out of the trash and back into review. File may be
// a unique prefix of a trash name.
func Restore(_ context.Context, env *Env, opts RestoreOpts, stdout, _ io.Writer) error {
	name, err := resolveTrashName(env, opts.File)
	if err != nil {
		return err
	}
	target := opts.To
	var deleteID string
	if ev, u, ok := lastDeleteOf(env, name); ok {
		deleteID = ev.ID
		if target == "" {
			target = u.OriginalPath
		}
	}

	undo, err := env.Ops().RestoreByName(name, target)
	if err != nil {
		return err
	}
	env.record(events.TypeRestore, restoreEvent{events.Reversal{Undoes: deleteID}, undo})

	if opts.JSON {
		return writeJSON(stdout, struct {
			Result     string `json:"result"`
			Filename   string `json:"filename"`
			RestoredTo string `json:"restored_to"`
		}{"restored", name, undo.OriginalPath})
	}
	if !opts.Quiet {
		_, _ = fmt.Fprintf(stdout, "Restored '%s' to '%s'.\n", name, undo.OriginalPath)
	}
	return nil
}

// resolveTrashName expands input to a trash name by exact match or unique
// prefix. Names that match nothing pass through so the restore reports
// E_TRASH_NOT_FOUND itself.
func resolveTrashName(env *Env, input string) (string, error) {
	if strings.ContainsAny(input, `/\`) {
		return input, nil
	}
	names, err := env.Ops().ListTrash()
	if err != nil {
		return "", err
	}
	name, err := ids.Resolve(input, names)
	if err == nil {
		return name, nil
	}
	var amb *ids.ErrAmbiguous
	if stderrors.As(err, &amb) {
		return "", errors.NewWithDetails(errors.EUsage,
			fmt.Sprintf("'%s' matches several files in the trash: %s", input, strings.Join(amb.Candidates, ", ")),
			map[string]string{"hint": "use the full trash name"})
	}
	return input, nil
}

// lastDeleteOf finds the newest unreversed delete that put trashName in
// the trash.
func lastDeleteOf(env *Env, trashName string) (events.Event, fileops.DeleteUndo, bool) {
	all, err := env.Journal().ReadAll()
	if err != nil {
		env.Logger.Warn().Err(err).Msg("failed to read journal; restoring to the trash name")
		return events.Event{}, fileops.DeleteUndo{}, false
	}
	reversed := events.Reversed(all)
	for i := len(all) - 1; i >= 0; i-- {
		ev := all[i]
		if ev.Event != events.TypeDelete || reversed[ev.ID] {
			continue
		}
		var u fileops.DeleteUndo
		if err := ev.Decode(&u); err != nil {
			continue
		}
		if u.TrashName() == trashName {
			return ev, u, true
		}
	}
	return events.Event{}, fileops.DeleteUndo{}, false
}

// UndoOpts holds options for the undo command.
type UndoOpts struct {
	JSON  bool
	Quiet bool
}

// Undo reverses the most recent journaled rename or delete that has not
// already been reversed.
func Undo(_ context.Context, env *Env, opts UndoOpts, stdout, _ io.Writer) error {
	ev, err := env.Journal().LastUndoable()
	if err != nil {
		return errors.Wrap(errors.EInternal, "failed to read journal", err)
	}
	if ev == nil {
		return errors.NewWithDetails(errors.ENothingToUndo, "Nothing to undo.",
			map[string]string{"hint": "only rename and delete can be undone"})
	}

	ops := env.Ops()
	var summary string
	switch ev.Event {
	case events.TypeRename:
		var u fileops.RenameUndo
		if err := ev.Decode(&u); err != nil {
			return errors.Wrap(errors.EInternal, "corrupt rename entry in journal", err)
		}
		if err := ops.UndoRename(u); err != nil {
			return err
		}
		summary = fmt.Sprintf("Renamed '%s' back to '%s'.", u.NewPath, u.OldPath)
	case events.TypeDelete:
		var u fileops.DeleteUndo
		if err := ev.Decode(&u); err != nil {
			return errors.Wrap(errors.EInternal, "corrupt delete entry in journal", err)
		}
		if err := ops.Restore(u); err != nil {
			return err
		}
		summary = fmt.Sprintf("Restored '%s' from trash.", u.OriginalPath)
	}
	env.record(events.TypeUndo, events.Reversal{Undoes: ev.ID})

	if opts.JSON {
		return writeJSON(stdout, struct {
			Result string      `json:"result"`
			Event  events.Type `json:"event"`
			ID     string      `json:"id"`
		}{"undone", ev.Event, ev.ID})
	}
	if !opts.Quiet {
		_, _ = fmt.Fprintln(stdout, summary)
	}
	return nil
}

// TrashListOpts holds options for trash list.
type TrashListOpts struct {
	JSON  bool
	Quiet bool
}

// TrashList lists the trash.
func TrashList(_ context.Context, env *Env, opts TrashListOpts, stdout, _ io.Writer) error {
	names, err := env.Ops().ListTrash()
	if err != nil {
		return err
	}
	if opts.JSON {
		return writeJSON(stdout, struct {
			Files []string `json:"files"`
			Count int      `json:"count"`
		}{names, len(names)})
	}
	if opts.Quiet {
		return nil
	}
	return render.WriteTrash(stdout, names)
}

// TrashEmptyOpts holds options for trash empty.
type TrashEmptyOpts struct {
	Yes   bool
	JSON  bool
	Quiet bool
}

// TrashEmpty permanently purges the trash. It requires Yes; this cannot be
// undone.
func TrashEmpty(_ context.Context, env *Env, opts TrashEmptyOpts, stdout, _ io.Writer) error {
	if !opts.Yes {
		return errors.NewWithDetails(errors.EConfirmationRequired, "--yes is required to empty the trash",
			map[string]string{"op": "trash empty"})
	}
	removed, err := env.Ops().EmptyTrash()
	if err != nil {
		return err
	}
	env.record(events.TypeTrashEmpty, map[string][]string{"removed": removed})

	if opts.JSON {
		return writeJSON(stdout, struct {
			Result  string   `json:"result"`
			Removed int      `json:"removed"`
			Files   []string `json:"files"`
		}{"emptied", len(removed), removed})
	}
	if !opts.Quiet {
		_, _ = fmt.Fprintf(stdout, "Emptied trash: removed %d item(s).\n", len(removed))
	}
	return nil
}
