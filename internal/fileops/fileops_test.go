package fileops

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/NielsdaWheelz/curator/internal/core"
	"github.com/NielsdaWheelz/curator/internal/errors"
	"github.com/NielsdaWheelz/curator/internal/lock"
	"github.com/NielsdaWheelz/curator/internal/store"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newOps(t *testing.T) (*Ops, string) {
	t.Helper()
	root := t.TempDir()
	st := store.NewStore(afero.NewOsFs(), root, func() time.Time { return fixedNow })
	return New(st), root
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	return string(data)
}

func TestRenameMovesFileAndRecord(t *testing.T) {
	ops, root := newOps(t)
	writeFile(t, root, "draft.txt", "hello")
	if _, err := ops.Store.UpdateStatus("draft.txt", "keep", []string{"work"}, 30); err != nil {
		t.Fatal(err)
	}

	undo, err := ops.Rename("draft.txt", "final.txt")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if undo.OldPath != "draft.txt" || undo.NewPath != "final.txt" {
		t.Errorf("undo = %+v", undo)
	}
	if undo.Previous == nil || undo.Previous.Status != core.StatusKeep {
		t.Errorf("previous record not captured: %+v", undo.Previous)
	}
	if got := readFile(t, filepath.Join(root, "final.txt")); got != "hello" {
		t.Errorf("content = %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, "draft.txt")); !os.IsNotExist(err) {
		t.Error("old path still exists")
	}

	doc := ops.Store.Load()
	if _, ok := doc.Get("draft.txt"); ok {
		t.Error("old key still in state")
	}
	rec, ok := doc.Get("final.txt")
	if !ok {
		t.Fatal("new key missing")
	}
	if rec.Status != core.StatusRenamed {
		t.Errorf("status = %q, want renamed", rec.Status)
	}
	if !reflect.DeepEqual(rec.Tags, []string{"work"}) {
		t.Errorf("tags = %v", rec.Tags)
	}
	if rec.ExpiryDate != "" || rec.KeepDays != 0 {
		t.Errorf("keep fields not cleared: %+v", rec)
	}
}

func TestRenameInSubdirectory(t *testing.T) {
	ops, root := newOps(t)
	writeFile(t, root, "docs/a.md", "x")

	undo, err := ops.Rename("docs/a.md", "b.md")
	if err != nil {
		t.Fatal(err)
	}
	if undo.NewPath != "docs/b.md" {
		t.Errorf("NewPath = %q", undo.NewPath)
	}
	if _, err := os.Stat(filepath.Join(root, "docs", "b.md")); err != nil {
		t.Error(err)
	}
	if _, ok := ops.Store.Get("docs/b.md"); !ok {
		t.Error("state not keyed by new relative path")
	}
}

func TestRenameFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   []string
		from    string
		to      string
		want    errors.Code
		touched bool
	}{
		{"target exists", []string{"a.txt", "b.txt"}, "a.txt", "b.txt", errors.ENameExists, false},
		{"source missing", nil, "a.txt", "b.txt", errors.EFileNotFound, false},
		{"name with slash", []string{"a.txt"}, "a.txt", "sub/b.txt", errors.EInvalidName, false},
		{"empty name", []string{"a.txt"}, "a.txt", "  ", errors.EInvalidName, false},
		{"dot name", []string{"a.txt"}, "a.txt", ".hidden", errors.EInvalidName, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, root := newOps(t)
			for _, f := range tt.setup {
				writeFile(t, root, f, f)
			}
			_, err := ops.Rename(tt.from, tt.to)
			if got := errors.GetCode(err); got != tt.want {
				t.Fatalf("code = %q, want %q (err %v)", got, tt.want, err)
			}
			for _, f := range tt.setup {
				if got := readFile(t, filepath.Join(root, f)); got != f {
					t.Errorf("%s content changed to %q", f, got)
				}
			}
			if _, err := os.Stat(ops.Store.StatePath()); !os.IsNotExist(err) {
				t.Error("state file written on failed rename")
			}
		})
	}
}

func TestUndoRenameRestoresRecord(t *testing.T) {
	ops, root := newOps(t)
	writeFile(t, root, "a.txt", "x")
	if _, err := ops.Store.UpdateStatus("a.txt", "keep_forever", nil, 0); err != nil {
		t.Fatal(err)
	}
	undo, err := ops.Rename("a.txt", "b.txt")
	if err != nil {
		t.Fatal(err)
	}
	if err := ops.UndoRename(undo); err != nil {
		t.Fatalf("UndoRename: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "a.txt")); err != nil {
		t.Error("file not moved back")
	}
	doc := ops.Store.Load()
	if _, ok := doc.Get("b.txt"); ok {
		t.Error("renamed key still present")
	}
	rec, ok := doc.Get("a.txt")
	if !ok || rec.Status != core.StatusKeepForever {
		t.Errorf("record = %+v, %v", rec, ok)
	}
}

func TestUndoRenameWithoutPriorRecord(t *testing.T) {
	ops, root := newOps(t)
	writeFile(t, root, "a.txt", "x")
	undo, err := ops.Rename("a.txt", "b.txt")
	if err != nil {
		t.Fatal(err)
	}
	if err := ops.UndoRename(undo); err != nil {
		t.Fatal(err)
	}
	if ops.Store.Load().Len() != 0 {
		t.Error("undo of an untracked file should leave no record")
	}
}

func TestDeleteMovesToTrash(t *testing.T) {
	ops, root := newOps(t)
	writeFile(t, root, "old.log", "bytes")

	undo, err := ops.Delete("old.log")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if undo.NewPath != ".curator_trash/old.log" || undo.OriginalPath != "old.log" {
		t.Errorf("undo = %+v", undo)
	}
	if got := readFile(t, filepath.Join(root, TrashDirName, "old.log")); got != "bytes" {
		t.Errorf("trash content = %q", got)
	}
	if _, err := os.Stat(filepath.Join(root, "old.log")); !os.IsNotExist(err) {
		t.Error("original still present")
	}
	rec, ok := ops.Store.Get("old.log")
	if !ok || rec.Status != core.StatusDeleted {
		t.Errorf("record = %+v", rec)
	}
}

func TestDeleteDisambiguatesNames(t *testing.T) {
	ops, root := newOps(t)
	writeFile(t, root, TrashDirName+"/dup.txt", "earlier")
	writeFile(t, root, "dup.txt", "first")

	undo, err := ops.Delete("dup.txt")
	if err != nil {
		t.Fatal(err)
	}
	if undo.TrashName() != "dup (1).txt" {
		t.Fatalf("trash name = %q, want %q", undo.TrashName(), "dup (1).txt")
	}

	writeFile(t, root, "dup.txt", "second")
	undo, err = ops.Delete("dup.txt")
	if err != nil {
		t.Fatal(err)
	}
	if undo.TrashName() != "dup (2).txt" {
		t.Errorf("trash name = %q, want %q", undo.TrashName(), "dup (2).txt")
	}
	if got := readFile(t, filepath.Join(root, TrashDirName, "dup.txt")); got != "earlier" {
		t.Errorf("existing trash entry overwritten: %q", got)
	}
}

func TestDeleteMissingFile(t *testing.T) {
	ops, _ := newOps(t)
	_, err := ops.Delete("nope.txt")
	if errors.GetCode(err) != errors.EFileNotFound {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(ops.Store.StatePath()); !os.IsNotExist(err) {
		t.Error("state written for failed delete")
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	ops, root := newOps(t)
	writeFile(t, root, "sub/report.pdf", "pdf")
	if _, err := ops.Store.UpdateStatus("sub/report.pdf", "keep_forever", nil, 0); err != nil {
		t.Fatal(err)
	}
	undo, err := ops.Delete("sub/report.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(root, "sub")); err != nil {
		t.Fatal(err)
	}

	if err := ops.Restore(undo); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := readFile(t, filepath.Join(root, "sub", "report.pdf")); got != "pdf" {
		t.Errorf("content = %q", got)
	}
	rec, _ := ops.Store.Get("sub/report.pdf")
	if rec.Status != core.StatusDecideLater {
		t.Errorf("status = %q, want decide_later", rec.Status)
	}
}

func TestRestoreFailures(t *testing.T) {
	ops, root := newOps(t)
	writeFile(t, root, "a.txt", "trashed")
	undo, err := ops.Delete("a.txt")
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, root, "a.txt", "new")

	if err := ops.Restore(undo); errors.GetCode(err) != errors.ENameExists {
		t.Fatalf("occupied target: err = %v", err)
	}
	if got := readFile(t, filepath.Join(root, "a.txt")); got != "new" {
		t.Error("existing file clobbered")
	}

	_, err = ops.RestoreByName("ghost.txt", "")
	if errors.GetCode(err) != errors.ETrashNotFound {
		t.Fatalf("missing trash entry: err = %v", err)
	}
	if _, err := ops.RestoreByName("../x", ""); errors.GetCode(err) != errors.EUsage {
		t.Errorf("path traversal: err = %v", err)
	}
}

func TestPathsOutsideRootAreRejected(t *testing.T) {
	tests := []struct {
		name     string
		rel      string
		op       func(o *Ops, rel string) error
		wantCode errors.Code
	}{
		{"rename parent", "../outside.txt", func(o *Ops, rel string) error {
			_, err := o.Rename(rel, "moved.txt")
			return err
		}, errors.EFileNotFound},
		{"rename through subdir", "sub/../../outside.txt", func(o *Ops, rel string) error {
			_, err := o.Rename(rel, "moved.txt")
			return err
		}, errors.EFileNotFound},
		{"delete parent", "../outside.txt", func(o *Ops, rel string) error {
			_, err := o.Delete(rel)
			return err
		}, errors.EFileNotFound},
		{"restore target", "../outside.txt", func(o *Ops, rel string) error {
			_, err := o.RestoreByName("x.txt", rel)
			return err
		}, errors.EUsage},
		{"status write", "../outside.txt", func(o *Ops, rel string) error {
			_, err := o.Store.UpdateStatus(rel, "keep_forever", nil, 0)
			return err
		}, errors.EUsage},
		{"tag write", "../outside.txt", func(o *Ops, rel string) error {
			_, err := o.Store.ManageTags(rel, []string{"x"}, nil)
			return err
		}, errors.EUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent := t.TempDir()
			root := filepath.Join(parent, "repo")
			writeFile(t, root, TrashDirName+"/x.txt", "x")
			writeFile(t, parent, "outside.txt", "keep me")
			ops := New(store.NewStore(afero.NewOsFs(), root, func() time.Time { return fixedNow }))

			err := tt.op(ops, tt.rel)
			if code := errors.GetCode(err); code != tt.wantCode {
				t.Fatalf("err = %v, want %s", err, tt.wantCode)
			}
			if got := readFile(t, filepath.Join(parent, "outside.txt")); got != "keep me" {
				t.Errorf("outside file changed: %q", got)
			}
			for _, p := range []string{filepath.Join(parent, "moved.txt"), filepath.Join(root, TrashDirName, "outside.txt")} {
				if _, err := os.Stat(p); !os.IsNotExist(err) {
					t.Errorf("%s should not exist", p)
				}
			}
			if _, err := os.Stat(ops.Store.StatePath()); !os.IsNotExist(err) {
				t.Error("state written for an outside path")
			}
		})
	}
}

func TestRestoreByNameToTarget(t *testing.T) {
	ops, root := newOps(t)
	writeFile(t, root, TrashDirName+"/x.txt", "x")
	u, err := ops.RestoreByName("x.txt", "back/x.txt")
	if err != nil {
		t.Fatal(err)
	}
	if u.OriginalPath != "back/x.txt" {
		t.Errorf("OriginalPath = %q", u.OriginalPath)
	}
	if got := readFile(t, filepath.Join(root, "back", "x.txt")); got != "x" {
		t.Errorf("content = %q", got)
	}
}

func TestListAndEmptyTrash(t *testing.T) {
	ops, root := newOps(t)

	names, err := ops.ListTrash()
	if err != nil || len(names) != 0 {
		t.Fatalf("missing trash: %v, %v", names, err)
	}

	writeFile(t, root, TrashDirName+"/b.txt", "")
	writeFile(t, root, TrashDirName+"/A.txt", "")
	writeFile(t, root, TrashDirName+"/nested/c.txt", "")

	names, err = ops.ListTrash()
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"A.txt", "b.txt"}; !reflect.DeepEqual(names, want) {
		t.Errorf("ListTrash = %v, want %v", names, want)
	}

	removed, err := ops.EmptyTrash()
	if err != nil {
		t.Fatalf("EmptyTrash: %v", err)
	}
	if want := []string{"A.txt", "b.txt", "nested"}; !reflect.DeepEqual(removed, want) {
		t.Errorf("removed = %v, want %v", removed, want)
	}
	info, err := os.Stat(filepath.Join(root, TrashDirName))
	if err != nil || !info.IsDir() {
		t.Fatal("trash directory not recreated")
	}
	names, _ = ops.ListTrash()
	if len(names) != 0 {
		t.Errorf("trash not empty: %v", names)
	}
}

func TestOpsOnMemFs(t *testing.T) {
	mem := afero.NewMemMapFs()
	root := "/repo"
	if err := afero.WriteFile(mem, "/repo/a.txt", []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	st := store.NewStore(mem, root, func() time.Time { return fixedNow })
	st.Locker = lock.NewProcessLock(st.LockPath())
	ops := &Ops{Fs: mem, Store: st}

	if _, err := ops.Delete("a.txt"); err != nil {
		t.Fatal(err)
	}
	removed, err := ops.EmptyTrash()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(removed, []string{"a.txt"}) {
		t.Errorf("removed = %v", removed)
	}
}

func TestSplitExt(t *testing.T) {
	tests := []struct{ in, stem, ext string }{
		{"a.txt", "a", ".txt"},
		{"a.tar.gz", "a.tar", ".gz"},
		{".env", ".env", ""},
		{"noext", "noext", ""},
	}
	for _, tt := range tests {
		stem, ext := splitExt(tt.in)
		if stem != tt.stem || ext != tt.ext {
			t.Errorf("splitExt(%q) = %q, %q", tt.in, stem, ext)
		}
	}
}
