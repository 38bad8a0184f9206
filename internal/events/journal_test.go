package events

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newJournal(t *testing.T) *Journal {
	t.Helper()
	j := NewJournal(t.TempDir())
	j.Now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return j
}

func TestAppendEvent(t *testing.T) {
	t.Run("creates file lazily", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sub", "journal.jsonl")
		e := Event{SchemaVersion: SchemaVersion, ID: "x", Timestamp: "2026-01-10T12:00:00Z", Event: TypeDelete}
		if err := AppendEvent(path, e); err != nil {
			t.Fatalf("AppendEvent() error = %v", err)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasSuffix(string(content), "\n") {
			t.Error("expected line to end with newline")
		}
		var parsed Event
		if err := json.Unmarshal(content, &parsed); err != nil {
			t.Fatalf("failed to parse JSON: %v", err)
		}
		if parsed.Event != TypeDelete || parsed.ID != "x" {
			t.Errorf("parsed = %+v", parsed)
		}
	})

	t.Run("appends multiple events", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "journal.jsonl")
		for _, id := range []string{"a", "b", "c"} {
			if err := AppendEvent(path, Event{ID: id, Event: TypeRename}); err != nil {
				t.Fatal(err)
			}
		}
		content, _ := os.ReadFile(path)
		lines := strings.Split(strings.TrimSpace(string(content)), "\n")
		if len(lines) != 3 {
			t.Errorf("got %d lines, want 3", len(lines))
		}
	})
}

func TestRecordFillsEnvelope(t *testing.T) {
	j := newJournal(t)
	e, err := j.Record(TypeRename, map[string]string{"old_path": "a", "new_path": "b"})
	if err != nil {
		t.Fatal(err)
	}
	if e.ID == "" || e.SchemaVersion != SchemaVersion {
		t.Errorf("envelope = %+v", e)
	}
	if e.Timestamp != "2025-01-02T03:04:05Z" {
		t.Errorf("timestamp = %q", e.Timestamp)
	}

	events, err := j.ReadAll()
	if err != nil || len(events) != 1 {
		t.Fatalf("ReadAll = %v, %v", events, err)
	}
	var data map[string]string
	if err := events[0].Decode(&data); err != nil {
		t.Fatal(err)
	}
	if data["new_path"] != "b" {
		t.Errorf("data = %v", data)
	}
}

func TestReadAllMissingAndMalformed(t *testing.T) {
	j := newJournal(t)
	events, err := j.ReadAll()
	if err != nil || events != nil {
		t.Fatalf("missing journal: %v, %v", events, err)
	}

	if _, err := j.Record(TypeDelete, nil); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(j.Path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("{not json\n\n{\"event\":\"rename\"}\n")
	_ = f.Close()
	if _, err := j.Record(TypeRename, nil); err != nil {
		t.Fatal(err)
	}

	events, err = j.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
}

func TestLastUndoable(t *testing.T) {
	j := newJournal(t)

	last, err := j.LastUndoable()
	if err != nil || last != nil {
		t.Fatalf("empty journal: %v, %v", last, err)
	}

	del, _ := j.Record(TypeDelete, nil)
	ren, _ := j.Record(TypeRename, nil)
	_, _ = j.Record(TypeTrashEmpty, nil)

	last, _ = j.LastUndoable()
	if last == nil || last.ID != ren.ID {
		t.Fatalf("LastUndoable = %+v, want rename", last)
	}

	_, _ = j.Record(TypeUndo, Reversal{Undoes: ren.ID})
	last, _ = j.LastUndoable()
	if last == nil || last.ID != del.ID {
		t.Fatalf("after undo = %+v, want delete", last)
	}

	_, _ = j.Record(TypeRestore, Reversal{Undoes: del.ID})
	last, _ = j.LastUndoable()
	if last != nil {
		t.Errorf("after restore = %+v, want nil", last)
	}
}
