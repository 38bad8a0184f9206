// Package events keeps the per-repository action journal.
// Events are stored in an append-only JSONL file next to the state file;
// the journal is what makes rename and delete undoable.
package events

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JournalFileName is the journal file in the repository root.
const JournalFileName = ".curator_journal.jsonl"

// SchemaVersion is written on every event.
const SchemaVersion = "1.0"

// Type names an event.
type Type string

const (
	TypeRename     Type = "rename"
	TypeDelete     Type = "delete"
	TypeRestore    Type = "restore"
	TypeTrashEmpty Type = "trash_empty"
	TypeRulesApply Type = "rules_apply"
	TypeUndo       Type = "undo"
)

// Undoable reports whether events of this type can be reversed by undo.
func (t Type) Undoable() bool {
	return t == TypeRename || t == TypeDelete
}

// Event represents a single line in the journal.
// This is the public contract for the journal format.
type Event struct {
	SchemaVersion string          `json:"schema_version"`
	ID            string          `json:"id"`
	Timestamp     string          `json:"timestamp"` // RFC3339
	Event         Type            `json:"event"`
	Data          json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals the event data into v.
func (e Event) Decode(v any) error {
	if len(e.Data) == 0 {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// Reversal is the data of undo and restore events that reverse an earlier
// event. Undoes is that event's id.
type Reversal struct {
	Undoes string `json:"undoes,omitempty"`
}

// AppendEvent appends a single event to the file at path.
// The file is created lazily if it doesn't exist.
// Each event is written as a single JSON line followed by newline.
func AppendEvent(path string, e Event) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = f.Write(data)
	return err
}

// Journal reads and appends events for one repository.
type Journal struct {
	Path   string
	Now    func() time.Time
	Logger zerolog.Logger
}

// NewJournal returns the journal for the repository at root.
func NewJournal(root string) *Journal {
	return &Journal{
		Path:   filepath.Join(root, JournalFileName),
		Now:    time.Now,
		Logger: zerolog.Nop(),
	}
}

// Record appends an event of type typ carrying data and returns it.
//
// Best-effort: the returned error is for logging; callers continue with
// the main operation.
func (j *Journal) Record(typ Type, data any) (Event, error) {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	e := Event{
		SchemaVersion: SchemaVersion,
		ID:            uuid.NewString(),
		Timestamp:     now().UTC().Format(time.RFC3339),
		Event:         typ,
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return e, err
		}
		e.Data = raw
	}
	if err := AppendEvent(j.Path, e); err != nil {
		j.Logger.Warn().Err(err).Str("journal", j.Path).Str("event", string(typ)).Msg("failed to append journal event")
		return e, err
	}
	return e, nil
}

// ReadAll returns every well-formed event in file order. A missing journal
// is empty; malformed lines are skipped with a warning.
func (j *Journal) ReadAll() ([]Event, error) {
	data, err := os.ReadFile(j.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Event
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(b, &e); err != nil || e.ID == "" {
			j.Logger.Warn().Int("line", line).Str("journal", j.Path).Msg("skipping malformed journal line")
			continue
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// Reversed returns the ids of events that a later undo or restore event
// reversed.
func Reversed(events []Event) map[string]bool {
	out := make(map[string]bool)
	for _, e := range events {
		if e.Event != TypeUndo && e.Event != TypeRestore {
			continue
		}
		var r Reversal
		if err := e.Decode(&r); err == nil && r.Undoes != "" {
			out[r.Undoes] = true
		}
	}
	return out
}

// LastUndoable returns the most recent rename or delete that has not been
// reversed, or nil if there is none.
func (j *Journal) LastUndoable() (*Event, error) {
	events, err := j.ReadAll()
	if err != nil {
		return nil, err
	}
	reversed := Reversed(events)
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		if e.Event.Undoable() && !reversed[e.ID] {
			return &e, nil
		}
	}
	return nil, nil
}
