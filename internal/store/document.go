package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Reserved document key and the schema version written on every save.
const (
	SchemaVersionKey = "_schema_version"
	SchemaVersion    = 1
)

// Document is the whole persisted state: relative path -> FileRecord.
//
// Values that are not well-formed records are kept verbatim in raw so they
// survive a load/save cycle; the scanner treats those paths as undecided.
// SchemaVersionKey is the only reserved key; every other key is a path,
// including names that begin with "_".
type Document struct {
	records map[string]*FileRecord
	raw     map[string]json.RawMessage

	// schemaVersion is the value read from disk (0 when absent or not an int).
	schemaVersion int
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		records: make(map[string]*FileRecord),
		raw:     make(map[string]json.RawMessage),
	}
}

// Key normalizes a repository-relative path to the form used as a document
// key: forward slashes, no leading "./" or "/".
func Key(rel string) string {
	k := path.Clean(filepath.ToSlash(rel))
	k = strings.TrimPrefix(k, "/")
	if k == "." {
		return ""
	}
	return k
}

// OutsideRoot reports whether a normalized key climbs above the repository
// root.
func OutsideRoot(key string) bool {
	return key == ".." || strings.HasPrefix(key, "../")
}

// IsReserved reports whether key is reserved (not a file path).
func IsReserved(key string) bool {
	return key == SchemaVersionKey
}

// SchemaVersion returns the schema version read from disk.
func (d *Document) SchemaVersion() int {
	return d.schemaVersion
}

// Get returns the record for rel. Malformed entries report ok=false.
func (d *Document) Get(rel string) (*FileRecord, bool) {
	r, ok := d.records[Key(rel)]
	return r, ok
}

// IsMalformed reports whether rel has an entry that is not a valid record.
func (d *Document) IsMalformed(rel string) bool {
	k := Key(rel)
	if IsReserved(k) {
		return false
	}
	_, ok := d.raw[k]
	return ok
}

// Ensure returns the record for rel, creating an empty one if needed.
// A malformed entry at the same key is replaced.
func (d *Document) Ensure(rel string) *FileRecord {
	k := Key(rel)
	if r, ok := d.records[k]; ok {
		return r
	}
	delete(d.raw, k)
	r := &FileRecord{Tags: []string{}}
	d.records[k] = r
	return r
}

// Set stores rec at rel, replacing whatever was there.
func (d *Document) Set(rel string, rec *FileRecord) {
	k := Key(rel)
	delete(d.raw, k)
	d.records[k] = rec
}

// Delete removes rel, well-formed or not.
func (d *Document) Delete(rel string) {
	k := Key(rel)
	delete(d.records, k)
	delete(d.raw, k)
}

// Move re-keys the record at from to to and returns it. When from has no
// record a fresh one is created at to. Any entry previously at to is replaced.
func (d *Document) Move(from, to string) *FileRecord {
	fk, tk := Key(from), Key(to)
	rec, ok := d.records[fk]
	delete(d.records, fk)
	delete(d.raw, fk)
	if !ok {
		rec = &FileRecord{Tags: []string{}}
	}
	delete(d.raw, tk)
	d.records[tk] = rec
	return rec
}

// Paths returns every non-reserved key, well-formed or not, sorted.
func (d *Document) Paths() []string {
	out := make([]string, 0, len(d.records)+len(d.raw))
	for k := range d.records {
		out = append(out, k)
	}
	for k := range d.raw {
		if !IsReserved(k) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Records returns the well-formed records keyed by path. The map is the
// document's own; callers inside Update may mutate records in place.
func (d *Document) Records() map[string]*FileRecord {
	return d.records
}

// Len returns the number of non-reserved entries.
func (d *Document) Len() int {
	n := len(d.records)
	for k := range d.raw {
		if !IsReserved(k) {
			n++
		}
	}
	return n
}

// UnmarshalJSON decodes a state document. The top level must be a JSON
// object; anything else is corruption and returns an error.
func (d *Document) UnmarshalJSON(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return err
	}
	if top == nil {
		return fmt.Errorf("state document is null")
	}

	*d = *NewDocument()
	for k, v := range top {
		if k == SchemaVersionKey {
			var ver int
			if json.Unmarshal(v, &ver) == nil {
				d.schemaVersion = ver
			}
			continue
		}
		var rec FileRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			d.raw[k] = v
			continue
		}
		d.records[k] = &rec
	}
	return nil
}

// MarshalJSON encodes the document with the current schema version,
// overwriting whatever version was read.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.records)+len(d.raw)+1)
	for k, v := range d.raw {
		out[k] = v
	}
	for k, r := range d.records {
		out[k] = r
	}
	out[SchemaVersionKey] = SchemaVersion
	return json.Marshal(out)
}

// encode renders the document as it is written to disk.
func (d *Document) encode() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "    "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
