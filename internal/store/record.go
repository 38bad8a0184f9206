package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/NielsdaWheelz/curator/internal/core"
)

// FileRecord is the per-path metadata entry.
//
// KeepDays and ExpiryDate are set only while Status is keep.
// Fields curator does not know about are kept in Extra and written back
// unchanged.
type FileRecord struct {
	Status      core.Status
	Tags        []string
	LastUpdated string
	KeepDays    int
	ExpiryDate  string
	Extra       map[string]json.RawMessage
}

var knownRecordKeys = map[string]bool{
	"status":       true,
	"tags":         true,
	"last_updated": true,
	"keep_days":    true,
	"expiry_date":  true,
}

type recordWire struct {
	Status      *string   `json:"status"`
	Tags        *[]string `json:"tags"`
	LastUpdated *string   `json:"last_updated"`
	KeepDays    *int      `json:"keep_days"`
	ExpiryDate  *string   `json:"expiry_date"`
}

// UnmarshalJSON decodes a record. Any type mismatch in a known field makes
// the whole record malformed; the caller keeps it as raw JSON. A stored
// keep_90_days status is read as keep.
func (r *FileRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("record is null")
	}
	var w recordWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*r = FileRecord{}
	if w.Status != nil {
		r.Status = core.Status(*w.Status)
	}
	if w.Tags != nil {
		r.Tags = *w.Tags
	}
	if w.LastUpdated != nil {
		r.LastUpdated = *w.LastUpdated
	}
	if w.KeepDays != nil {
		r.KeepDays = *w.KeepDays
	}
	if w.ExpiryDate != nil {
		r.ExpiryDate = *w.ExpiryDate
	}
	if r.Status == core.LegacyKeep90Days {
		r.Status = core.StatusKeep
		if r.KeepDays == 0 {
			r.KeepDays = core.LegacyKeepDays
		}
	}
	for k, v := range raw {
		if knownRecordKeys[k] {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[k] = v
	}
	return nil
}

// MarshalJSON encodes known fields plus preserved extras. Keys are emitted
// in sorted order. A nil Tags slice omits the key; an empty one writes [].
func (r FileRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+5)
	for k, v := range r.Extra {
		out[k] = v
	}
	if r.Status != "" {
		out["status"] = string(r.Status)
	}
	if r.Tags != nil {
		out["tags"] = r.Tags
	}
	if r.LastUpdated != "" {
		out["last_updated"] = r.LastUpdated
	}
	if r.KeepDays != 0 {
		out["keep_days"] = r.KeepDays
	}
	if r.ExpiryDate != "" {
		out["expiry_date"] = r.ExpiryDate
	}
	return json.Marshal(out)
}

// Clone returns a deep copy.
func (r *FileRecord) Clone() *FileRecord {
	if r == nil {
		return nil
	}
	c := *r
	if r.Tags != nil {
		c.Tags = append([]string{}, r.Tags...)
	}
	if r.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(r.Extra))
		for k, v := range r.Extra {
			c.Extra[k] = append(json.RawMessage{}, v...)
		}
	}
	return &c
}

// HasTag reports whether tag is present.
func (r *FileRecord) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTags appends tags not already present, keeping insertion order.
func (r *FileRecord) AddTags(tags ...string) {
	if r.Tags == nil {
		r.Tags = []string{}
	}
	for _, t := range tags {
		if !r.HasTag(t) {
			r.Tags = append(r.Tags, t)
		}
	}
}

// RemoveTags drops every occurrence of the given tags.
func (r *FileRecord) RemoveTags(tags ...string) {
	if len(tags) == 0 {
		return
	}
	drop := make(map[string]bool, len(tags))
	for _, t := range tags {
		drop[t] = true
	}
	kept := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		if !drop[t] {
			kept = append(kept, t)
		}
	}
	r.Tags = kept
}

// SetStatus writes status and last_updated. For keep it stamps keep_days and
// expiry_date = now + days; for anything else both fields are cleared.
func (r *FileRecord) SetStatus(status core.Status, days int, now time.Time) {
	r.Status = status
	r.LastUpdated = FormatTime(now)
	if status == core.StatusKeep {
		r.KeepDays = days
		r.ExpiryDate = FormatTime(now.AddDate(0, 0, days))
		return
	}
	r.KeepDays = 0
	r.ExpiryDate = ""
}

// Touch refreshes last_updated.
func (r *FileRecord) Touch(now time.Time) {
	r.LastUpdated = FormatTime(now)
}

// FormatTime renders timestamps the way they are persisted.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}
