package store

import (
	"math"
	"sort"
	"time"

	"github.com/NielsdaWheelz/curator/internal/core"
)

// Accepted expiry_date layouts. Layouts without a zone are local time.
var expiryLayouts = []struct {
	layout string
	local  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02 15:04:05.999999999", true},
	{"2006-01-02", true},
}

// ParseExpiry parses an ISO-8601 expiry timestamp.
func ParseExpiry(s string) (time.Time, error) {
	var firstErr error
	for _, l := range expiryLayouts {
		var t time.Time
		var err error
		if l.local {
			t, err = time.ParseInLocation(l.layout, s, time.Local)
		} else {
			t, err = time.Parse(l.layout, s)
		}
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Expired reports whether rec is a temporary keep whose expiry is before now.
// err is non-nil only when the expiry date cannot be parsed; in that case
// expired is false.
func Expired(rec *FileRecord, now time.Time) (expired bool, err error) {
	if rec == nil || rec.Status != core.StatusKeep || rec.ExpiryDate == "" {
		return false, nil
	}
	t, err := ParseExpiry(rec.ExpiryDate)
	if err != nil {
		return false, err
	}
	return t.Before(now), nil
}

// ExpiredDetail describes one expired temporary keep.
type ExpiredDetail struct {
	Filename    string `json:"filename"`
	Status      string `json:"status"`
	KeepDays    int    `json:"keep_days,omitempty"`
	ExpiryDate  string `json:"expiry_date"`
	Expired     bool   `json:"expired"`
	DaysOverdue int    `json:"days_overdue"`
}

// ExpiredFiles returns the sorted paths of expired temporary keeps.
func (s *Store) ExpiredFiles(now time.Time) []string {
	details := s.ExpiredDetails(now)
	out := make([]string, len(details))
	for i, d := range details {
		out[i] = d.Filename
	}
	return out
}

// ExpiredDetails returns details for every expired temporary keep, sorted
// by path. Unparseable expiry dates are logged and skipped.
func (s *Store) ExpiredDetails(now time.Time) []ExpiredDetail {
	doc := s.Load()
	out := []ExpiredDetail{}
	for _, p := range doc.Paths() {
		rec, ok := doc.Get(p)
		if !ok {
			continue
		}
		expired, err := Expired(rec, now)
		if err != nil {
			s.Logger.Warn().Str("path", p).Str("expiry_date", rec.ExpiryDate).
				Msg("invalid expiry date; treating as not expired")
			continue
		}
		if !expired {
			continue
		}
		t, _ := ParseExpiry(rec.ExpiryDate)
		out = append(out, ExpiredDetail{
			Filename:    p,
			Status:      string(rec.Status),
			KeepDays:    rec.KeepDays,
			ExpiryDate:  rec.ExpiryDate,
			Expired:     true,
			DaysOverdue: int(math.Floor(now.Sub(t).Hours() / 24)),
		})
	}
	return out
}

// ResetExpired moves every expired temporary keep back to decide_later and
// returns the affected paths. A second run with the same clock finds
// nothing to do.
func (s *Store) ResetExpired(now time.Time) ([]string, error) {
	var updated []string
	err := s.Update(func(doc *Document) error {
		for p, rec := range doc.Records() {
			expired, err := Expired(rec, now)
			if err != nil || !expired {
				continue
			}
			rec.SetStatus(core.StatusDecideLater, 0, s.Clock())
			updated = append(updated, p)
		}
		if len(updated) == 0 {
			return errUnchanged
		}
		return nil
	})
	if err == errUnchanged {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(updated)
	return updated, nil
}
