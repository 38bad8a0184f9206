package store

import (
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/afero"

	"github.com/NielsdaWheelz/curator/internal/core"
)

func genStatus() gopter.Gen {
	return gen.OneConstOf(
		core.StatusKeepForever,
		core.StatusKeep,
		core.StatusDecideLater,
		core.StatusDeleted,
		core.StatusRenamed,
		core.Status("archived"),
	)
}

func genRecord() gopter.Gen {
	return gopter.CombineGens(
		genStatus(),
		gen.SliceOf(gen.AlphaString()),
		gen.IntRange(1, 365),
	).Map(func(vals []interface{}) *FileRecord {
		rec := &FileRecord{Tags: vals[1].([]string)}
		rec.SetStatus(vals[0].(core.Status), vals[2].(int), fixedNow)
		return rec
	})
}

// genPath generates a relative path of one or two segments.
func genPath() gopter.Gen {
	return gopter.CombineGens(
		gen.Identifier(),
		gen.OneConstOf("", "sub/", "a/b/"),
		gen.OneConstOf(".txt", ".md", ""),
	).Map(func(vals []interface{}) string {
		return vals[1].(string) + vals[0].(string) + vals[2].(string)
	})
}

func TestPropertyRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("load(save(D)) equals D", prop.ForAll(
		func(paths []string, recs []*FileRecord) bool {
			dir, err := os.MkdirTemp("", "curator-roundtrip-*")
			if err != nil {
				return false
			}
			defer os.RemoveAll(dir)
			st := NewStore(afero.NewOsFs(), dir, func() time.Time { return fixedNow })

			doc := NewDocument()
			for i, p := range paths {
				if i >= len(recs) {
					break
				}
				doc.Set(p, recs[i])
			}
			if err := st.Save(doc); err != nil {
				t.Logf("save: %v", err)
				return false
			}
			got := st.Load()
			return reflect.DeepEqual(got.Records(), doc.Records()) && got.SchemaVersion() == SchemaVersion
		},
		gen.SliceOf(genPath()),
		gen.SliceOf(genRecord()),
	))

	properties.TestingRun(t)
}

func TestPropertyTagAddIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("adding tags twice equals adding once, no duplicates", prop.ForAll(
		func(initial, add []string) bool {
			once := &FileRecord{}
			once.AddTags(initial...)
			once.AddTags(add...)

			twice := once.Clone()
			twice.AddTags(add...)
			twice.AddTags(add...)

			if !reflect.DeepEqual(once.Tags, twice.Tags) {
				return false
			}
			seen := map[string]bool{}
			for _, tag := range twice.Tags {
				if seen[tag] {
					return false
				}
				seen[tag] = true
			}
			for _, tag := range add {
				if !seen[tag] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.OneConstOf("a", "b", "c", "draft", "final")),
		gen.SliceOf(gen.OneConstOf("a", "b", "c", "draft", "final")),
	))

	properties.TestingRun(t)
}

func TestPropertyKeepExpiryClearedOnTransition(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("keep_days/expiry_date present iff status is keep", prop.ForAll(
		func(first, second core.Status, days int) bool {
			rec := &FileRecord{}
			rec.SetStatus(first, days, fixedNow)
			rec.SetStatus(second, days, fixedNow)
			hasExpiry := rec.KeepDays != 0 || rec.ExpiryDate != ""
			return hasExpiry == (second == core.StatusKeep)
		},
		genStatus(),
		genStatus(),
		gen.IntRange(1, 365),
	))

	properties.TestingRun(t)
}
