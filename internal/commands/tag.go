package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/NielsdaWheelz/curator/internal/store"
)

// TagOpts holds options for the tag command.
type TagOpts struct {
	File   string
	Add    []string
	Remove []string
	Force  bool
	JSON   bool
	Quiet  bool
}

type tagResult struct {
	Result   string   `json:"result"`
	Filename string   `json:"filename"`
	Tags     []string `json:"tags"`
}

func formatTags(tags []string) string {
	if len(tags) == 0 {
		return "(none)"
	}
	return strings.Join(tags, ", ")
}

// Tag adds and removes tags on one file. With neither it reports the
// current tags.
func Tag(_ context.Context, env *Env, opts TagOpts, stdout, _ io.Writer) error {
	rel := store.Key(opts.File)
	if !opts.Force {
		if err := env.requireFile(rel); err != nil {
			return err
		}
	}
	if len(opts.Add) == 0 && len(opts.Remove) == 0 {
		tags := []string{}
		if rec, ok := env.Store().Get(rel); ok {
			tags = append(tags, rec.Tags...)
		}
		if opts.JSON {
			return writeJSON(stdout, tagResult{Result: "current", Filename: opts.File, Tags: tags})
		}
		if !opts.Quiet {
			_, _ = fmt.Fprintf(stdout, "Tags for '%s': %s\n", opts.File, formatTags(tags))
		}
		return nil
	}
	tags, err := env.Store().ManageTags(rel, opts.Add, opts.Remove)
	if err != nil {
		return err
	}
	if opts.JSON {
		return writeJSON(stdout, tagResult{Result: "updated", Filename: opts.File, Tags: tags})
	}
	if !opts.Quiet {
		_, _ = fmt.Fprintf(stdout, "Updated tags for '%s': %s\n", opts.File, formatTags(tags))
	}
	return nil
}

// TagBatchOpts holds options for the tag-batch command.
type TagBatchOpts struct {
	Batch  BatchOpts
	Add    []string
	Remove []string
	Force  bool
	JSON   bool
	Quiet  bool
}

// TagBatch applies the same tag changes to many files.
func TagBatch(_ context.Context, env *Env, opts TagBatchOpts, stdout, _ io.Writer) error {
	names, err := collectFilenames(env, opts.Batch)
	if err != nil {
		return err
	}

	st := env.Store()
	var summary batchSummary
	for _, name := range names {
		rel := store.Key(name)
		if !opts.Force {
			if err := env.requireFile(rel); err != nil {
				summary.fail(name, err)
				continue
			}
		}
		tags, err := st.ManageTags(rel, opts.Add, opts.Remove)
		if err != nil {
			summary.fail(name, err)
			continue
		}
		summary.ok(tagResult{Result: "updated", Filename: name, Tags: tags})
	}

	return summary.finish(stdout, opts.JSON, opts.Quiet, func(w io.Writer, item any) {
		r := item.(tagResult)
		_, _ = fmt.Fprintf(w, "Updated tags for %s: %s\n", r.Filename, formatTags(r.Tags))
	})
}
