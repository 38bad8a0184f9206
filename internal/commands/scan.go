package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/NielsdaWheelz/curator/internal/render"
	"github.com/NielsdaWheelz/curator/internal/scan"
)

// ScanOpts holds options for the scan and sort commands.
type ScanOpts struct {
	FilterTerm     string
	SortBy         string // empty: config default
	SortOrder      string // empty: config default
	Recursive      bool
	Include        []string
	Exclude        []string
	IncludeExpired bool
	Limit          *int // nil: no limit
	Offset         int
	Long           bool
	JSON           bool
	Quiet          bool
}

// scanResult is the stable JSON output of scan and sort.
type scanResult struct {
	Files          []string `json:"files"`
	Count          int      `json:"count"`
	Total          int      `json:"total"`
	FilteredTotal  int      `json:"filtered_total"`
	RawTotal       int      `json:"raw_total"`
	Limit          *int     `json:"limit"`
	Offset         int      `json:"offset"`
	SortBy         string   `json:"sort_by"`
	SortOrder      string   `json:"sort_order"`
	Recursive      bool     `json:"recursive"`
	IncludeExpired bool     `json:"include_expired"`
}

// scanOptions resolves opts against config defaults.
func (e *Env) scanOptions(opts ScanOpts) (scan.Options, error) {
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = e.Config.Defaults.SortBy
	}
	sortOrder := opts.SortOrder
	if sortOrder == "" {
		sortOrder = e.Config.Defaults.SortOrder
	}
	by, err := scan.ParseSortBy(sortBy)
	if err != nil {
		return scan.Options{}, err
	}
	order, err := scan.ParseSortOrder(sortOrder)
	if err != nil {
		return scan.Options{}, err
	}
	return scan.Options{
		FilterTerm:     opts.FilterTerm,
		SortBy:         by,
		SortOrder:      order,
		Recursive:      opts.Recursive || e.Config.Defaults.Recursive,
		Include:        opts.Include,
		Exclude:        opts.Exclude,
		Ignore:         e.Config.Ignore,
		IncludeExpired: opts.IncludeExpired,
		Now:            e.now(),
	}, nil
}

// Scan lists files awaiting review.
func Scan(_ context.Context, env *Env, opts ScanOpts, stdout, _ io.Writer) error {
	so, err := env.scanOptions(opts)
	if err != nil {
		return err
	}
	scanner := env.Scanner()

	entries, err := scanner.ScanEntries(env.Repo, so)
	if err != nil {
		return err
	}
	filteredTotal := len(entries)

	rawTotal := filteredTotal
	if so.FilterTerm != "" {
		raw := so
		raw.FilterTerm = ""
		all, err := scanner.Scan(env.Repo, raw)
		if err != nil {
			return err
		}
		rawTotal = len(all)
	}

	limit := -1
	if opts.Limit != nil {
		limit = *opts.Limit
	}
	offset := max(opts.Offset, 0)
	page := scan.Page(entries, offset, limit)

	files := make([]string, len(page))
	for i, e := range page {
		files[i] = e.Path
	}

	if opts.JSON {
		return writeJSON(stdout, scanResult{
			Files:          files,
			Count:          len(files),
			Total:          filteredTotal,
			FilteredTotal:  filteredTotal,
			RawTotal:       rawTotal,
			Limit:          opts.Limit,
			Offset:         offset,
			SortBy:         string(so.SortBy),
			SortOrder:      string(so.SortOrder),
			Recursive:      so.Recursive,
			IncludeExpired: so.IncludeExpired,
		})
	}
	if opts.Quiet {
		return nil
	}
	if opts.Long {
		rows := make([]render.FileRow, len(page))
		for i, e := range page {
			rows[i] = render.FormatFileRow(e.Path, e.Size, e.ModTime, e.Tags, env.now())
		}
		return render.WriteFileTable(stdout, rows)
	}
	return render.WriteFileList(stdout, files)
}

// Sort is scan without a filter term, announcing the ordering first.
func Sort(ctx context.Context, env *Env, opts ScanOpts, stdout, stderr io.Writer) error {
	opts.FilterTerm = ""
	opts.IncludeExpired = false
	if !opts.JSON && !opts.Quiet {
		so, err := env.scanOptions(opts)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "Sorting by %s in %s order.\n", so.SortBy, so.SortOrder)
	}
	return Scan(ctx, env, opts, stdout, stderr)
}
