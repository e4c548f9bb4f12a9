package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/datals/datals/dataset"
	"github.com/datals/datals/internal/units"
)

// listDatasets prints one summary line per dataset, starting with top
// and including its sub-datasets when recursion was requested.
func (c *commandList) listDatasets(ctx context.Context, top *dataset.Dataset) error {
	dss, err := c.collectDatasets(top)
	if err != nil {
		return err
	}

	maxPath := 0
	for _, ds := range dss {
		if l := len(c.relativePath(top, ds)); l > maxPath {
			maxPath = l
		}
	}

	for _, ds := range dss {
		c.printDatasetLine(ctx, top, ds, maxPath)
	}

	return nil
}

// collectDatasets returns top and, in recursive mode, every descendant
// dataset, sorted by path. Uninstalled registrations are kept so they
// can be reported as absent.
func (c *commandList) collectDatasets(top *dataset.Dataset) ([]*dataset.Dataset, error) {
	dss := []*dataset.Dataset{top}

	if !c.recursive {
		return dss, nil
	}

	var walk func(ds *dataset.Dataset) error

	walk = func(ds *dataset.Dataset) error {
		subs, err := ds.Subdatasets()
		if err != nil {
			return err
		}

		for _, sub := range subs {
			dss = append(dss, sub)

			if sub.IsInstalled() {
				if err := walk(sub); err != nil {
					return err
				}
			}
		}

		return nil
	}

	if err := walk(top); err != nil {
		return nil, err
	}

	sort.Slice(dss, func(i, j int) bool {
		return dss[i].Path < dss[j].Path
	})

	return dss, nil
}

func (c *commandList) relativePath(top, ds *dataset.Dataset) string {
	rel, err := filepath.Rel(top.Path, ds.Path)
	if err != nil {
		return ds.Path
	}

	return rel
}

func (c *commandList) printDatasetLine(ctx context.Context, top, ds *dataset.Dataset, maxPath int) {
	rel := c.relativePath(top, ds)
	padded := fmt.Sprintf("%-*v", maxPath+1, rel)

	if !ds.IsInstalled() {
		c.out.printStdout("%v %v\n", pathColor.Sprint(padded), errorColor.Sprint("absent"))

		return
	}

	h, err := ds.Handle()
	if err != nil {
		c.out.printStdout("%v %v\n", pathColor.Sprint(padded), errorColor.Sprintf("error: %v", err))

		return
	}

	sum := dataset.Summarize(ctx, h, c.fast, c.all)

	kind := "git"
	if h.SupportsAnnex() {
		kind = "annex"
	}

	branch := sum.Branch
	if branch == "" {
		branch = "?"
	}

	if sum.Describe != "" {
		branch += "@" + sum.Describe
	}

	line := fmt.Sprintf("%v [%v] [%v]", pathColor.Sprint(padded), kind, branch)

	if sum.Commit != nil {
		line += " " + formatTimestamp(sum.Commit.Time)
	}

	switch {
	case sum.Clean == nil:
	case *sum.Clean:
		line += " " + okColor.Sprint(cleanMark)
	default:
		line += " " + errorColor.Sprint(dirtyMark)
	}

	if sum.Annex != nil {
		line += fmt.Sprintf(" annex: %v/%v",
			units.Humanize(sum.Annex.LocalSize),
			units.Humanize(sum.Annex.WorktreeSize))
	}

	c.out.printStdout("%v\n", line)

	for _, qerr := range sum.Errors {
		c.out.printStderr("%v: %v\n", rel, warningColor.Sprint(qerr))
	}
}
