package dataset

import (
	"context"

	"github.com/pkg/errors"

	"github.com/datals/datals/fstree"
	"github.com/datals/datals/internal/logging"
)

var log = logging.Module("datals/dataset")

// TraverseOptions control a dataset traversal.
type TraverseOptions struct {
	// Recursive descends into plain subdirectories within each dataset.
	Recursive bool

	// AllSubdatasets additionally traverses installed sub-datasets and
	// folds their sizes into the containing dataset. Uninstalled
	// sub-datasets are skipped.
	AllSubdatasets bool

	// Renderer emits one record per traversed dataset and, in recursive
	// mode, per visited subdirectory.
	Renderer *fstree.Renderer

	// Fast skips the worktree cleanliness check.
	Fast bool

	// All gathers annex size details in addition to the basics.
	All bool
}

// Traverse walks the dataset's worktree, annotates the root record with
// repository facts, and renders it. Sub-dataset sizes are folded in
// after each sub-dataset finishes its own traversal, so every rendered
// record is complete at the time it is emitted.
func Traverse(ctx context.Context, ds *Dataset, parent *fstree.Node, opt TraverseOptions) (*fstree.Node, error) {
	if !ds.IsInstalled() {
		return nil, errors.Wrapf(ErrNotInstalled, "%v", ds.Path)
	}

	h, err := ds.Handle()
	if err != nil {
		return nil, err
	}

	root, err := fstree.Traverse(ctx, ds.Path, h, parent, fstree.TraverseOptions{
		Recursive: opt.Recursive,
		Renderer:  opt.Renderer,
		NoRender:  true,
	})
	if err != nil {
		return nil, err
	}

	sum := Summarize(ctx, h, opt.Fast, opt.All)
	root.Branch = sum.Branch
	root.Describe = sum.Describe
	root.Clean = sum.Clean

	for _, qerr := range sum.Errors {
		log(ctx).Warnf("%v: %v", ds.Path, qerr)
	}

	if opt.AllSubdatasets {
		subs, err := ds.Subdatasets()
		if err != nil {
			return nil, err
		}

		for _, sub := range subs {
			if !sub.IsInstalled() {
				log(ctx).Debugf("skipping uninstalled sub-dataset %v", sub.Path)
				continue
			}

			subRoot, err := Traverse(ctx, sub, root, opt)
			if err != nil {
				return nil, err
			}

			for _, c := range root.Children {
				if c.Path == sub.Path {
					c.Size = subRoot.Size
				}
			}

			root.Size.Add(subRoot.Size)
		}
	}

	if len(root.Children) > 0 {
		root.Children[0].Size = root.Size
	}

	if opt.Renderer != nil {
		if err := opt.Renderer.Render(ctx, ds.Path, root); err != nil {
			return nil, err
		}
	}

	log(ctx).Infof("dataset: %v", ds.Path)

	return root, nil
}
