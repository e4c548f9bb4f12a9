package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/datals/datals/dataset"
	"github.com/datals/datals/fstree"
	"github.com/datals/datals/repo"
	"github.com/datals/datals/repo/gitcli"
)

type commandList struct {
	paths       []string
	recursive   bool
	fast        bool
	all         bool
	configFile  string
	listContent string
	jsonMode    string

	// openRepo is replaceable in tests.
	openRepo dataset.HandleFactory

	out textOutput
}

func (c *commandList) setup(svc appServices, parent commandParent) {
	cmd := parent.Command("list", "List meta-information on files, datasets or S3 buckets.").Alias("ls").Default()

	cmd.Arg("path", "Paths of dataset directories, or s3:// URLs").Default(".").StringsVar(&c.paths)
	cmd.Flag("recursive", "Recurse into subdirectories and sub-datasets").Short('r').BoolVar(&c.recursive)
	cmd.Flag("fast", "Only perform fast operations, at the cost of less detail").Short('F').BoolVar(&c.fast)
	cmd.Flag("all", "List all entries, not only the latest").Short('a').BoolVar(&c.all)
	cmd.Flag("config-file", "Config file with S3 credentials (s3cmd format)").StringVar(&c.configFile)
	cmd.Flag("list-content", "Fetch content of each S3 object to display or verify").Default("none").EnumVar(&c.listContent, "none", "first10", "hash", "full")
	cmd.Flag("json", "Render directory hierarchies as machine-readable records").EnumVar(&c.jsonMode, "display", "file", "delete")

	cmd.Action(svc.action(c.run))

	c.openRepo = func(path string) (repo.Handle, error) {
		return gitcli.Open(path)
	}

	c.out.setup(svc)
}

// run handles each requested location in turn. A failing location does
// not stop the remaining ones; the first failure becomes the exit
// status.
func (c *commandList) run(ctx context.Context) error {
	var firstErr error

	for _, loc := range c.paths {
		if err := c.listLocation(ctx, loc); err != nil {
			c.out.printStderr("%v\n", errorColor.Sprintf("%v: %v", loc, err))

			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (c *commandList) listLocation(ctx context.Context, loc string) error {
	if strings.HasPrefix(loc, "s3://") {
		return c.listBucket(ctx, loc)
	}

	// an unknown location gets a marker line, not an error, so the
	// remaining locations still list cleanly
	if _, err := os.Lstat(loc); err != nil {
		c.out.printStdout("%v  %v\n", pathColor.Sprint(loc), errorColor.Sprint("unknown"))

		return nil
	}

	path, err := filepath.Abs(loc)
	if err != nil {
		return errors.Wrapf(err, "unable to resolve %v", loc)
	}

	ds := c.topDataset(path)
	if !ds.IsInstalled() {
		return errors.Wrapf(dataset.ErrNotInstalled, "%v", loc)
	}

	if c.jsonMode != "" {
		return c.traverseDataset(ctx, ds)
	}

	return c.listDatasets(ctx, ds)
}

func (c *commandList) topDataset(path string) *dataset.Dataset {
	return dataset.New(path, c.openRepo)
}

// traverseDataset renders per-directory records for the dataset's
// whole worktree.
func (c *commandList) traverseDataset(ctx context.Context, ds *dataset.Dataset) error {
	renderer := fstree.NewRenderer(fstree.RenderMode(c.jsonMode), c.out.stdout())

	_, err := dataset.Traverse(ctx, ds, nil, dataset.TraverseOptions{
		Recursive:      c.recursive,
		AllSubdatasets: c.all,
		Renderer:       renderer,
		Fast:           c.fast,
		All:            c.all,
	})

	return err
}
