// Package dataset models version-controlled dataset hierarchies and
// summarizes their repositories.
package dataset

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/datals/datals/repo"
)

// ErrNotInstalled is returned when a dataset path has no repository
// behind it, typically an uninitialized sub-dataset mount point.
var ErrNotInstalled = errors.New("dataset is not installed")

// HandleFactory opens a repository handle for a dataset path.
type HandleFactory func(path string) (repo.Handle, error)

// Dataset is a directory under version control, possibly containing
// registered sub-datasets.
type Dataset struct {
	// Path is the dataset root.
	Path string

	open HandleFactory

	handle    repo.Handle
	handleErr error
	opened    bool
}

// New returns a dataset rooted at path whose repository is opened
// through the given factory. The repository is opened lazily on first
// use.
func New(path string, open HandleFactory) *Dataset {
	return &Dataset{Path: path, open: open}
}

// Handle returns the dataset's repository handle, opening it on first
// call.
func (d *Dataset) Handle() (repo.Handle, error) {
	if !d.opened {
		d.handle, d.handleErr = d.open(d.Path)
		d.opened = true
	}

	return d.handle, d.handleErr
}

// IsInstalled reports whether the dataset has an actual repository on
// disk, as opposed to being a registered but never-fetched mount point.
func (d *Dataset) IsInstalled() bool {
	fi, err := os.Stat(filepath.Join(d.Path, ".git"))
	return err == nil && fi.IsDir()
}

// Subdatasets returns the datasets registered directly under this one,
// in registration order. An absent registration file means no
// sub-datasets, not an error.
func (d *Dataset) Subdatasets() ([]*Dataset, error) {
	f, err := os.Open(filepath.Join(d.Path, ".gitmodules"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "unable to read sub-dataset registrations")
	}
	defer f.Close() //nolint:errcheck

	paths, err := parseGitmodules(f)
	if err != nil {
		return nil, err
	}

	var subs []*Dataset
	for _, p := range paths {
		subs = append(subs, New(filepath.Join(d.Path, p), d.open))
	}

	return subs, nil
}

// parseGitmodules extracts submodule worktree paths from a .gitmodules
// stream. Only the 'path' keys matter here; section names and URLs are
// ignored.
func parseGitmodules(r io.Reader) ([]string, error) {
	var paths []string

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		if strings.TrimSpace(key) == "path" {
			if p := strings.TrimSpace(value); p != "" {
				paths = append(paths, p)
			}
		}
	}

	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to parse sub-dataset registrations")
	}

	return paths, nil
}
