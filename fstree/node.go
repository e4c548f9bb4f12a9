// Package fstree inspects filesystem nodes within a dataset and builds
// size-aggregated directory records.
package fstree

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/datals/datals/repo"
)

const (
	// SidecarName is the per-directory metadata file written in sidecar
	// render mode.
	SidecarName = ".dir.json"

	// generatedIndexName is the browser page that sidecar consumers
	// generate next to the metadata; never listed.
	generatedIndexName = "index.html"
)

// NodeType classifies a filesystem node.
type NodeType string

// Supported node types.
const (
	TypeFile       NodeType = "file"
	TypeLink       NodeType = "link"
	TypeLinkBroken NodeType = "link-broken"
	TypeDir        NodeType = "dir"
	TypeAnnexRepo  NodeType = "annex"
	TypeGitRepo    NodeType = "git"
	TypeUnknown    NodeType = "unknown"
)

// SizeBreakdown holds byte counts for every size category. Unknown
// values are zero, never omitted, so category-wise addition is always
// possible.
type SizeBreakdown struct {
	Total         int64
	OnDisk        int64
	Git           int64
	Annex         int64
	AnnexWorktree int64
}

// Add accumulates other into s, category-wise.
func (s *SizeBreakdown) Add(other SizeBreakdown) {
	s.Total += other.Total
	s.OnDisk += other.OnDisk
	s.Git += other.Git
	s.Annex += other.Annex
	s.AnnexWorktree += other.AnnexWorktree
}

// Node is the summary of one filesystem node. Children is populated
// for directories only; a directory's Size is finalized by roll-up
// once all children have been visited.
type Node struct {
	Name     string
	Path     string
	RepoPath string
	Type     NodeType
	Size     SizeBreakdown
	ModTime  time.Time
	Children []*Node

	// Repository facts, attached to dataset roots only.
	Branch   string
	Describe string
	Clean    *bool
}

// Classify determines the type of the node at path. Symbolic links are
// checked before files so that links are never reported as their
// targets; repository roots are checked before plain directories.
func Classify(path string) NodeType {
	fi, err := os.Lstat(path)
	if err != nil {
		return TypeUnknown
	}

	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		if _, ok := resolveLink(path); ok {
			return TypeLink
		}

		return TypeLinkBroken

	case fi.Mode().IsRegular():
		return TypeFile
	}

	if pathExists(filepath.Join(path, ".git", "annex")) {
		return TypeAnnexRepo
	}

	if pathExists(filepath.Join(path, ".git")) {
		return TypeGitRepo
	}

	if fi.IsDir() {
		return TypeDir
	}

	return TypeUnknown
}

// Inspect builds the record for the node at path. h may be nil when the
// node is not associated with a repository.
func Inspect(ctx context.Context, path string, h repo.Handle) *Node {
	t := Classify(path)

	n := &Node{
		Name: leafName(path),
		Path: path,
		Type: t,
	}

	if n.Name == "" && h != nil {
		n.Name = leafName(h.Path())
	}

	if h != nil {
		n.RepoPath = h.Path()
	}

	n.Size = computeSize(ctx, path, h, t)
	n.ModTime = nodeDate(ctx, path, h, t)

	return n
}

// computeSize determines the size breakdown for a node. File-like
// nodes are sized through the annex backend when tracked there,
// otherwise by stat of the resolved path; broken links contribute
// zero. Repository roots additionally carry repo-level totals.
func computeSize(ctx context.Context, path string, h repo.Handle, t NodeType) SizeBreakdown {
	var sz SizeBreakdown

	switch t {
	case TypeFile, TypeLink, TypeLinkBroken:
		if st := annexStatus(ctx, path, h); st.Annexed {
			sz.Total = st.Size
			if st.Present {
				sz.OnDisk = st.Size
			}

			break
		}

		if t == TypeLinkBroken {
			break
		}

		statPath := path
		if target, ok := resolveLink(path); t == TypeLink && ok {
			statPath = target
		}

		if fi, err := os.Lstat(statPath); err == nil {
			sz.Total = fi.Size()
			sz.OnDisk = fi.Size()
		}
	}

	if h != nil && h.Path() == path {
		if v, err := h.ObjectsDiskSize(ctx); err == nil {
			sz.Git = v
		}

		if h.SupportsAnnex() {
			if ai, err := h.AnnexInfo(ctx); err == nil {
				sz.Annex = ai.LocalSize
				sz.AnnexWorktree = ai.WorktreeSize
			}
		}
	}

	return sz
}

// nodeDate returns the last-commit time for repository roots and the
// filesystem mtime for everything else.
func nodeDate(ctx context.Context, path string, h repo.Handle, t NodeType) time.Time {
	if (t == TypeGitRepo || t == TypeAnnexRepo) && h != nil {
		if ci, err := h.LastCommit(ctx); err == nil && !ci.Time.IsZero() {
			return ci.Time
		}
	}

	if fi, err := os.Lstat(path); err == nil {
		return fi.ModTime()
	}

	return time.Time{}
}

func annexStatus(ctx context.Context, path string, h repo.Handle) repo.FileStatus {
	if h == nil || !h.SupportsAnnex() {
		return repo.FileStatus{}
	}

	st, err := h.FileStatus(ctx, path)
	if err != nil {
		return repo.FileStatus{}
	}

	return st
}

// resolveLink returns the absolute target of the symbolic link at path
// and whether that target exists. Relative targets are resolved
// against the link's directory.
func resolveLink(path string) (string, bool) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", false
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(path), target)
	}

	if _, err := os.Stat(target); err != nil {
		return target, false
	}

	return target, true
}

// leafName returns the name of the node at path regardless of trailing
// separators or relative forms.
func leafName(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Base(path)
	}

	return filepath.Base(abs)
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
