package fstree

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/datals/datals/internal/logging"
	"github.com/datals/datals/repo"
)

var log = logging.Module("datals/fstree")

// TraverseOptions control a directory traversal.
type TraverseOptions struct {
	// Recursive descends into plain subdirectories. Repository roots
	// and version-control internals are never descended into.
	Recursive bool

	// Renderer emits each completed directory record. Nil suppresses
	// all rendering.
	Renderer *Renderer

	// NoRender suppresses rendering of the top directory's own record
	// only; recursively visited subdirectories still render. Used by
	// the dataset walker, which renders the root itself after
	// aggregating sub-dataset sizes.
	NoRender bool
}

// Traverse walks the node at path depth-first and returns its record.
//
// For directories, Children holds the self entry (renamed "."), a ".."
// pseudo-entry referencing parent when one is given, and one record
// per non-ignored immediate child. The directory's Size is the
// category-wise sum over its direct children, computed after any
// recursive descents, so a subdirectory contributes its full rolled-up
// size in recursive mode and zero otherwise.
func Traverse(ctx context.Context, path string, h repo.Handle, parent *Node, opt TraverseOptions) (*Node, error) {
	n := Inspect(ctx, path, h)

	if n.Type != TypeDir && n.Type != TypeGitRepo && n.Type != TypeAnnexRepo {
		return n, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read directory %v", path)
	}

	self := Inspect(ctx, path, h)
	children := []*Node{self}

	for _, ent := range entries {
		childPath := filepath.Join(path, ent.Name())

		if ignored(childPath, true) {
			continue
		}

		child := Inspect(ctx, childPath, h)
		children = append(children, child)

		// recursion uses the full ignore predicate so repository
		// worktrees are never descended into
		if opt.Recursive && child.Type == TypeDir && !ignored(childPath, false) {
			sub, suberr := Traverse(ctx, childPath, h, self, TraverseOptions{
				Recursive: true,
				Renderer:  opt.Renderer,
			})
			if suberr != nil {
				return nil, suberr
			}

			// fold the fully computed subtree size back into this child
			child.Size = sub.Size
		}
	}

	// roll up direct children into the directory's own size; the
	// repository-level categories attached to repo roots are kept
	var total SizeBreakdown
	for _, c := range children[1:] {
		total.Add(c.Size)
	}

	total.Git += n.Size.Git
	total.Annex += n.Size.Annex
	total.AnnexWorktree += n.Size.AnnexWorktree

	n.Size = total
	self.Size = total
	self.Name = "."

	if parent != nil {
		up := *parent
		up.Name = ".."
		up.Children = nil

		withParent := make([]*Node, 0, len(children)+1)
		withParent = append(withParent, children[0], &up)
		withParent = append(withParent, children[1:]...)
		children = withParent
	}

	n.Children = children

	if opt.Renderer != nil && !opt.NoRender {
		if err := opt.Renderer.Render(ctx, path, n); err != nil {
			return nil, err
		}

		log(ctx).Infof("directory: %v", path)
	}

	return n, nil
}

// ignored reports whether the node at path is excluded from listings.
// Hidden names, the sidecar file and the generated index page are
// always excluded; version-control repository roots are additionally
// excluded unless hiddenOnly is set.
func ignored(path string, hiddenOnly bool) bool {
	if !hiddenOnly && pathExists(filepath.Join(path, ".git")) {
		return true
	}

	name := leafName(path)
	if strings.HasPrefix(name, ".") {
		return true
	}

	return name == SidecarName || name == generatedIndexName
}
