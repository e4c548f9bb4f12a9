package fstree

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/datals/datals/internal/testutil"
	"github.com/datals/datals/internal/units"
)

func childNames(n *Node) []string {
	var names []string
	for _, c := range n.Children {
		names = append(names, c.Name)
	}

	return names
}

func TestTraverseRollsUpDirectChildren(t *testing.T) {
	ctx := context.Background()
	td := testutil.TempDirectory(t)

	testutil.MustWriteFile(t, filepath.Join(td, "a"), make([]byte, 100))
	testutil.MustWriteFile(t, filepath.Join(td, "b"), make([]byte, 924))
	testutil.MustWriteFile(t, filepath.Join(td, ".c"), make([]byte, 5000))

	n, err := Traverse(ctx, td, nil, nil, TraverseOptions{})
	require.NoError(t, err)

	if diff := cmp.Diff([]string{".", "a", "b"}, childNames(n)); diff != "" {
		t.Fatalf("unexpected children (-want +got):\n%v", diff)
	}

	require.Equal(t, int64(1024), n.Size.Total, "hidden entries do not contribute")
	require.Equal(t, "1.0 kB", units.Humanize(n.Size.Total))
	require.Equal(t, n.Size, n.Children[0].Size, "self entry carries the rolled-up size")
}

func TestTraverseParentEntry(t *testing.T) {
	ctx := context.Background()
	td := testutil.TempDirectory(t)

	testutil.MustWriteFile(t, filepath.Join(td, "f"), make([]byte, 10))

	parent := &Node{Name: "above", Path: filepath.Dir(td), Type: TypeDir}
	parent.Children = []*Node{{Name: "stale"}}

	n, err := Traverse(ctx, td, nil, parent, TraverseOptions{})
	require.NoError(t, err)

	if diff := cmp.Diff([]string{".", "..", "f"}, childNames(n)); diff != "" {
		t.Fatalf("unexpected children (-want +got):\n%v", diff)
	}

	up := n.Children[1]
	require.Equal(t, filepath.Dir(td), up.Path)
	require.Nil(t, up.Children, "parent entry never embeds its own listing")
	require.Equal(t, "above", parent.Name, "original parent record is not mutated")
}

func TestTraverseSubdirectorySizes(t *testing.T) {
	ctx := context.Background()
	td := testutil.TempDirectory(t)

	testutil.MustWriteFile(t, filepath.Join(td, "top"), make([]byte, 100))
	testutil.MustMkdirAll(t, filepath.Join(td, "sub"))
	testutil.MustWriteFile(t, filepath.Join(td, "sub", "inner"), make([]byte, 300))

	flat, err := Traverse(ctx, td, nil, nil, TraverseOptions{})
	require.NoError(t, err)
	require.Equal(t, int64(100), flat.Size.Total, "unvisited subdirectory contributes zero")

	deep, err := Traverse(ctx, td, nil, nil, TraverseOptions{Recursive: true})
	require.NoError(t, err)
	require.Equal(t, int64(400), deep.Size.Total)

	for _, c := range deep.Children {
		if c.Name == "sub" {
			require.Equal(t, int64(300), c.Size.Total)
		}
	}
}

func TestTraverseDoesNotDescendIntoRepositories(t *testing.T) {
	ctx := context.Background()
	td := testutil.TempDirectory(t)

	testutil.MustMkdirAll(t, filepath.Join(td, "nested", ".git"))
	testutil.MustWriteFile(t, filepath.Join(td, "nested", "tracked"), make([]byte, 100))

	n, err := Traverse(ctx, td, nil, nil, TraverseOptions{Recursive: true})
	require.NoError(t, err)

	require.Equal(t, []string{".", "nested"}, childNames(n))

	nested := n.Children[1]
	require.Equal(t, TypeGitRepo, nested.Type)
	require.Nil(t, nested.Children, "repository roots are listed, not entered")
}

func TestTraverseToleratesBrokenLink(t *testing.T) {
	ctx := context.Background()
	td := testutil.TempDirectory(t)

	testutil.MustSymlink(t, "missing-target", filepath.Join(td, "dangling"))
	testutil.MustWriteFile(t, filepath.Join(td, "ok"), make([]byte, 7))

	n, err := Traverse(ctx, td, nil, nil, TraverseOptions{})
	require.NoError(t, err)

	require.Equal(t, []string{".", "dangling", "ok"}, childNames(n))
	require.Equal(t, int64(7), n.Size.Total)
}

func TestTraverseSkipsGeneratedFiles(t *testing.T) {
	ctx := context.Background()
	td := testutil.TempDirectory(t)

	testutil.MustWriteFile(t, filepath.Join(td, SidecarName), []byte("{}"))
	testutil.MustWriteFile(t, filepath.Join(td, "index.html"), []byte("<html>"))
	testutil.MustWriteFile(t, filepath.Join(td, "kept"), make([]byte, 1))

	n, err := Traverse(ctx, td, nil, nil, TraverseOptions{})
	require.NoError(t, err)

	require.Equal(t, []string{".", "kept"}, childNames(n))
}

func TestTraverseSingleFile(t *testing.T) {
	ctx := context.Background()
	td := testutil.TempDirectory(t)

	path := filepath.Join(td, "single")
	testutil.MustWriteFile(t, path, make([]byte, 42))

	n, err := Traverse(ctx, path, nil, nil, TraverseOptions{})
	require.NoError(t, err)

	require.Equal(t, TypeFile, n.Type)
	require.Nil(t, n.Children)
	require.Equal(t, int64(42), n.Size.Total)
}

func TestIgnored(t *testing.T) {
	td := testutil.TempDirectory(t)

	testutil.MustMkdirAll(t, filepath.Join(td, "wc", ".git"))
	testutil.MustMkdirAll(t, filepath.Join(td, "plain"))

	require.True(t, ignored(filepath.Join(td, ".hidden"), true))
	require.True(t, ignored(filepath.Join(td, SidecarName), true))
	require.True(t, ignored(filepath.Join(td, "index.html"), true))
	require.False(t, ignored(filepath.Join(td, "plain"), true))

	require.False(t, ignored(filepath.Join(td, "wc"), true), "repositories stay listed when only hidden names are excluded")
	require.True(t, ignored(filepath.Join(td, "wc"), false))
}
