package fstree

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/datals/datals/internal/testutil"
)

func sampleNode(path string) *Node {
	boolPtr := true

	n := &Node{
		Name:    filepath.Base(path),
		Path:    path,
		Type:    TypeAnnexRepo,
		Size:    SizeBreakdown{Total: 2048, OnDisk: 1024, Git: 512, Annex: 4096, AnnexWorktree: 2048},
		ModTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Branch:  "main",
		Clean:   &boolPtr,
	}

	n.Children = []*Node{
		{Name: ".", Path: path, Type: TypeAnnexRepo, Size: n.Size},
		{Name: "file1", Path: filepath.Join(path, "file1"), Type: TypeFile, Size: SizeBreakdown{Total: 2048, OnDisk: 1024}},
	}

	return n
}

func TestRenderConsoleEmitsOneJSONLine(t *testing.T) {
	ctx := context.Background()
	td := testutil.TempDirectory(t)

	var buf bytes.Buffer

	r := NewRenderer(RenderConsole, &buf)
	require.NoError(t, r.Render(ctx, td, sampleNode(td)))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var got sidecarNode
	require.NoError(t, json.Unmarshal(lines[0], &got))

	require.Equal(t, "annex", got.Type)
	require.Equal(t, "2.0 kB", got.Size.Total)
	require.Equal(t, "1.0 kB", got.Size.OnDisk)
	require.Equal(t, "4.0 kB", got.Size.Annex)
	require.Equal(t, "main", got.Branch)
	require.Len(t, got.Nodes, 2)
	require.Equal(t, ".", got.Nodes[0].Name)
}

func TestRenderSidecarWritesAndReplaces(t *testing.T) {
	ctx := context.Background()
	td := testutil.TempDirectory(t)

	r := NewRenderer(RenderSidecar, os.Stdout)

	n := sampleNode(td)
	require.NoError(t, r.Render(ctx, td, n))

	sidecar := filepath.Join(td, SidecarName)
	first, err := os.ReadFile(sidecar)
	require.NoError(t, err)

	var got sidecarNode
	require.NoError(t, json.Unmarshal(first, &got))
	require.Equal(t, "2.0 kB", got.Size.Total)

	n.Size.Total = 4096
	require.NoError(t, r.Render(ctx, td, n))

	second, err := os.ReadFile(sidecar)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(second, &got))
	require.Equal(t, "4.0 kB", got.Size.Total, "sidecar is replaced, not appended to")
}

func TestRenderDeleteSidecar(t *testing.T) {
	ctx := context.Background()
	td := testutil.TempDirectory(t)

	sidecar := filepath.Join(td, SidecarName)
	testutil.MustWriteFile(t, sidecar, []byte("{}"))

	r := NewRenderer(RenderDeleteSidecar, os.Stdout)
	require.NoError(t, r.Render(ctx, td, sampleNode(td)))

	_, err := os.Lstat(sidecar)
	require.True(t, os.IsNotExist(err))

	// deleting again is not an error
	require.NoError(t, r.Render(ctx, td, sampleNode(td)))
}

func TestSidecarDateFormat(t *testing.T) {
	n := &Node{ModTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)}

	sn := toSidecarNode(n)
	require.Equal(t, "2024-01-02 03:04:05", sn.Date)

	sn = toSidecarNode(&Node{})
	require.Equal(t, "", sn.Date, "zero time renders empty")
}
