package fstree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"

	"github.com/datals/datals/internal/units"
)

// RenderMode selects where completed directory records are emitted.
type RenderMode string

// Supported render modes.
const (
	// RenderConsole prints each record as one JSON line.
	RenderConsole RenderMode = "display"

	// RenderSidecar writes each record to a .dir.json sidecar inside
	// the directory, replacing any previous one.
	RenderSidecar RenderMode = "file"

	// RenderDeleteSidecar removes previously written sidecars; missing
	// sidecars are not an error.
	RenderDeleteSidecar RenderMode = "delete"
)

// sidecarTimeFormat is part of the sidecar wire format; consumers parse
// it, so it must not change.
const sidecarTimeFormat = "2006-01-02 15:04:05"

// Renderer emits directory records according to an explicit output
// configuration; nothing is read from ambient process state.
type Renderer struct {
	mode RenderMode
	out  io.Writer
}

// NewRenderer returns a renderer with the given mode writing console
// output to out.
func NewRenderer(mode RenderMode, out io.Writer) *Renderer {
	return &Renderer{mode: mode, out: out}
}

// sidecarSize carries humanized size strings; the in-memory model stays
// numeric and is converted only at the rendering boundary.
type sidecarSize struct {
	Total         string `json:"total"`
	OnDisk        string `json:"ondisk"`
	Git           string `json:"git"`
	Annex         string `json:"annex"`
	AnnexWorktree string `json:"annex_worktree"`
}

// sidecarNode is the stable wire form of a Node.
type sidecarNode struct {
	Name     string        `json:"name"`
	Path     string        `json:"path"`
	RepoPath string        `json:"repo"`
	Type     string        `json:"type"`
	Size     sidecarSize   `json:"size"`
	Date     string        `json:"date"`
	Branch   string        `json:"branch,omitempty"`
	Describe string        `json:"describe,omitempty"`
	Clean    *bool         `json:"clean,omitempty"`
	Nodes    []sidecarNode `json:"nodes,omitempty"`
}

func toSidecarSize(s SizeBreakdown) sidecarSize {
	return sidecarSize{
		Total:         units.Humanize(s.Total),
		OnDisk:        units.Humanize(s.OnDisk),
		Git:           units.Humanize(s.Git),
		Annex:         units.Humanize(s.Annex),
		AnnexWorktree: units.Humanize(s.AnnexWorktree),
	}
}

func toSidecarNode(n *Node) sidecarNode {
	sn := sidecarNode{
		Name:     n.Name,
		Path:     n.Path,
		RepoPath: n.RepoPath,
		Type:     string(n.Type),
		Size:     toSidecarSize(n.Size),
		Date:     formatSidecarTime(n.ModTime),
		Branch:   n.Branch,
		Describe: n.Describe,
		Clean:    n.Clean,
	}

	for _, c := range n.Children {
		sn.Nodes = append(sn.Nodes, toSidecarNode(c))
	}

	return sn
}

func formatSidecarTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Local().Format(sidecarTimeFormat)
}

// Render emits the record for the directory at dir according to the
// renderer's mode.
func (r *Renderer) Render(ctx context.Context, dir string, n *Node) error {
	switch r.mode {
	case RenderSidecar:
		data, err := json.Marshal(toSidecarNode(n))
		if err != nil {
			return errors.Wrap(err, "unable to serialize directory record")
		}

		sidecar := filepath.Join(dir, SidecarName)
		if err := atomic.WriteFile(sidecar, bytes.NewReader(data)); err != nil {
			return errors.Wrapf(err, "unable to write %v", sidecar)
		}

	case RenderDeleteSidecar:
		sidecar := filepath.Join(dir, SidecarName)
		if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "unable to delete %v", sidecar)
		}

	default:
		data, err := json.Marshal(toSidecarNode(n))
		if err != nil {
			return errors.Wrap(err, "unable to serialize directory record")
		}

		fmt.Fprintf(r.out, "%s\n", data)
	}

	return nil
}
