// Package repotesting provides a scriptable fake repo.Handle for tests.
package repotesting

import (
	"context"
	"time"

	"github.com/datals/datals/repo"
)

// Handle is a fake repo.Handle whose answers are plain fields.
type Handle struct {
	RootPath string
	Annex    bool

	Branch        string
	Tag           string
	CommitHash    string
	CommitTime    time.Time
	WorkTreeDirty bool
	GitSize       int64
	AnnexLocal    int64
	AnnexWorktree int64

	// Files maps node paths to annex file status.
	Files map[string]repo.FileStatus

	// Err, when set, fails every query.
	Err error
}

// Path implements repo.Handle.
func (h *Handle) Path() string { return h.RootPath }

// SupportsAnnex implements repo.Handle.
func (h *Handle) SupportsAnnex() bool { return h.Annex }

// ActiveBranch implements repo.Handle.
func (h *Handle) ActiveBranch(ctx context.Context) (string, error) {
	return h.Branch, h.Err
}

// Describe implements repo.Handle.
func (h *Handle) Describe(ctx context.Context) (string, error) {
	return h.Tag, h.Err
}

// LastCommit implements repo.Handle.
func (h *Handle) LastCommit(ctx context.Context) (repo.CommitInfo, error) {
	return repo.CommitInfo{Hash: h.CommitHash, Time: h.CommitTime}, h.Err
}

// Dirty implements repo.Handle.
func (h *Handle) Dirty(ctx context.Context) (bool, error) {
	return h.WorkTreeDirty, h.Err
}

// ObjectsDiskSize implements repo.Handle.
func (h *Handle) ObjectsDiskSize(ctx context.Context) (int64, error) {
	return h.GitSize, h.Err
}

// AnnexInfo implements repo.Handle.
func (h *Handle) AnnexInfo(ctx context.Context) (repo.AnnexInfo, error) {
	return repo.AnnexInfo{LocalSize: h.AnnexLocal, WorktreeSize: h.AnnexWorktree}, h.Err
}

// FileStatus implements repo.Handle.
func (h *Handle) FileStatus(ctx context.Context, path string) (repo.FileStatus, error) {
	if h.Err != nil {
		return repo.FileStatus{}, h.Err
	}

	return h.Files[path], nil
}

var _ repo.Handle = (*Handle)(nil)
