// Package repo defines read-only access to the version-control backend
// of a dataset. Implementations expose a capability flag for annex
// support; callers branch on the capability, never on the concrete type.
package repo

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrNoRepository indicates that a path is not inside a version-controlled
// repository.
var ErrNoRepository = errors.New("no repository found")

// CommitInfo describes the most recent commit on the active branch.
type CommitInfo struct {
	Hash string
	Time time.Time
}

// AnnexInfo holds repository-level annex sizes.
type AnnexInfo struct {
	// LocalSize is the on-disk size of the local annex object store.
	LocalSize int64
	// WorktreeSize is the logical size of annexed files in the working tree.
	WorktreeSize int64
}

// FileStatus describes what the annex backend knows about a single file.
type FileStatus struct {
	// Annexed is false when the file is not tracked by the annex; the
	// remaining fields are meaningless in that case.
	Annexed bool
	// Size is the recorded logical size of the file content.
	Size int64
	// Present indicates the content is materialized locally.
	Present bool
}

// Handle provides read-only queries against a git or git-annex
// repository. Expensive facts are memoized by implementations, so
// repeated calls are cheap.
type Handle interface {
	// Path returns the repository root.
	Path() string

	// SupportsAnnex reports whether annex queries are available on this
	// repository.
	SupportsAnnex() bool

	// ActiveBranch returns the currently checked-out branch name.
	ActiveBranch(ctx context.Context) (string, error)

	// Describe returns the tag-based description of the current commit.
	Describe(ctx context.Context) (string, error)

	// LastCommit returns the hash and timestamp of the most recent commit.
	LastCommit(ctx context.Context) (CommitInfo, error)

	// Dirty reports whether the working tree has uncommitted changes.
	Dirty(ctx context.Context) (bool, error)

	// ObjectsDiskSize returns the on-disk size of the version-control
	// metadata store in bytes.
	ObjectsDiskSize(ctx context.Context) (int64, error)

	// AnnexInfo returns repository-level annex sizes. Fails on
	// repositories without annex support.
	AnnexInfo(ctx context.Context) (AnnexInfo, error)

	// FileStatus reports annex knowledge about the file at the given
	// path. Non-annexed files return a zero FileStatus without error.
	FileStatus(ctx context.Context, path string) (FileStatus, error)
}
