// Package gitcli implements repo.Handle by invoking the git and
// git-annex command-line tools.
package gitcli

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/datals/datals/internal/logging"
	"github.com/datals/datals/repo"
)

var log = logging.Module("datals/gitcli")

// memo caches the result of a single expensive query.
type memo[T any] struct {
	done bool
	v    T
	err  error
}

func (m *memo[T]) get(fill func() (T, error)) (T, error) {
	if !m.done {
		m.v, m.err = fill()
		m.done = true
	}

	return m.v, m.err
}

// Repo is a repo.Handle backed by the git command-line tools.
type Repo struct {
	path  string
	annex bool

	branch    memo[string]
	describe  memo[string]
	commit    memo[repo.CommitInfo]
	dirty     memo[bool]
	objSize   memo[int64]
	annexInfo memo[repo.AnnexInfo]
}

// Open returns a handle for the repository rooted at path. It fails
// with repo.ErrNoRepository when path has no .git.
func Open(path string) (*Repo, error) {
	gitDir := filepath.Join(path, ".git")

	if _, err := os.Stat(gitDir); err != nil {
		return nil, errors.Wrapf(repo.ErrNoRepository, "%v", path)
	}

	_, annexErr := os.Stat(filepath.Join(gitDir, "annex"))

	return &Repo{
		path:  path,
		annex: annexErr == nil,
	}, nil
}

// Path implements repo.Handle.
func (r *Repo) Path() string { return r.path }

// SupportsAnnex implements repo.Handle.
func (r *Repo) SupportsAnnex() bool { return r.annex }

// ActiveBranch implements repo.Handle.
func (r *Repo) ActiveBranch(ctx context.Context) (string, error) {
	return r.branch.get(func() (string, error) {
		out, err := r.git(ctx, "symbolic-ref", "--short", "HEAD")
		if err != nil {
			return "", err
		}

		return strings.TrimSpace(out), nil
	})
}

// Describe implements repo.Handle.
func (r *Repo) Describe(ctx context.Context) (string, error) {
	return r.describe.get(func() (string, error) {
		out, err := r.git(ctx, "describe", "--tags")
		if err != nil {
			return "", err
		}

		return strings.TrimSpace(out), nil
	})
}

// LastCommit implements repo.Handle.
func (r *Repo) LastCommit(ctx context.Context) (repo.CommitInfo, error) {
	return r.commit.get(func() (repo.CommitInfo, error) {
		out, err := r.git(ctx, "log", "-1", "--format=%H %ct")
		if err != nil {
			return repo.CommitInfo{}, err
		}

		return parseLastCommit(out)
	})
}

// Dirty implements repo.Handle.
func (r *Repo) Dirty(ctx context.Context) (bool, error) {
	return r.dirty.get(func() (bool, error) {
		out, err := r.git(ctx, "status", "--porcelain")
		if err != nil {
			return false, err
		}

		return parseDirty(out), nil
	})
}

// ObjectsDiskSize implements repo.Handle.
func (r *Repo) ObjectsDiskSize(ctx context.Context) (int64, error) {
	return r.objSize.get(func() (int64, error) {
		out, err := r.git(ctx, "count-objects", "-v")
		if err != nil {
			return 0, err
		}

		return parseCountObjects(out)
	})
}

// AnnexInfo implements repo.Handle.
func (r *Repo) AnnexInfo(ctx context.Context) (repo.AnnexInfo, error) {
	return r.annexInfo.get(func() (repo.AnnexInfo, error) {
		if !r.annex {
			return repo.AnnexInfo{}, errors.Errorf("%v: not an annex repository", r.path)
		}

		out, err := r.git(ctx, "annex", "info", "--json", "--bytes")
		if err != nil {
			return repo.AnnexInfo{}, err
		}

		return parseAnnexInfo(out)
	})
}

// FileStatus implements repo.Handle. Paths may be absolute or relative
// to the current directory; they are rebased onto the repository root.
func (r *Repo) FileStatus(ctx context.Context, path string) (repo.FileStatus, error) {
	if !r.annex {
		return repo.FileStatus{}, nil
	}

	rel, err := filepath.Rel(r.path, path)
	if err != nil {
		rel = path
	}

	out, err := r.git(ctx, "annex", "info", "--json", "--bytes", "--", rel)
	if err != nil {
		// annex reports an error for untracked files; treat as not annexed
		log(ctx).Debugf("annex info %v: %v", rel, err)
		return repo.FileStatus{}, nil
	}

	return parseAnnexFileStatus(out)
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.path

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", errors.Wrapf(err, "git %v: %v", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

var _ repo.Handle = (*Repo)(nil)
