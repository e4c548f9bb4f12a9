package dataset

import (
	"context"

	"github.com/datals/datals/repo"
)

// Summary carries the per-dataset facts shown in flat listings. Nil
// pointers mean the fact was not gathered, either because the query
// failed or because the requested detail level skipped it; the
// corresponding errors are collected in Errors.
type Summary struct {
	Branch   string
	Describe string
	Commit   *repo.CommitInfo
	Clean    *bool
	Annex    *repo.AnnexInfo

	// Errors holds query failures in the order they occurred. A
	// non-empty Errors does not invalidate the fields that did resolve.
	Errors []error
}

// Summarize gathers repository facts for a dataset, best-effort. Every
// query failure is recorded and the remaining queries still run.
//
// The worktree cleanliness check walks the entire tree and is skipped
// in fast mode unless all details were requested. Annex size queries
// run only when all details were requested.
func Summarize(ctx context.Context, h repo.Handle, fast, all bool) Summary {
	var s Summary

	branch, err := h.ActiveBranch(ctx)
	if err != nil {
		s.Errors = append(s.Errors, err)
	} else {
		s.Branch = branch
	}

	describe, err := h.Describe(ctx)
	if err != nil {
		s.Errors = append(s.Errors, err)
	} else {
		s.Describe = describe
	}

	ci, err := h.LastCommit(ctx)
	if err != nil {
		s.Errors = append(s.Errors, err)
	} else {
		s.Commit = &ci
	}

	if !fast || all {
		clean, err := h.Dirty(ctx)
		if err != nil {
			s.Errors = append(s.Errors, err)
		} else {
			clean = !clean
			s.Clean = &clean
		}
	}

	if all && h.SupportsAnnex() {
		ai, err := h.AnnexInfo(ctx)
		if err != nil {
			s.Errors = append(s.Errors, err)
		} else {
			s.Annex = &ai
		}
	}

	return s
}
