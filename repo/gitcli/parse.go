package gitcli

import (
	"bufio"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/datals/datals/repo"
)

const bytesPerKiB = 1024

// parseLastCommit parses "git log -1 --format=%H %ct" output.
func parseLastCommit(out string) (repo.CommitInfo, error) {
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return repo.CommitInfo{}, errors.Errorf("unexpected git log output: %q", out)
	}

	ts, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return repo.CommitInfo{}, errors.Wrapf(err, "unexpected commit timestamp %q", fields[1])
	}

	return repo.CommitInfo{
		Hash: fields[0],
		Time: time.Unix(ts, 0),
	}, nil
}

// parseDirty interprets "git status --porcelain" output.
func parseDirty(out string) bool {
	return strings.TrimSpace(out) != ""
}

// parseCountObjects sums the loose and packed object sizes reported by
// "git count-objects -v". Sizes are reported in KiB.
func parseCountObjects(out string) (int64, error) {
	var total int64

	s := bufio.NewScanner(strings.NewReader(out))
	for s.Scan() {
		key, value, ok := strings.Cut(s.Text(), ":")
		if !ok {
			continue
		}

		if key != "size" && key != "size-pack" {
			continue
		}

		v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0, errors.Wrapf(err, "unexpected count-objects line %q", s.Text())
		}

		total += v * bytesPerKiB
	}

	return total, nil
}

// annexInfoJSON is the subset of "git annex info --json --bytes" output
// consumed here. With --bytes the sizes are decimal strings.
type annexInfoJSON struct {
	LocalAnnexSize string `json:"local annex size"`
	WorktreeSize   string `json:"size of annexed files in working tree"`
}

func parseAnnexInfo(out string) (repo.AnnexInfo, error) {
	var parsed annexInfoJSON

	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return repo.AnnexInfo{}, errors.Wrap(err, "unable to parse annex info")
	}

	local, err := parseAnnexSize(parsed.LocalAnnexSize)
	if err != nil {
		return repo.AnnexInfo{}, err
	}

	worktree, err := parseAnnexSize(parsed.WorktreeSize)
	if err != nil {
		return repo.AnnexInfo{}, err
	}

	return repo.AnnexInfo{LocalSize: local, WorktreeSize: worktree}, nil
}

// annexFileJSON is the subset of per-file "git annex info" output
// consumed here.
type annexFileJSON struct {
	Success bool   `json:"success"`
	Size    string `json:"size"`
	Present bool   `json:"present"`
}

func parseAnnexFileStatus(out string) (repo.FileStatus, error) {
	var parsed annexFileJSON

	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return repo.FileStatus{}, errors.Wrap(err, "unable to parse annex file info")
	}

	if !parsed.Success || parsed.Size == "" {
		return repo.FileStatus{}, nil
	}

	size, err := parseAnnexSize(parsed.Size)
	if err != nil {
		return repo.FileStatus{}, err
	}

	return repo.FileStatus{
		Annexed: true,
		Size:    size,
		Present: parsed.Present,
	}, nil
}

// parseAnnexSize parses a --bytes size value, tolerating annotations
// such as "123 (+ 1 unknown size)".
func parseAnnexSize(s string) (int64, error) {
	digits, _, _ := strings.Cut(strings.TrimSpace(s), " ")
	if digits == "" {
		return 0, nil
	}

	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "unexpected annex size %q", s)
	}

	return v, nil
}
