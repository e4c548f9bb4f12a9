package gitcli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/datals/datals/repo"
)

func TestParseLastCommit(t *testing.T) {
	ci, err := parseLastCommit("a94a8fe5ccb19ba61c4c0873d391e987982fbbd3 1700000000\n")
	require.NoError(t, err)
	require.Equal(t, "a94a8fe5ccb19ba61c4c0873d391e987982fbbd3", ci.Hash)
	require.Equal(t, time.Unix(1700000000, 0), ci.Time)

	_, err = parseLastCommit("")
	require.Error(t, err)

	_, err = parseLastCommit("abc notatime")
	require.Error(t, err)
}

func TestParseDirty(t *testing.T) {
	require.False(t, parseDirty(""))
	require.False(t, parseDirty("\n"))
	require.True(t, parseDirty(" M dataset/walker.go\n?? junk\n"))
}

func TestParseCountObjects(t *testing.T) {
	out := `count: 42
size: 168
in-pack: 1200
packs: 1
size-pack: 2048
prune-packable: 0
garbage: 0
size-garbage: 0
`

	total, err := parseCountObjects(out)
	require.NoError(t, err)
	require.Equal(t, int64((168+2048)*1024), total)
}

func TestParseCountObjectsBadValue(t *testing.T) {
	_, err := parseCountObjects("size: lots\n")
	require.Error(t, err)
}

func TestParseAnnexInfo(t *testing.T) {
	out := `{"command":"info","local annex size":"4096","size of annexed files in working tree":"10240","success":true}`

	info, err := parseAnnexInfo(out)
	require.NoError(t, err)
	require.Equal(t, repo.AnnexInfo{LocalSize: 4096, WorktreeSize: 10240}, info)
}

func TestParseAnnexInfoWithAnnotation(t *testing.T) {
	out := `{"local annex size":"4096 (+ 1 unknown size)","size of annexed files in working tree":"0"}`

	info, err := parseAnnexInfo(out)
	require.NoError(t, err)
	require.Equal(t, int64(4096), info.LocalSize)
	require.Equal(t, int64(0), info.WorktreeSize)
}

func TestParseAnnexFileStatus(t *testing.T) {
	out := `{"command":"info","file":"big.dat","size":"1048576","present":false,"success":true}`

	st, err := parseAnnexFileStatus(out)
	require.NoError(t, err)
	require.Equal(t, repo.FileStatus{Annexed: true, Size: 1048576, Present: false}, st)
}

func TestParseAnnexFileStatusNotAnnexed(t *testing.T) {
	st, err := parseAnnexFileStatus(`{"success":false}`)
	require.NoError(t, err)
	require.False(t, st.Annexed)
	require.Zero(t, st.Size)
}
