//go:build unix

package state

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSudoOwnerWithoutSudo(t *testing.T) {
	t.Setenv("SUDO_USER", "")
	_, _, ok := sudoOwner()
	assert.False(t, ok)

	if os.Geteuid() != 0 {
		t.Setenv("SUDO_USER", "root")
		_, _, ok = sudoOwner()
		assert.False(t, ok, "only root hands files back")
	}
}

func TestWriteFileAtomicHandsFileToSudoUser(t *testing.T) {
	if os.Geteuid() != 0 {
		t.Skip("needs root")
	}
	current, err := user.Current()
	require.NoError(t, err)
	t.Setenv("SUDO_USER", current.Username)

	path := filepath.Join(t.TempDir(), "tool_changes.json")
	require.NoError(t, WriteFileAtomic(path, []byte("{}\n"), 0644))

	info, err := os.Stat(path)
	require.NoError(t, err)
	stat, ok := info.Sys().(*syscall.Stat_t)
	require.True(t, ok)
	assert.Equal(t, current.Uid, strconv.FormatUint(uint64(stat.Uid), 10))
	assert.Equal(t, current.Gid, strconv.FormatUint(uint64(stat.Gid), 10))
}
