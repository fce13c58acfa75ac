package am

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")

	require.NoError(t, WriteConfig(path, DefaultConfig(), false))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestWriteConfig_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	require.NoError(t, os.WriteFile(path, []byte("# mine\n"), 0644))

	err := WriteConfig(path, DefaultConfig(), false)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# mine\n", string(data))
}

func TestWriteConfig_ForceRotatesBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")

	for _, content := range []string{"# one\n", "# two\n", "# three\n", "# four\n"} {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		require.NoError(t, createBackup(path))
	}

	read := func(p string) string {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, "# four\n", read(path+".back1"))
	assert.Equal(t, "# three\n", read(path+".back2"))
	assert.Equal(t, "# two\n", read(path+".back3"))

	require.NoError(t, WriteConfig(path, DefaultConfig(), true))
	assert.Equal(t, "# four\n", read(path+".back1"))
	assert.Equal(t, "# three\n", read(path+".back3"))
}

func TestCreateBackup_NoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "am.toml")
	assert.NoError(t, createBackup(path))
	_, err := os.Stat(path + ".back1")
	assert.True(t, os.IsNotExist(err))
}
