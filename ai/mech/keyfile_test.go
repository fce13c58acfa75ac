package mech

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/mechrelay/errors"
)

// Well-known test key, never funded
const testKey = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

func writeKey(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ethereum_private_key.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadSender(t *testing.T) {
	for name, content := range map[string]string{
		"bare":     testKey,
		"prefixed": "0x" + testKey,
		"newline":  testKey + "\n",
	} {
		t.Run(name, func(t *testing.T) {
			addr, err := LoadSender(writeKey(t, content))
			require.NoError(t, err)
			assert.Equal(t, "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", addr.Hex())
		})
	}
}

func TestLoadSender_Errors(t *testing.T) {
	_, err := LoadSender(filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, errors.Is(err, errors.ErrKeyFile))
	assert.NotEmpty(t, errors.GetAllHints(err))

	_, err = LoadSender(writeKey(t, "  \n"))
	assert.True(t, errors.Is(err, errors.ErrKeyFile))

	_, err = LoadSender(writeKey(t, "zz"+testKey[2:]))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrKeyFile))
	assert.NotContains(t, err.Error(), testKey[2:])
}
