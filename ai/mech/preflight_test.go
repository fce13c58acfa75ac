package mech

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/mechrelay/errors"
)

func TestParseClientVersion(t *testing.T) {
	tests := []struct {
		out  string
		want string
	}{
		{"mechx, version 0.2.16\n", "0.2.16"},
		{"mechx, version v0.4.0", "0.4.0"},
		{"mechx, version 0.3", "0.3.0"},
		{"mechx, version 0.2.5rc1", "0.2.5"},
	}
	for _, tt := range tests {
		v, err := ParseClientVersion(tt.out)
		require.NoError(t, err, tt.out)
		assert.Equal(t, tt.want, v.String())
	}

	_, err := ParseClientVersion("Usage: mechx [OPTIONS]")
	assert.Error(t, err)
}

func TestCheckClientVersion(t *testing.T) {
	v, err := ParseClientVersion("mechx, version 0.2.16")
	require.NoError(t, err)

	assert.NoError(t, CheckClientVersion(v, ""))
	assert.NoError(t, CheckClientVersion(v, ">= 0.2.0"))

	err = CheckClientVersion(v, ">= 0.3.0")
	require.Error(t, err)
	assert.True(t, errors.IsClientError(err))

	assert.True(t, errors.IsConfigError(CheckClientVersion(v, "garbage")))
}

func TestPreflight_AllPass(t *testing.T) {
	script, _ := installFakeMechx(t, "agent")
	client, err := NewCLIInteractor(CLIOptions{Command: script})
	require.NoError(t, err)

	cfg := defaultConfig()
	cfg.PrivateKeyPath = writeKey(t, testKey)

	checks := Preflight(context.Background(), PreflightOptions{
		Client:           client,
		Config:           cfg,
		MinClientVersion: ">= 0.2.0",
	})

	require.Len(t, checks, 4)
	for _, c := range checks {
		assert.True(t, c.OK(), "%s: %v", c.Name, c.Err)
	}
	assert.Equal(t, script, checks[1].Detail)
	assert.Equal(t, "0.2.16", checks[2].Detail)
	assert.Equal(t, "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", checks[3].Detail)
	assert.NoError(t, FirstFailure(checks))
}

func TestPreflight_MissingClientAndKey(t *testing.T) {
	client, err := NewCLIInteractor(CLIOptions{Command: filepath.Join(t.TempDir(), "mechx")})
	require.NoError(t, err)

	cfg := defaultConfig()
	cfg.PrivateKeyPath = filepath.Join(t.TempDir(), "nope.txt")

	checks := Preflight(context.Background(), PreflightOptions{Client: client, Config: cfg})

	// Version check is skipped when the client is missing
	require.Len(t, checks, 3)
	assert.True(t, checks[0].OK())
	assert.True(t, errors.Is(checks[1].Err, errors.ErrClientNotFound))
	assert.True(t, errors.Is(checks[2].Err, errors.ErrKeyFile))

	err = FirstFailure(checks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client")
}
