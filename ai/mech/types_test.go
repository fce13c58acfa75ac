package mech

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfirmationType(t *testing.T) {
	tests := []struct {
		in   string
		want ConfirmationType
		ok   bool
	}{
		{"on-chain", ConfirmationOnChain, true},
		{"ON_CHAIN", ConfirmationOnChain, true},
		{" off_chain ", ConfirmationOffChain, true},
		{"WAIT_FOR_BOTH", ConfirmationWaitForBoth, true},
		{"", "", false},
		{"eventually", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseConfirmationType(tt.in)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfirmationFlag(t *testing.T) {
	assert.Equal(t, "on-chain", ConfirmationType("ON_CHAIN").Flag())
	assert.Equal(t, "custom", ConfirmationType("custom").Flag())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, defaultConfig().Validate())

	cfg := defaultConfig()
	cfg.AgentID = 0
	assert.NoError(t, cfg.Validate(), "agent 0 exists on some chains")

	cfg = defaultConfig()
	cfg.PrivateKeyPath = ""
	assert.Error(t, cfg.Validate())

	cfg = defaultConfig()
	cfg.ConfirmationType = "sometime"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mech.confirmation_type")
}
