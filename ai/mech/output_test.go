package mech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseClientOutput(t *testing.T) {
	stdout := `Sending Mech request...
Prompt uploaded: https://gateway.autonolas.tech/ipfs/f01701220aa
Transaction sent: https://celoscan.io/tx/0x5f2c
Waiting for transaction receipt...
Created on-chain request with ID 2004
Waiting for Mech deliver...
Data arrived: https://gateway.autonolas.tech/ipfs/f01701220bb/2004
Data from agent: {"requestId": 2004, "result": "Hackers gather near"}
`
	out := parseClientOutput(stdout)

	assert.Equal(t, "https://celoscan.io/tx/0x5f2c", out.TxURL)
	assert.Equal(t, "2004", out.RequestID)
	assert.Equal(t, "https://gateway.autonolas.tech/ipfs/f01701220bb/2004", out.DeliveryURL)
	assert.Equal(t, `{"requestId": 2004, "result": "Hackers gather near"}`, out.AgentData)
}

func TestParseClientOutput_NoMarkers(t *testing.T) {
	out := parseClientOutput("\n  something happened \n\n")

	assert.Empty(t, out.DeliveryURL)
	assert.Empty(t, out.AgentData)
	assert.Equal(t, "something happened", out.Raw)
}

func TestDecodeValue(t *testing.T) {
	assert.Equal(t, map[string]any{"a": float64(1)}, decodeValue(`{"a": 1}`))
	assert.Equal(t, "not json", decodeValue("not json"))
	// Python dict repr is not JSON
	assert.Equal(t, "{'a': 1}", decodeValue("{'a': 1}"))
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "ValueError: bad key", lastLine("Traceback\n  File x\nValueError: bad key\n\n"))
	assert.Equal(t, "", lastLine("   \n"))
}
