// Package mech relays prompts to an Autonolas mech agent through the external
// mech client and hands back whatever the agent delivered.
package mech

import (
	"strings"

	"github.com/teranos/mechrelay/errors"
)

// ConfirmationType selects how the mech client waits for the agent's delivery
type ConfirmationType string

const (
	ConfirmationOnChain     ConfirmationType = "on-chain"      // watch the chain for the Deliver event
	ConfirmationOffChain    ConfirmationType = "off-chain"     // accept the agent's websocket push
	ConfirmationWaitForBoth ConfirmationType = "wait-for-both" // first of the two wins
)

// ParseConfirmationType accepts the client's flag spelling as well as the
// enum spelling (ON_CHAIN, off_chain...).
func ParseConfirmationType(s string) (ConfirmationType, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	switch ConfirmationType(normalized) {
	case ConfirmationOnChain, ConfirmationOffChain, ConfirmationWaitForBoth:
		return ConfirmationType(normalized), nil
	}
	return "", errors.Newf("unknown confirmation type %q (want on-chain, off-chain or wait-for-both)", s)
}

// Flag returns the value passed to the client's --confirm option
func (c ConfirmationType) Flag() string {
	if parsed, err := ParseConfirmationType(string(c)); err == nil {
		return string(parsed)
	}
	return string(c)
}

// Config is everything the wrapper forwards to the mech client besides the prompt
type Config struct {
	AgentID          int
	Tool             string
	ChainConfig      string
	ConfirmationType ConfirmationType
	PrivateKeyPath   string
}

// Validate checks the fields the mech client cannot work without
func (c Config) Validate() error {
	if c.AgentID < 0 {
		return errors.Newf("mech.agent_id must be >= 0, got %d", c.AgentID)
	}
	if c.Tool == "" {
		return errors.New("mech.tool cannot be empty")
	}
	if c.ChainConfig == "" {
		return errors.New("mech.chain_config cannot be empty")
	}
	if _, err := ParseConfirmationType(string(c.ConfirmationType)); err != nil {
		return errors.Wrap(err, "mech.confirmation_type")
	}
	if c.PrivateKeyPath == "" {
		return errors.New("mech.private_key_path cannot be empty")
	}
	return nil
}

// Request is a single interaction with a mech agent
type Request struct {
	Prompt string
	Config
}

// Result is what the agent delivered.
// Value is opaque; the remaining fields are only used for logs and history.
type Result struct {
	Value       any    `json:"value"`
	RequestID   string `json:"request_id,omitempty"`
	DeliveryURL string `json:"delivery_url,omitempty"`
	TxURL       string `json:"tx_url,omitempty"`
}
