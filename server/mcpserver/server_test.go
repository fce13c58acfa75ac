package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/mechrelay/ai/mech"
	"github.com/teranos/mechrelay/errors"
)

func newServer(t *testing.T, fn mech.InteractorFunc) (*MCPServer, *[]string) {
	t.Helper()
	var prompts []string
	w := mech.NewWrapper(mech.Config{
		AgentID:          2,
		Tool:             "openai-gpt-3.5-turbo",
		ChainConfig:      "celo",
		ConfirmationType: mech.ConfirmationOnChain,
		PrivateKeyPath:   "ethereum_private_key.txt",
	}, mech.InteractorFunc(func(ctx context.Context, req mech.Request) (mech.Result, error) {
		prompts = append(prompts, req.Prompt)
		return fn(ctx, req)
	}), nil)
	return New(w, "Write a Haiku about web3 hackathons?", nil), &prompts
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = ToolName
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestGetPrompt_DefaultPrompt(t *testing.T) {
	s, prompts := newServer(t, func(ctx context.Context, req mech.Request) (mech.Result, error) {
		return mech.Result{Value: "a haiku"}, nil
	})

	res, err := s.handleGetPrompt(context.Background(), callTool(nil))

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "a haiku", resultText(t, res))
	assert.Equal(t, []string{"Write a Haiku about web3 hackathons?"}, *prompts)
}

func TestGetPrompt_StructuredResultIsJSON(t *testing.T) {
	s, prompts := newServer(t, func(ctx context.Context, req mech.Request) (mech.Result, error) {
		return mech.Result{Value: map[string]any{"result": "world"}}, nil
	})

	res, err := s.handleGetPrompt(context.Background(), callTool(map[string]any{"prompt": "Hello"}))

	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"world"}`, resultText(t, res))
	assert.Equal(t, []string{"Hello"}, *prompts)
}

func TestGetPrompt_ErrorIsToolError(t *testing.T) {
	s, _ := newServer(t, func(ctx context.Context, req mech.Request) (mech.Result, error) {
		return mech.Result{}, errors.New("bad key")
	})

	res, err := s.handleGetPrompt(context.Background(), callTool(map[string]any{"prompt": "Hello"}))

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "bad key", resultText(t, res))
}
