package mech

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/mechrelay/errors"
)

func defaultConfig() Config {
	return Config{
		AgentID:          2,
		Tool:             "openai-gpt-3.5-turbo",
		ChainConfig:      "celo",
		ConfirmationType: ConfirmationOnChain,
		PrivateKeyPath:   "ethereum_private_key.txt",
	}
}

func TestWrapper_ForwardsPromptAndConfig(t *testing.T) {
	var got Request
	calls := 0
	w := NewWrapper(defaultConfig(), InteractorFunc(func(ctx context.Context, req Request) (Result, error) {
		calls++
		got = req
		return Result{Value: "world"}, nil
	}), nil)

	result, err := w.GetPrompt(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "world", result.Value)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Request{Prompt: "Hello", Config: defaultConfig()}, got)
}

func TestWrapper_EmptyPromptPassedThrough(t *testing.T) {
	var got string
	w := NewWrapper(defaultConfig(), InteractorFunc(func(ctx context.Context, req Request) (Result, error) {
		got = req.Prompt
		return Result{}, nil
	}), nil)

	_, err := w.GetPrompt(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestWrapper_ErrorPropagatesUnchanged(t *testing.T) {
	badKey := errors.New("bad key")
	calls := 0
	w := NewWrapper(defaultConfig(), InteractorFunc(func(ctx context.Context, req Request) (Result, error) {
		calls++
		return Result{}, badKey
	}), nil)

	result, err := w.GetPrompt(context.Background(), "Hello")
	assert.Nil(t, result)
	assert.Same(t, badKey, err)
	assert.Equal(t, "bad key", err.Error())
	assert.Equal(t, 1, calls, "no retry")
}

func TestWrapper_LogsResult(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := NewWrapper(defaultConfig(), InteractorFunc(func(ctx context.Context, req Request) (Result, error) {
		return Result{Value: "a haiku", RequestID: "7"}, nil
	}), zap.New(core).Sugar())

	_, err := w.GetPrompt(context.Background(), "haiku please")
	require.NoError(t, err)

	entries := logs.FilterMessage("Mech delivered result").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "a haiku", fields["result"])
	assert.Equal(t, int64(2), fields["agent_id"])
	assert.Equal(t, "7", fields["mech_request_id"])
}

func TestWrapper_SetConfig(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	w := NewWrapper(defaultConfig(), InteractorFunc(func(ctx context.Context, req Request) (Result, error) {
		mu.Lock()
		seen = append(seen, req.AgentID)
		mu.Unlock()
		return Result{}, nil
	}), nil)

	_, _ = w.GetPrompt(context.Background(), "a")

	next := defaultConfig()
	next.AgentID = 6
	next.Tool = "prediction-online"
	w.SetConfig(next)
	assert.Equal(t, next, w.Config())

	_, _ = w.GetPrompt(context.Background(), "b")
	assert.Equal(t, []int{2, 6}, seen)
}

func TestWrapper_ConcurrentCalls(t *testing.T) {
	w := NewWrapper(defaultConfig(), InteractorFunc(func(ctx context.Context, req Request) (Result, error) {
		return Result{Value: req.Prompt}, nil
	}), nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				cfg := defaultConfig()
				cfg.AgentID = i
				w.SetConfig(cfg)
			}
			result, err := w.GetPrompt(context.Background(), "p")
			assert.NoError(t, err)
			assert.Equal(t, "p", result.Value)
		}(i)
	}
	wg.Wait()
}
