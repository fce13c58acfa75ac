package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teranos/mechrelay/ai/mech"
	"github.com/teranos/mechrelay/errors"
	testdb "github.com/teranos/mechrelay/internal/testing"
	"github.com/teranos/mechrelay/logger"
)

func newWrapper(fn mech.InteractorFunc) *mech.Wrapper {
	return mech.NewWrapper(mech.Config{
		AgentID:          2,
		Tool:             "openai-gpt-3.5-turbo",
		ChainConfig:      "celo",
		ConfirmationType: "ON_CHAIN",
		PrivateKeyPath:   "ethereum_private_key.txt",
	}, fn, nil)
}

func TestRecorder_RecordsSuccess(t *testing.T) {
	tracker := NewInteractionTracker(testdb.CreateTestDB(t))
	w := newWrapper(func(ctx context.Context, req mech.Request) (mech.Result, error) {
		return mech.Result{Value: map[string]any{"result": "haiku"}, RequestID: "77"}, nil
	})
	rec := NewRecorder(w, tracker, SourceMCP, nil)

	ctx := logger.WithRequestID(context.Background(), "req-9")
	result, err := rec.GetPrompt(ctx, "Hello")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"result": "haiku"}, result.Value)

	rows, err := tracker.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, SourceMCP, rows[0].Source)
	assert.Equal(t, "req-9", rows[0].RequestID)
	assert.Equal(t, "Hello", rows[0].Prompt)
	assert.Equal(t, "on-chain", rows[0].ConfirmationType)
	assert.Equal(t, "77", rows[0].MechRequestID)
	assert.JSONEq(t, `{"result":"haiku"}`, string(rows[0].Response))
}

func TestRecorder_RecordsFailureAndReturnsSameError(t *testing.T) {
	tracker := NewInteractionTracker(testdb.CreateTestDB(t))
	badKey := errors.New("bad key")
	rec := NewRecorder(newWrapper(func(ctx context.Context, req mech.Request) (mech.Result, error) {
		return mech.Result{}, badKey
	}), tracker, SourceHTTP, nil)

	_, err := rec.GetPrompt(context.Background(), "Hello")
	assert.Same(t, badKey, err)

	rows, err := tracker.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Success)
	require.NotNil(t, rows[0].ErrorMessage)
	assert.Equal(t, "bad key", *rows[0].ErrorMessage)
}

func TestRecorder_StorageFailureDoesNotFailCall(t *testing.T) {
	conn := testdb.CreateTestDB(t)
	tracker := NewInteractionTracker(conn)
	conn.Close()

	core, logs := observer.New(zap.DebugLevel)
	rec := NewRecorder(newWrapper(func(ctx context.Context, req mech.Request) (mech.Result, error) {
		return mech.Result{Value: "ok"}, nil
	}), tracker, SourceCLI, zap.New(core).Sugar())

	result, err := rec.GetPrompt(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Value)
	assert.Equal(t, 1, logs.FilterMessage("Interaction not recorded, history closed").Len())
}

func TestRecorder_NilTracker(t *testing.T) {
	rec := NewRecorder(newWrapper(func(ctx context.Context, req mech.Request) (mech.Result, error) {
		return mech.Result{Value: "ok"}, nil
	}), nil, SourceHTTP, nil)

	result, err := rec.GetPrompt(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Value)
	assert.Equal(t, 2, rec.Config().AgentID)
}

func TestRecorder_Duration(t *testing.T) {
	tracker := NewInteractionTracker(testdb.CreateTestDB(t))
	rec := NewRecorder(newWrapper(func(ctx context.Context, req mech.Request) (mech.Result, error) {
		return mech.Result{Value: "ok"}, nil
	}), tracker, SourceHTTP, nil)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	rec.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls-1) * 2500 * time.Millisecond)
	}

	_, err := rec.GetPrompt(context.Background(), "x")
	require.NoError(t, err)

	rows, err := tracker.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2500), rows[0].DurationMS)
}
