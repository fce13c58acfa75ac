package tracker

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/mechrelay/errors"
	"github.com/teranos/mechrelay/internal/util"
	testdb "github.com/teranos/mechrelay/internal/testing"
)

func sampleInteraction(tool string, success bool, started time.Time) *Interaction {
	in := &Interaction{
		Source:           SourceHTTP,
		Prompt:           "Write a Haiku about web3 hackathons?",
		AgentID:          2,
		Tool:             tool,
		ChainConfig:      "celo",
		ConfirmationType: "on-chain",
		Success:          success,
		StartedAt:        started,
		DurationMS:       1500,
	}
	if success {
		in.Response = json.RawMessage(`"Code flows through the night"`)
	} else {
		in.ErrorMessage = util.Ptr("bad key")
	}
	return in
}

func TestTrackAndRecent(t *testing.T) {
	tracker := NewInteractionTracker(testdb.CreateTestDB(t))
	ctx := context.Background()
	now := time.Now()

	first := sampleInteraction("openai-gpt-3.5-turbo", true, now.Add(-2*time.Minute))
	first.RequestID = "req-1"
	first.MechRequestID = "1234"
	require.NoError(t, tracker.Track(ctx, first))
	assert.NotEmpty(t, first.ID, "Track should assign an ID")

	require.NoError(t, tracker.Track(ctx, sampleInteraction("openai-gpt-3.5-turbo", false, now.Add(-time.Minute))))

	recent, err := tracker.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	// Newest first
	assert.False(t, recent[0].Success)
	require.NotNil(t, recent[0].ErrorMessage)
	assert.Equal(t, "bad key", *recent[0].ErrorMessage)
	assert.Nil(t, recent[0].Response)

	got := recent[1]
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "req-1", got.RequestID)
	assert.Equal(t, "1234", got.MechRequestID)
	assert.True(t, got.Success)
	assert.JSONEq(t, `"Code flows through the night"`, string(got.Response))
	assert.WithinDuration(t, first.StartedAt, got.StartedAt, time.Millisecond)

	limited, err := tracker.Recent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecent_HugeLimit(t *testing.T) {
	tracker := NewInteractionTracker(testdb.CreateTestDB(t))
	ctx := context.Background()
	require.NoError(t, tracker.Track(ctx, sampleInteraction("openai-gpt-3.5-turbo", true, time.Now())))

	recent, err := tracker.Recent(ctx, math.MaxInt)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestRecent_SqlmockClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM interactions").
		WithArgs(maxRecentLimit).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	recent, err := NewInteractionTracker(db).Recent(context.Background(), math.MaxInt64)
	require.NoError(t, err)
	assert.Empty(t, recent)
	assert.NotNil(t, recent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsAndByTool(t *testing.T) {
	tracker := NewInteractionTracker(testdb.CreateTestDB(t))
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, tracker.Track(ctx, sampleInteraction("openai-gpt-3.5-turbo", true, now.Add(-time.Minute))))
	require.NoError(t, tracker.Track(ctx, sampleInteraction("openai-gpt-3.5-turbo", false, now.Add(-time.Minute))))
	require.NoError(t, tracker.Track(ctx, sampleInteraction("prediction-online", true, now.Add(-time.Minute))))
	// Outside the window
	require.NoError(t, tracker.Track(ctx, sampleInteraction("prediction-online", true, now.Add(-48*time.Hour))))

	stats, err := tracker.Stats(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalRequests)
	assert.Equal(t, 2, stats.SuccessfulRequests)
	assert.Equal(t, 1, stats.FailedRequests)
	assert.InDelta(t, 2.0/3.0, stats.SuccessRate, 0.001)
	assert.InDelta(t, 1500, stats.AvgDurationMS, 0.001)
	assert.Equal(t, 2, stats.UniqueTools)

	breakdown, err := tracker.ByTool(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	assert.Equal(t, "openai-gpt-3.5-turbo", breakdown[0].Tool)
	assert.Equal(t, 2, breakdown[0].RequestCount)
	assert.Equal(t, 1, breakdown[0].SuccessCount)
	assert.Equal(t, "prediction-online", breakdown[1].Tool)
}

func TestStats_Empty(t *testing.T) {
	tracker := NewInteractionTracker(testdb.CreateTestDB(t))

	stats, err := tracker.Stats(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalRequests)
	assert.Zero(t, stats.SuccessRate)
}

func TestTrack_Sqlmock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	tracker := NewInteractionTracker(db)
	in := sampleInteraction("openai-gpt-3.5-turbo", true, time.Now())
	in.ID = "fixed-id"

	mock.ExpectExec("INSERT INTO interactions").
		WithArgs("fixed-id", "", SourceHTTP, in.Prompt, 2, "openai-gpt-3.5-turbo", "celo",
			"on-chain", true, `"Code flows through the night"`, sqlmock.AnyArg(),
			"", "", "", sqlmock.AnyArg(), int64(1500)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, tracker.Track(context.Background(), in))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrack_SqlmockError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO interactions").WillReturnError(errors.New("disk full"))

	err = NewInteractionTracker(db).Track(context.Background(), sampleInteraction("t", true, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats_SqlmockError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT(.|\n)*FROM interactions").WillReturnError(errors.New("no such table: interactions"))

	_, err = NewInteractionTracker(db).Stats(context.Background(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interaction stats")
}
