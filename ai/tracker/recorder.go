package tracker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/mechrelay/ai/mech"
	"github.com/teranos/mechrelay/db"
	"github.com/teranos/mechrelay/internal/util"
	"github.com/teranos/mechrelay/logger"
)

// Prompter is the wrapper surface shared by the HTTP, CLI and MCP entry points
type Prompter interface {
	GetPrompt(ctx context.Context, prompt string) (*mech.Result, error)
	Config() mech.Config
}

// Recorder is a Prompter that stores every call it forwards.
// Storage failures are logged and never change the call's outcome.
type Recorder struct {
	next    Prompter
	tracker *InteractionTracker
	source  string
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewRecorder wraps next. A nil tracker disables recording.
func NewRecorder(next Prompter, tracker *InteractionTracker, source string, log *zap.SugaredLogger) *Recorder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Recorder{
		next:    next,
		tracker: tracker,
		source:  source,
		logger:  log.Named("history"),
		now:     time.Now,
	}
}

// Config returns the wrapped prompter's configuration
func (r *Recorder) Config() mech.Config {
	return r.next.Config()
}

// GetPrompt forwards to the wrapped prompter and records the outcome
func (r *Recorder) GetPrompt(ctx context.Context, prompt string) (*mech.Result, error) {
	cfg := r.next.Config()
	start := r.now()
	result, err := r.next.GetPrompt(ctx, prompt)

	if r.tracker != nil {
		r.record(ctx, prompt, cfg, start, result, err)
	}
	return result, err
}

func (r *Recorder) record(ctx context.Context, prompt string, cfg mech.Config, start time.Time, result *mech.Result, callErr error) {
	in := &Interaction{
		RequestID:        logger.RequestIDFromContext(ctx),
		Source:           r.source,
		Prompt:           prompt,
		AgentID:          cfg.AgentID,
		Tool:             cfg.Tool,
		ChainConfig:      cfg.ChainConfig,
		ConfirmationType: cfg.ConfirmationType.Flag(),
		Success:          callErr == nil,
		StartedAt:        start,
		DurationMS:       r.now().Sub(start).Milliseconds(),
	}
	if callErr != nil {
		in.ErrorMessage = util.Ptr(callErr.Error())
	}
	if result != nil {
		in.MechRequestID = result.RequestID
		in.DeliveryURL = result.DeliveryURL
		in.TxURL = result.TxURL
		if encoded, err := json.Marshal(result.Value); err == nil {
			in.Response = encoded
		}
	}

	// The caller may have gone away; the row is still worth keeping
	if err := r.tracker.Track(context.WithoutCancel(ctx), in); err != nil {
		log := logger.FromContext(ctx, r.logger)
		if db.IsDatabaseClosed(err) {
			log.Debugw("Interaction not recorded, history closed", logger.FieldError, err)
			return
		}
		log.Warnw("Failed to record interaction", logger.FieldError, err)
	}
}
