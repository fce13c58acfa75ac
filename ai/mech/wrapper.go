package mech

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/mechrelay/logger"
)

// Interactor performs one mech interaction
type Interactor interface {
	Interact(ctx context.Context, req Request) (Result, error)
}

// InteractorFunc adapts a function to the Interactor interface
type InteractorFunc func(ctx context.Context, req Request) (Result, error)

// Interact calls f(ctx, req)
func (f InteractorFunc) Interact(ctx context.Context, req Request) (Result, error) {
	return f(ctx, req)
}

// Wrapper binds an Interactor to the configured agent, tool and chain.
// Safe for concurrent use; SetConfig affects subsequent calls only.
type Wrapper struct {
	cfg        atomic.Pointer[Config]
	interactor Interactor
	logger     *zap.SugaredLogger
}

// NewWrapper creates a wrapper around interactor
func NewWrapper(cfg Config, interactor Interactor, log *zap.SugaredLogger) *Wrapper {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	w := &Wrapper{
		interactor: interactor,
		logger:     log.Named("mech"),
	}
	w.cfg.Store(&cfg)
	return w
}

// Config returns the configuration used for the next call
func (w *Wrapper) Config() Config {
	return *w.cfg.Load()
}

// SetConfig replaces the configuration used for subsequent calls
func (w *Wrapper) SetConfig(cfg Config) {
	w.cfg.Store(&cfg)
	w.logger.Infow("Mech configuration updated",
		logger.FieldAgentID, cfg.AgentID,
		logger.FieldTool, cfg.Tool,
		logger.FieldChain, cfg.ChainConfig)
}

// GetPrompt sends prompt to the configured agent and returns its delivery.
// Errors from the interactor are returned as-is.
func (w *Wrapper) GetPrompt(ctx context.Context, prompt string) (*Result, error) {
	cfg := w.Config()
	log := logger.FromContext(ctx, w.logger).With(
		logger.FieldAgentID, cfg.AgentID,
		logger.FieldTool, cfg.Tool,
		logger.FieldChain, cfg.ChainConfig,
	)

	log.Debugw("Sending prompt to mech",
		logger.FieldPromptLen, len(prompt),
		logger.FieldConfirmation, cfg.ConfirmationType.Flag())

	start := time.Now()
	result, err := w.interactor.Interact(ctx, Request{Prompt: prompt, Config: cfg})
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.Warnw("Mech interaction failed",
			logger.FieldDurationMS, elapsed,
			logger.FieldError, err)
		return nil, err
	}

	log.Infow("Mech delivered result",
		logger.FieldDurationMS, elapsed,
		logger.FieldMechRequest, result.RequestID,
		logger.FieldDeliveryURL, result.DeliveryURL,
		"result", result.Value)

	return &result, nil
}
