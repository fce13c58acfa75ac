// Package server exposes the mech wrapper over HTTP.
package server

import (
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/mechrelay/ai/tracker"
	"github.com/teranos/mechrelay/errors"
	"github.com/teranos/mechrelay/internal/ratelimiter"
)

// DefaultPrompt is used when a request carries no prompt parameter
const DefaultPrompt = "Write a Haiku about web3 hackathons?"

// Options configures a RelayServer
type Options struct {
	// Prompter relays prompts to the mech. Required.
	Prompter tracker.Prompter
	// History stores interactions; nil disables history.
	History *tracker.InteractionTracker
	// DefaultPrompt replaces an absent prompt parameter. Empty uses DefaultPrompt.
	DefaultPrompt string
	// AllowedOrigins lists CORS origins; "*" or an empty list allows any origin.
	AllowedOrigins []string
	MetricsEnabled bool
	// RateLimitRPS limits /get-prompt per remote address; 0 disables it.
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         *zap.SugaredLogger
}

// RelayServer serves /get-prompt and its supporting endpoints
type RelayServer struct {
	prompter      tracker.Prompter
	history       *tracker.InteractionTracker
	defaultPrompt atomic.Pointer[string]
	origins       atomic.Pointer[[]string]
	metrics       *relayMetrics // nil when disabled
	limiter       *ratelimiter.KeyLimiter
	logger        *zap.SugaredLogger

	handler    http.Handler
	httpServer *http.Server
	mu         sync.Mutex // guards httpServer

	state   atomic.Int32
	started time.Time
}

// NewRelayServer builds the server and its routes. When History is set,
// every relayed prompt is recorded.
func NewRelayServer(opts Options) (*RelayServer, error) {
	if opts.Prompter == nil {
		return nil, errors.New("prompter cannot be nil")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("server")

	prompter := opts.Prompter
	if opts.History != nil {
		prompter = tracker.NewRecorder(prompter, opts.History, tracker.SourceHTTP, log)
	}

	s := &RelayServer{
		prompter: prompter,
		history:  opts.History,
		limiter:  ratelimiter.New(opts.RateLimitRPS, opts.RateLimitBurst, 10*time.Minute),
		logger:   log,
		started:  time.Now(),
	}
	s.SetDefaultPrompt(opts.DefaultPrompt)
	s.SetAllowedOrigins(opts.AllowedOrigins)
	if opts.MetricsEnabled {
		s.metrics = newRelayMetrics()
	}
	s.state.Store(int32(ServerStateRunning))
	s.handler = s.routes()

	return s, nil
}

// Handler returns the server's root handler, middleware included
func (s *RelayServer) Handler() http.Handler {
	return s.handler
}

// SetDefaultPrompt changes the prompt used when none is supplied
func (s *RelayServer) SetDefaultPrompt(prompt string) {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	s.defaultPrompt.Store(&prompt)
}

// SetAllowedOrigins replaces the CORS origin list
func (s *RelayServer) SetAllowedOrigins(origins []string) {
	cp := slices.Clone(origins)
	s.origins.Store(&cp)
}

func (s *RelayServer) getDefaultPrompt() string {
	return *s.defaultPrompt.Load()
}

// State returns the current lifecycle state
func (s *RelayServer) State() ServerState {
	return ServerState(s.state.Load())
}

func (s *RelayServer) setState(newState ServerState) {
	s.state.Store(int32(newState))
	s.logger.Infow("Server state changed", "new_state", newState.String())
}
