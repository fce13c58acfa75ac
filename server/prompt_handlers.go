package server

import (
	"net/http"
	"time"

	"github.com/teranos/mechrelay/errors"
	"github.com/teranos/mechrelay/logger"
)

// HandleGetPrompt relays the prompt query parameter to the mech.
//
// An absent parameter becomes the default prompt; a present but empty one is
// sent as the empty string. Any failure is a 500 carrying the error's message.
func (s *RelayServer) HandleGetPrompt(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientKey(r), time.Now()) {
		s.metrics.rateLimited()
		writeError(w, statusFor(errors.ErrRateLimited), errors.ErrRateLimited.Error())
		return
	}

	prompt := s.getDefaultPrompt()
	if values, ok := r.URL.Query()["prompt"]; ok && len(values) > 0 {
		prompt = values[0]
	}

	log := logger.FromContext(r.Context(), s.logger)
	tool := s.prompter.Config().Tool

	done := s.metrics.interactionStarted()
	start := time.Now()
	result, err := s.prompter.GetPrompt(r.Context(), prompt)
	done(tool, err, time.Since(start))

	if err != nil {
		log.Errorw("Prompt failed",
			logger.FieldPromptLen, len(prompt),
			logger.FieldError, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, promptSuccess{Success: true, Response: result.Value}); err != nil {
		log.Warnw("Failed to write prompt response", logger.FieldError, err)
	}
}
