// Package tracker records every relayed prompt in the history database.
package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/teranos/mechrelay/errors"
)

// Source names where an interaction came from
const (
	SourceHTTP = "http"
	SourceCLI  = "cli"
	SourceMCP  = "mcp"
)

// Interaction is one prompt relayed to a mech agent and its outcome
type Interaction struct {
	ID               string          `json:"id"`
	RequestID        string          `json:"request_id,omitempty"`
	Source           string          `json:"source"`
	Prompt           string          `json:"prompt"`
	AgentID          int             `json:"agent_id"`
	Tool             string          `json:"tool"`
	ChainConfig      string          `json:"chain_config"`
	ConfirmationType string          `json:"confirmation_type"`
	Success          bool            `json:"success"`
	Response         json.RawMessage `json:"response,omitempty"`
	ErrorMessage     *string         `json:"error_message,omitempty"`
	MechRequestID    string          `json:"mech_request_id,omitempty"`
	DeliveryURL      string          `json:"delivery_url,omitempty"`
	TxURL            string          `json:"tx_url,omitempty"`
	StartedAt        time.Time       `json:"started_at"`
	DurationMS       int64           `json:"duration_ms"`
}

// Stats aggregates interactions over a time window
type Stats struct {
	TotalRequests      int     `json:"total_requests"`
	SuccessfulRequests int     `json:"successful_requests"`
	FailedRequests     int     `json:"failed_requests"`
	SuccessRate        float64 `json:"success_rate"`
	AvgDurationMS      float64 `json:"avg_duration_ms"`
	UniqueTools        int     `json:"unique_tools"`
}

// ToolBreakdown is the per-tool share of a time window
type ToolBreakdown struct {
	Tool          string  `json:"tool"`
	ChainConfig   string  `json:"chain_config"`
	RequestCount  int     `json:"request_count"`
	SuccessCount  int     `json:"success_count"`
	AvgDurationMS float64 `json:"avg_duration_ms"`
}

// InteractionTracker stores interactions in the interactions table
type InteractionTracker struct {
	db *sql.DB
}

// NewInteractionTracker creates a tracker on a migrated database
func NewInteractionTracker(db *sql.DB) *InteractionTracker {
	return &InteractionTracker{db: db}
}

// Track inserts the interaction, assigning an ID when it has none
func (t *InteractionTracker) Track(ctx context.Context, in *Interaction) error {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.StartedAt.IsZero() {
		in.StartedAt = time.Now()
	}

	var response any
	if len(in.Response) > 0 {
		response = string(in.Response)
	}

	query := `
		INSERT INTO interactions (
			id, request_id, source, prompt, agent_id, tool, chain_config,
			confirmation_type, success, response, error_message,
			mech_request_id, delivery_url, tx_url, started_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := t.db.ExecContext(ctx, query,
		in.ID, in.RequestID, in.Source, in.Prompt, in.AgentID, in.Tool, in.ChainConfig,
		in.ConfirmationType, in.Success, response, in.ErrorMessage,
		in.MechRequestID, in.DeliveryURL, in.TxURL, in.StartedAt.UTC(), in.DurationMS,
	)
	if err != nil {
		return errors.Wrapf(err, "insert interaction %s", in.ID)
	}
	return nil
}

// maxRecentLimit caps one page of history
const maxRecentLimit = 1000

// Recent returns the newest interactions first, at most limit of them
func (t *InteractionTracker) Recent(ctx context.Context, limit int) ([]Interaction, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	query := `
		SELECT id, COALESCE(request_id, ''), source, prompt, agent_id, tool, chain_config,
			confirmation_type, success, response, error_message,
			COALESCE(mech_request_id, ''), COALESCE(delivery_url, ''), COALESCE(tx_url, ''),
			started_at, duration_ms
		FROM interactions
		ORDER BY started_at DESC
		LIMIT ?`

	rows, err := t.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query recent interactions")
	}
	defer rows.Close()

	interactions := []Interaction{}
	for rows.Next() {
		var in Interaction
		var response, errMsg sql.NullString
		if err := rows.Scan(&in.ID, &in.RequestID, &in.Source, &in.Prompt, &in.AgentID,
			&in.Tool, &in.ChainConfig, &in.ConfirmationType, &in.Success,
			&response, &errMsg, &in.MechRequestID, &in.DeliveryURL, &in.TxURL,
			&in.StartedAt, &in.DurationMS); err != nil {
			return nil, errors.Wrap(err, "scan interaction")
		}
		if response.Valid {
			in.Response = json.RawMessage(response.String)
		}
		if errMsg.Valid {
			in.ErrorMessage = &errMsg.String
		}
		interactions = append(interactions, in)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate interactions")
	}
	return interactions, nil
}

// Stats returns aggregate statistics for interactions started at or after since
func (t *InteractionTracker) Stats(ctx context.Context, since time.Time) (*Stats, error) {
	query := `
		SELECT
			COUNT(*) as total_requests,
			COUNT(CASE WHEN success = 1 THEN 1 END) as successful_requests,
			COALESCE(AVG(duration_ms), 0) as avg_duration_ms,
			COUNT(DISTINCT tool) as unique_tools
		FROM interactions
		WHERE started_at >= ?`

	var stats Stats
	err := t.db.QueryRowContext(ctx, query, since.UTC()).Scan(
		&stats.TotalRequests, &stats.SuccessfulRequests,
		&stats.AvgDurationMS, &stats.UniqueTools,
	)
	if err != nil {
		return nil, errors.Wrap(err, "query interaction stats")
	}

	stats.FailedRequests = stats.TotalRequests - stats.SuccessfulRequests
	if stats.TotalRequests > 0 {
		stats.SuccessRate = float64(stats.SuccessfulRequests) / float64(stats.TotalRequests)
	}
	return &stats, nil
}

// ByTool returns per-tool counts for interactions started at or after since,
// busiest tool first
func (t *InteractionTracker) ByTool(ctx context.Context, since time.Time) ([]ToolBreakdown, error) {
	query := `
		SELECT
			tool,
			chain_config,
			COUNT(*) as request_count,
			COUNT(CASE WHEN success = 1 THEN 1 END) as success_count,
			COALESCE(AVG(duration_ms), 0) as avg_duration_ms
		FROM interactions
		WHERE started_at >= ?
		GROUP BY tool, chain_config
		ORDER BY request_count DESC, tool`

	rows, err := t.db.QueryContext(ctx, query, since.UTC())
	if err != nil {
		return nil, errors.Wrap(err, "query tool breakdown")
	}
	defer rows.Close()

	var breakdown []ToolBreakdown
	for rows.Next() {
		var tb ToolBreakdown
		if err := rows.Scan(&tb.Tool, &tb.ChainConfig, &tb.RequestCount, &tb.SuccessCount, &tb.AvgDurationMS); err != nil {
			return nil, errors.Wrap(err, "scan tool breakdown")
		}
		breakdown = append(breakdown, tb)
	}
	return breakdown, rows.Err()
}
