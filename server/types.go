package server

// ServerState is the lifecycle phase of a RelayServer
type ServerState int32

const (
	ServerStateRunning  ServerState = iota // Normal operation
	ServerStateDraining                    // Graceful shutdown in progress
	ServerStateStopped                     // Shutdown complete
)

// String returns the human-readable state name
func (s ServerState) String() string {
	switch s {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// promptSuccess is the body of a successful /get-prompt call
type promptSuccess struct {
	Success  bool `json:"success"`
	Response any  `json:"response"`
}

// errorBody is the body of every failed API call
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// healthResponse is the body of /health
type healthResponse struct {
	Status         string `json:"status"`
	State          string `json:"state"`
	Version        string `json:"version"`
	Commit         string `json:"commit"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	HistoryEnabled bool   `json:"history_enabled"`
	AgentID        int    `json:"agent_id"`
	Tool           string `json:"tool"`
	Chain          string `json:"chain"`
}
