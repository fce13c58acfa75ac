package mech

import (
	"bufio"
	"encoding/json"
	"regexp"
	"strings"
)

// clientOutput holds what we recognise in the mech client's stdout
type clientOutput struct {
	TxURL       string
	RequestID   string
	DeliveryURL string
	AgentData   string // text after "Data from agent:"
	Raw         string // trimmed stdout
}

var (
	txSentPattern    = regexp.MustCompile(`^Transaction sent:\s*(\S+)`)
	requestIDPattern = regexp.MustCompile(`^Created on-chain request with ID\s+(\S+)`)
	arrivedPattern   = regexp.MustCompile(`^Data arrived:\s*(\S+)`)
	agentDataPrefix  = "Data from agent:"
)

// parseClientOutput scans the client's stdout line by line.
// The last occurrence of each marker wins.
func parseClientOutput(stdout string) clientOutput {
	out := clientOutput{Raw: strings.TrimSpace(stdout)}

	scanner := bufio.NewScanner(strings.NewReader(stdout))
	scanner.Buffer(make([]byte, 64*1024), 8*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case txSentPattern.MatchString(line):
			out.TxURL = txSentPattern.FindStringSubmatch(line)[1]
		case requestIDPattern.MatchString(line):
			out.RequestID = requestIDPattern.FindStringSubmatch(line)[1]
		case arrivedPattern.MatchString(line):
			out.DeliveryURL = arrivedPattern.FindStringSubmatch(line)[1]
		case strings.HasPrefix(line, agentDataPrefix):
			out.AgentData = strings.TrimSpace(strings.TrimPrefix(line, agentDataPrefix))
		}
	}
	return out
}

// decodeValue returns JSON text as a decoded value and anything else as a string
func decodeValue(text string) any {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v
	}
	return text
}

// lastLine returns the last non-empty line of s
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
