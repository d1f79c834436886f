package server

import (
	"encoding/json"

	"github.com/msto63/frege/foundation/script"
)

// Message types of the playground protocol
const (
	TypeRun    = "run"
	TypePing   = "ping"
	TypeResult = "result"
	TypeError  = "error"
	TypePong   = "pong"
)

// Error kinds that are not script errors
const (
	KindRequest script.ErrorKind = "request"
)

// WSMessage represents a client message
type WSMessage struct {
	Type      string          `json:"type"`                 // "run", "ping"
	RequestID string          `json:"request_id,omitempty"` // echoed back in the response
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// RunPayload is the payload of a run message and of POST /api/v1/run
type RunPayload struct {
	Source string `json:"source"`
}

// WSResponse represents a server message
type WSResponse struct {
	Type      string      `json:"type"` // "result", "error", "pong"
	RequestID string      `json:"request_id,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
}

// ResultPayload describes a successful run
type ResultPayload struct {
	ID         string   `json:"id"`
	Output     []string `json:"output"`
	Statements int      `json:"statements"`
	DurationMs float64  `json:"duration_ms"`
	Cached     bool     `json:"cached,omitempty"`
}

// ErrorPayload describes a failed run or a rejected request
type ErrorPayload struct {
	ID      string           `json:"id,omitempty"`
	Kind    script.ErrorKind `json:"kind"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Output  []string         `json:"output"`
	Cached  bool             `json:"cached,omitempty"`
}
