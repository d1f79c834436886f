package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	flog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/utils/stringx"
)

const (
	readIdleTimeout = 120 * time.Second
	writeTimeout    = 10 * time.Second
)

// WebSocketHandler runs programs sent over a WebSocket connection
type WebSocketHandler struct {
	upgrader       websocket.Upgrader
	runner         *runner
	maxMessageSize int64
	logger         *flog.Logger
}

func newWebSocketHandler(r *runner, maxMessageSize int64, logger *flog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // the playground is meant for local use
			},
		},
		runner:         r,
		maxMessageSize: maxMessageSize,
		logger:         logger.WithField("component", "playground-websocket"),
	}
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnWithErr("WebSocket upgrade failed", err)
		return
	}
	h.handleConnection(r.Context(), conn)
}

// connection serializes writes; gorilla allows one concurrent writer
type connection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	logger  *flog.Logger
}

func (c *connection) send(resp WSResponse) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(resp); err != nil {
		c.logger.WarnWithErr("WebSocket send error", err)
	}
}

func (c *connection) sendError(requestID, code, message string) {
	c.send(WSResponse{
		Type:      TypeError,
		RequestID: requestID,
		Payload: ErrorPayload{
			Kind:    KindRequest,
			Code:    code,
			Message: message,
			Output:  []string{},
		},
	})
}

// handleConnection reads messages until the client goes away. Runs execute
// concurrently; each gets its own environment.
func (h *WebSocketHandler) handleConnection(parent context.Context, conn *websocket.Conn) {
	defer conn.Close()

	logger := h.logger.WithField("remote", conn.RemoteAddr().String())
	logger.Info("WebSocket connection established")

	c := &connection{conn: conn, logger: logger}

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(parent)
	defer func() {
		cancel()
		wg.Wait()
	}()

	if h.maxMessageSize > 0 {
		conn.SetReadLimit(h.maxMessageSize)
	}
	conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readIdleTimeout))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WarnWithErr("WebSocket read error", err)
			} else {
				logger.Info("WebSocket connection closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readIdleTimeout))

		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("", "invalid_message", "Invalid message: "+err.Error())
			continue
		}

		switch msg.Type {
		case TypePing:
			c.send(WSResponse{Type: TypePong, RequestID: msg.RequestID})

		case TypeRun:
			var payload RunPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				c.sendError(msg.RequestID, "invalid_payload", "Invalid run payload")
				continue
			}
			if stringx.IsBlank(payload.Source) {
				c.sendError(msg.RequestID, "invalid_request", "Source required")
				continue
			}

			wg.Add(1)
			go func(requestID, source string) {
				defer wg.Done()
				respType, respPayload := h.runner.run(ctx, source)
				c.send(WSResponse{Type: respType, RequestID: requestID, Payload: respPayload})
			}(msg.RequestID, payload.Source)

		default:
			c.sendError(msg.RequestID, "unknown_type", "Unknown message type: "+msg.Type)
		}
	}
}
