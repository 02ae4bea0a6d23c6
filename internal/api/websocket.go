package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/netstats-history/netdelta/internal/models"
	"github.com/netstats-history/netdelta/internal/session"
)

// WebSocket message types for the report query protocol
const (
	// Client -> Server messages
	MsgTypeSummary   = "report:summary"
	MsgTypeGetDeltas = "deltas:get"
	MsgTypePing      = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeDeltas    = "deltas"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

// WSMessage is the envelope for every frame in both directions. Replies carry
// the ID of the request they answer.
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// DeltasRequestPayload asks for one page of an interface's delta table.
type DeltasRequestPayload struct {
	Interface  string `json:"interface"`
	Page       int    `json:"page,omitempty"`
	PageSize   int    `json:"pageSize,omitempty"`
	ResetsOnly bool   `json:"resetsOnly,omitempty"`
}

// WSSummaryResponse answers report:summary.
type WSSummaryResponse struct {
	ID         string             `json:"id"`
	Source     string             `json:"source,omitempty"`
	Samples    int                `json:"samples"`
	TimeRange  *models.TimeRange  `json:"timeRange,omitempty"`
	Interfaces []interfaceSummary `json:"interfaces"`
}

// WSErrorResponse is the payload of an error frame.
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WebSocketHandler lets a client page through the report over one connection.
type WebSocketHandler struct {
	result   *session.Result
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a handler serving result.
func NewWebSocketHandler(result *session.Result) *WebSocketHandler {
	return &WebSocketHandler{
		result: result,
		upgrader: websocket.Upgrader{
			// The view is read-only and usually bound to localhost.
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
		},
	}
}

// HandleWebSocket upgrades the connection and answers query frames until the
// client goes away.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	logger := c.Logger()
	logger.Debugf("[WebSocket] client connected from %s", c.RealIP())

	wsh.sendMessage(c, ws, WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()})

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warnf("[WebSocket] connection error: %v", err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			wsh.sendMessage(c, ws, WSMessage{Type: MsgTypePong, ID: msg.ID, Timestamp: time.Now().UnixMilli()})
		case MsgTypeSummary:
			wsh.handleSummary(c, ws, msg)
		case MsgTypeGetDeltas:
			wsh.handleGetDeltas(c, ws, msg)
		default:
			wsh.sendError(c, ws, msg.ID, "unknown message type: "+msg.Type, "INVALID_TYPE")
		}
	}

	logger.Debugf("[WebSocket] client disconnected")
	return nil
}

func (wsh *WebSocketHandler) handleSummary(c echo.Context, ws *websocket.Conn, msg WSMessage) {
	r := wsh.result.Report
	wsh.sendMessage(c, ws, WSMessage{
		Type:      MsgTypeSummary,
		ID:        msg.ID,
		Timestamp: time.Now().UnixMilli(),
		Payload: mustJSON(WSSummaryResponse{
			ID:         wsh.result.ID,
			Source:     r.Source,
			Samples:    r.Samples,
			TimeRange:  r.TimeRange,
			Interfaces: summarize(r),
		}),
	})
}

func (wsh *WebSocketHandler) handleGetDeltas(c echo.Context, ws *websocket.Conn, msg WSMessage) {
	var req DeltasRequestPayload
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		wsh.sendError(c, ws, msg.ID, "invalid payload: "+err.Error(), "BAD_REQUEST")
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = defaultPageSize
	}
	if req.Page < 1 || req.PageSize < 1 || req.PageSize > maxPageSize {
		wsh.sendError(c, ws, msg.ID, "page and pageSize out of range", "VALIDATION_ERROR")
		return
	}

	series, ok := wsh.result.Report.Series(req.Interface)
	if !ok {
		wsh.sendError(c, ws, msg.ID, "interface not found: "+req.Interface, "NOT_FOUND")
		return
	}

	wsh.sendMessage(c, ws, WSMessage{
		Type:      MsgTypeDeltas,
		ID:        msg.ID,
		Timestamp: time.Now().UnixMilli(),
		Payload:   mustJSON(pageDeltas(series, req.Page, req.PageSize, req.ResetsOnly)),
	})
}

func (wsh *WebSocketHandler) sendMessage(c echo.Context, ws *websocket.Conn, msg WSMessage) {
	if err := ws.WriteJSON(msg); err != nil {
		c.Logger().Warnf("[WebSocket] failed to send message: %v", err)
	}
}

func (wsh *WebSocketHandler) sendError(c echo.Context, ws *websocket.Conn, id, message, code string) {
	wsh.sendMessage(c, ws, WSMessage{
		Type:      MsgTypeError,
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
		Payload:   mustJSON(WSErrorResponse{Message: message, Code: code}),
	})
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
