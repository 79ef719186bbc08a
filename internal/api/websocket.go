package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/pid-digitizer/backend/internal/export"
	"github.com/pid-digitizer/backend/internal/logging"
	"github.com/pid-digitizer/backend/internal/models"
)

// WebSocket message types for the export protocol
const (
	// Client -> Server messages
	MsgTypeExportSubmit = "export:submit"
	MsgTypeJobWatch     = "job:watch"
	MsgTypePing         = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeAck       = "ack"
	MsgTypeProgress  = "progress"
	MsgTypeComplete  = "complete"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

// WSMessage is the envelope of every message in both directions.
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// JobWatchPayload asks for updates on an existing job
type JobWatchPayload struct {
	JobID string `json:"jobId"`
}

// WSCompleteResponse carries the finished export
type WSCompleteResponse struct {
	Type   string               `json:"type"`
	JobID  string               `json:"jobId"`
	Record *models.ExportRecord `json:"record"`
}

// WSErrorResponse reports a rejected message or a failed job
type WSErrorResponse struct {
	Type    string `json:"type"`
	JobID   string `json:"jobId,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WebSocketHandler runs export jobs submitted over a WebSocket and pushes
// their progress back on the same connection.
type WebSocketHandler struct {
	exports  ExportRunner
	defaults models.ExportOptions
	upgrader websocket.Upgrader
	log      *log.Logger

	pollInterval time.Duration
	watchTimeout time.Duration
}

// NewWebSocketHandler creates a WebSocket export handler. origins lists the
// allowed Origin headers; "*" or an empty list allows any.
func NewWebSocketHandler(exports ExportRunner, defaults models.ExportOptions, origins []string) *WebSocketHandler {
	return &WebSocketHandler{
		exports:  exports,
		defaults: defaults,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(origins),
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		log:          logging.New("websocket"),
		pollInterval: 100 * time.Millisecond,
		watchTimeout: 5 * time.Minute,
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(origins) == 0 {
			return true
		}
		for _, o := range origins {
			if o == "*" || strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// wsConn serializes writes; gorilla connections allow one concurrent writer.
type wsConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	done    chan struct{}
	log     *log.Logger
}

// HandleWebSocket upgrades the connection and serves the export protocol
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	conn := &wsConn{ws: ws, done: make(chan struct{}), log: wsh.log}
	var watchers sync.WaitGroup
	defer func() {
		close(conn.done)
		watchers.Wait()
		ws.Close()
	}()

	wsh.log.Debugj(log.JSON{"event": "ws_connected", "remote": c.RealIP()})
	conn.send(WSMessage{Type: MsgTypeConnected})

	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsh.log.Warnf("websocket read: %v", err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			conn.send(WSMessage{Type: MsgTypePong, ID: msg.ID})
		case MsgTypeExportSubmit:
			if job, ok := wsh.handleSubmit(conn, msg); ok {
				watchers.Add(1)
				go func() {
					defer watchers.Done()
					wsh.watchJob(conn, job.ID)
				}()
			}
		case MsgTypeJobWatch:
			var payload JobWatchPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.JobID == "" {
				conn.sendError("", "invalid job:watch payload", "INVALID_PAYLOAD")
				continue
			}
			if _, ok := wsh.exports.GetJob(payload.JobID); !ok {
				conn.sendError(payload.JobID, "job not found: "+payload.JobID, "NOT_FOUND")
				continue
			}
			watchers.Add(1)
			go func() {
				defer watchers.Done()
				wsh.watchJob(conn, payload.JobID)
			}()
		default:
			conn.sendError("", "unknown message type: "+msg.Type, "INVALID_TYPE")
		}
	}

	wsh.log.Debugj(log.JSON{"event": "ws_disconnected", "remote": c.RealIP()})
	return nil
}

// handleSubmit decodes an export request and starts its job. The ack carries
// the client's message id and the new job id.
func (wsh *WebSocketHandler) handleSubmit(conn *wsConn, msg WSMessage) (export.Job, bool) {
	req := models.NewExportRequest(wsh.defaults)
	if len(msg.Payload) == 0 {
		conn.sendError("", "export:submit needs a payload", "INVALID_PAYLOAD")
		return export.Job{}, false
	}
	if err := json.NewDecoder(bytes.NewReader(msg.Payload)).Decode(req); err != nil {
		conn.sendError("", "invalid export payload: "+err.Error(), "INVALID_PAYLOAD")
		return export.Job{}, false
	}
	if req.DrawingID == "" {
		conn.sendError("", "validation failed for field: drawingId", "VALIDATION_ERROR")
		return export.Job{}, false
	}

	job := wsh.exports.StartJob(req)
	conn.send(WSMessage{Type: MsgTypeAck, ID: msg.ID, Payload: mustJSON(job)})
	return job, true
}

// watchJob pushes a progress message whenever the job changes and a final
// complete or error message when it finishes.
func (wsh *WebSocketHandler) watchJob(conn *wsConn, jobID string) {
	ticker := time.NewTicker(wsh.pollInterval)
	defer ticker.Stop()
	timeout := time.NewTimer(wsh.watchTimeout)
	defer timeout.Stop()

	var last export.Job
	for {
		job, ok := wsh.exports.GetJob(jobID)
		if !ok {
			conn.sendError(jobID, "job not found: "+jobID, "NOT_FOUND")
			return
		}
		if job.Status != last.Status || job.Progress != last.Progress || job.Stage != last.Stage {
			conn.send(WSMessage{Type: MsgTypeProgress, ID: jobID, Payload: mustJSON(job)})
			last = job
		}
		if job.Done() {
			if job.Status == export.StatusComplete {
				conn.send(WSMessage{Type: MsgTypeComplete, ID: jobID, Payload: mustJSON(WSCompleteResponse{
					Type:   MsgTypeComplete,
					JobID:  jobID,
					Record: job.Record,
				})})
			} else {
				conn.sendError(jobID, job.Error, "EXPORT_FAILED")
			}
			return
		}

		select {
		case <-conn.done:
			return
		case <-timeout.C:
			conn.sendError(jobID, "watch timeout", "EXPORT_TIMEOUT")
			return
		case <-ticker.C:
		}
	}
}

func (c *wsConn) send(msg WSMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteJSON(msg); err != nil {
		c.log.Debugf("websocket write %s: %v", msg.Type, err)
	}
}

func (c *wsConn) sendError(jobID, message, code string) {
	c.send(WSMessage{
		Type: MsgTypeError,
		ID:   jobID,
		Payload: mustJSON(WSErrorResponse{
			Type:    MsgTypeError,
			JobID:   jobID,
			Message: message,
			Code:    code,
		}),
	})
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
