package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/docquiz/docquiz-backend/internal/exam"
	"github.com/docquiz/docquiz-backend/internal/middleware"
	"github.com/docquiz/docquiz-backend/internal/service"
	ws "github.com/docquiz/docquiz-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams countdown ticks and grading over WebSocket.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/:session_id/stream?token=...
// Pushes the countdown every second and the score report on submission.
// Accepts ping, answer and submit actions from the client.
func (h *WSHandler) SessionStream(c *gin.Context) {
	id, ok := middleware.GetSessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	session, err := h.sessionService.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", id.String()).Logger()
	wsLog.Info().Msg("Taker connected")

	// All writes happen in this goroutine; the reader only feeds actions
	// through the channel. Gorilla conns do not allow concurrent writers.
	// writerDone unblocks the reader's send once this goroutine returns.
	actions := make(chan ws.ClientMessage, 8)
	done := make(chan struct{})
	writerDone := make(chan struct{})
	defer close(writerDone)
	go h.readLoop(conn, wsLog, actions, done, writerDone)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	graded := false
	for {
		select {
		case <-done:
			wsLog.Debug().Msg("Connection closed")
			return

		case msg := <-actions:
			h.handleAction(c, conn, wsLog, session, id, msg, &graded)

		case <-ticker.C:
			snap := session.Snapshot()
			if snap.Status == exam.StatusSubmitted {
				if !graded {
					h.sendGraded(conn, session)
					graded = true
				}
				// Keep the connection up so a reloading client still sees
				// the graded event on reconnect; ticks stop.
				continue
			}
			if err := ws.WriteTyped(conn, ws.TickResponse{
				Event:         ws.EventTick,
				TimeRemaining: snap.TimeRemaining,
				Status:        string(snap.Status),
			}); err != nil {
				wsLog.Debug().Err(err).Msg("Tick write failed, closing")
				return
			}
		}
	}
}

// handleAction processes one client message.
func (h *WSHandler) handleAction(c *gin.Context, conn *websocket.Conn, wsLog zerolog.Logger, session *exam.Session, id uuid.UUID, msg ws.ClientMessage, graded *bool) {
	switch msg.Action {
	case ws.ActionPing:
		ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})

	case ws.ActionAnswer:
		if err := session.SelectAnswer(msg.Option); err != nil {
			ws.WriteError(conn, err.Error())
			return
		}
		ws.WriteTyped(conn, ws.AnswerResponse{Event: ws.EventSuccess, Status: "saved"})

	case ws.ActionSubmit:
		if _, err := h.sessionService.Submit(c.Request.Context(), id); err != nil {
			ws.WriteError(conn, err.Error())
			return
		}
		h.sendGraded(conn, session)
		*graded = true

	default:
		wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		ws.WriteError(conn, "unknown action: "+string(msg.Action))
	}
}

// sendGraded pushes the final score report.
func (h *WSHandler) sendGraded(conn *websocket.Conn, session *exam.Session) {
	report, ok := session.Report()
	if !ok {
		return
	}
	ws.WriteTyped(conn, ws.GradedResponse{
		Event:       ws.EventGraded,
		Status:      string(exam.StatusSubmitted),
		Total:       report.Total,
		Correct:     report.Correct,
		Incorrect:   report.Incorrect,
		Unattempted: report.Unattempted,
		Percentage:  report.Percentage,
		TimeTaken:   report.TimeTaken,
	})
}

// readLoop feeds client messages to the writer goroutine. The send selects
// on writerDone so the reader cannot block forever after the writer exits.
func (h *WSHandler) readLoop(conn *websocket.Conn, wsLog zerolog.Logger, actions chan<- ws.ClientMessage, done chan<- struct{}, writerDone <-chan struct{}) {
	defer close(done)
	for {
		var msg ws.ClientMessage
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}
		select {
		case actions <- msg:
		case <-writerDone:
			return
		}
	}
}
