package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/quizzine/quizzine-backend/internal/middleware"
	"github.com/quizzine/quizzine-backend/internal/service"
	ws "github.com/quizzine/quizzine-backend/internal/websocket"
	"github.com/rs/zerolog"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPongTimeout  = 60 * time.Second
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
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

// WSHandler streams countdown events for live sessions.
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
// WS /ws/v1/sessions/:id/stream
// Upgrades to WebSocket and relays countdown, warning, and submitted
// events. The stream is one-way except for pings.
func (h *WSHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	hub, err := h.sessionService.Hub(sessionID, claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no live session with this ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	events, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	wsLog := h.log.With().
		Str("session_id", sessionID.String()).
		Str("user_id", claims.UserID.String()).
		Logger()
	wsLog.Info().Msg("Stream connected")

	// Reader goroutine: consumes pings and detects disconnects. All writes
	// stay on this goroutine; the reader only signals.
	done := make(chan struct{})
	pings := make(chan struct{}, 1)
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			conn.SetReadDeadline(time.Now().Add(wsPongTimeout))

			var action ws.Action
			if err := json.Unmarshal(raw, &action); err != nil {
				continue
			}
			if action.Type == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case <-done:
			wsLog.Debug().Msg("Stream disconnected")
			return
		case <-pings:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ws.Event{Type: ws.EventPong}); err != nil {
				return
			}
		case ev, open := <-events:
			if !open {
				// Session left the registry; tell the client and hang up.
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(wsWriteTimeout))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(ev); err != nil {
				wsLog.Debug().Err(err).Msg("Event write failed")
				return
			}
			if ev.Type == ws.EventSubmitted {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "submitted"),
					time.Now().Add(wsWriteTimeout))
				return
			}
		}
	}
}
