package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/stemsi/classbook-backend/internal/response"
	"github.com/stemsi/classbook-backend/internal/service"
	ws "github.com/stemsi/classbook-backend/internal/websocket"
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

// WSHandler streams a seating editor session over a WebSocket.
type WSHandler struct {
	seatingService *service.SeatingService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(seatingService *service.SeatingService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		seatingService: seatingService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SeatingSessionStream godoc
// WS /ws/v1/seating-sessions/:id
// Upgrades to WebSocket and applies editor actions as they arrive.
func (h *WSHandler) SeatingSessionStream(c *gin.Context) {
	sessionID := c.Param("id")

	// Reject unknown sessions before upgrading so the client gets a 404.
	view, err := h.seatingService.Get(sessionID)
	if err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", sessionID).Logger()
	wsLog.Info().Msg("Seating editor connected")

	_ = ws.WriteEvent(conn, ws.EventState, view)

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionState:
			h.reply(conn, wsLog, ws.EventState)(h.seatingService.Get(sessionID))
		case ws.ActionSelectDesk:
			h.reply(conn, wsLog, ws.EventState)(h.seatingService.SelectDesk(sessionID, msg.Desk))
		case ws.ActionAssignStudent:
			h.reply(conn, wsLog, ws.EventState)(h.seatingService.AssignStudent(sessionID, msg.StudentID))
		case ws.ActionSave:
			h.handleSave(conn, wsLog, sessionID)
		case ws.ActionPing:
			_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			_ = ws.WriteError(conn, string(response.ErrValidation), "unknown action: "+string(msg.Action))
		}
	}
}

// reply writes the outcome of an editor action. A rejected action still
// carries the unchanged session state.
func (h *WSHandler) reply(conn *websocket.Conn, log zerolog.Logger, event ws.Event) func(service.SessionView, error) {
	return func(view service.SessionView, err error) {
		switch {
		case err == nil:
			_ = ws.WriteEvent(conn, event, view)
		case service.IsSeatingRejection(err):
			_, code := classify(err)
			_ = ws.WriteTyped(conn, ws.RejectedResponse{
				Event: ws.EventRejected,
				Code:  string(code),
				Error: err.Error(),
				Data:  view,
			})
		default:
			_, code := classify(err)
			if code == response.ErrInternal {
				log.Error().Err(err).Msg("Seating action failed")
			}
			_ = ws.WriteError(conn, string(code), err.Error())
		}
	}
}

func (h *WSHandler) handleSave(conn *websocket.Conn, log zerolog.Logger, sessionID string) {
	chart, err := h.seatingService.Save(sessionID)
	if err != nil {
		_, code := classify(err)
		log.Error().Err(err).Msg("Seating save failed")
		_ = ws.WriteError(conn, string(code), err.Error())
		return
	}
	_ = ws.WriteEvent(conn, ws.EventSaved, chart)
}
