package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"github.com/LovationAdmin/calendar-api/services"
	"github.com/LovationAdmin/calendar-api/utils"
)

// WSHandler pushes calendar notifications over websocket. It implements
// services.Notifier: delivery is fire-and-forget, failed broadcasts are
// logged and never propagated back into the service layer.
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-Alive configuration (critical for cloud hosting)
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		calendarID, _ := s.Get("calendar_id")
		log.Printf("✅ Client connected to calendar: %v", calendarID)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		calendarID, _ := s.Get("calendar_id")
		log.Printf("🔌 Client disconnected from calendar: %v", calendarID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket Error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the request. The client authenticates with its access
// token as a query parameter since browsers cannot set headers on
// websocket upgrades.
func (h *WSHandler) HandleWS(c *gin.Context) {
	calendarID := c.Param("id")

	userID := ""
	if token := c.Query("token"); token != "" {
		if claims, err := utils.ParseAccessToken(token); err == nil {
			userID = claims.UserID
		}
	}

	keys := map[string]interface{}{
		"calendar_id": calendarID,
		"user_id":     userID,
	}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

// Notify broadcasts a notification to the sessions watching the affected
// calendar. Role changes are targeted: only the affected user's sessions
// receive them.
func (h *WSHandler) Notify(kind, initiatorID, targetID string, payload map[string]interface{}) {
	calendarID := targetID
	if v, ok := payload["calendar_id"].(string); ok {
		calendarID = v
	}

	body := map[string]interface{}{
		"type":      kind,
		"initiator": initiatorID,
		"payload":   payload,
	}
	msg, err := json.Marshal(body)
	if err != nil {
		log.Printf("⚠️ Failed to encode notification %s: %v", kind, err)
		return
	}

	err = h.M.BroadcastFilter(msg, func(q *melody.Session) bool {
		id, exists := q.Get("calendar_id")
		if !exists || id != calendarID {
			return false
		}
		if kind == services.NotifyRoleChanged {
			uid, _ := q.Get("user_id")
			return uid == targetID
		}
		return true
	})
	if err != nil {
		log.Printf("⚠️ Error broadcasting to calendar %s: %v", calendarID, err)
	}
}
