package controller

import (
	"net/http"

	apperrors "github.com/casarossa/casarossa-backend/internal/errors"
	"github.com/casarossa/casarossa-backend/internal/middleware"
	ws "github.com/casarossa/casarossa-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type FeedController struct {
	hub            *ws.Hub
	allowedOrigins map[string]bool
	upgrader       websocket.Upgrader
}

func NewFeedController(hub *ws.Hub, allowedOrigins []string) *FeedController {
	ctrl := &FeedController{
		hub:            hub,
		allowedOrigins: make(map[string]bool, len(allowedOrigins)),
	}
	for _, origin := range allowedOrigins {
		ctrl.allowedOrigins[origin] = true
	}
	ctrl.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			return ctrl.allowedOrigins[origin]
		},
	}
	return ctrl
}

// MenuFeed upgrades the connection and streams featured-menu updates.
// The client receives the full current list on connect and a complete
// replacement list after every catalog change.
// GET /ws/menu (token via query parameter)
func (ctrl *FeedController) MenuFeed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "Sign in required")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err, nil)
		return
	}

	client := &ws.Client{
		Hub:    ctrl.hub,
		Conn:   &ws.Conn{Conn: conn},
		UserID: userID,
		Send:   make(chan []byte, 256),
	}

	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Menu feed connection established", map[string]interface{}{
		"user_id": userID,
	})
}
