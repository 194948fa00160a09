package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	apperrors "github.com/mithaqq/mithaqq-backend/internal/errors"
	"github.com/mithaqq/mithaqq-backend/internal/middleware"
	ws "github.com/mithaqq/mithaqq-backend/internal/websocket"
)

// OrderFeedController streams order events to admins over a websocket.
type OrderFeedController struct {
	hub      *ws.Hub
	upgrader gorillaws.Upgrader
}

func NewOrderFeedController(hub *ws.Hub, allowedOrigins []string) *OrderFeedController {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &OrderFeedController{
		hub: hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				// non-browser clients send no origin
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

// Feed upgrades the connection. The token arrives as ?token= and is never logged.
// GET /api/v1/admin/orders/feed
func (ctrl *OrderFeedController) Feed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "User not authenticated")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, userID)
	ctrl.hub.Register(client)
	go client.WritePump()
	go client.ReadPump()

	log.Info("Order feed connection established", map[string]interface{}{
		"user_id": userID,
	})
}
