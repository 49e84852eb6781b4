package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/viagens-moz/intercity/pkg/logger"
	"github.com/viagens-moz/intercity/pkg/websocket"
)

// HandleWebSocket handles GET /v1/ws?user_id=&user_type=admin|driver|passenger
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	userID := c.Query("user_id")
	userType := c.Query("user_type")

	switch {
	case userID == "":
		h.badRequest(c, "user_id is required", nil)
		return
	case userType != websocket.UserTypeAdmin && userType != websocket.UserTypeDriver && userType != websocket.UserTypePassenger:
		h.badRequest(c, "user_type must be admin, driver or passenger", nil)
		return
	}

	upgrader := gorilla.Upgrader{
		ReadBufferSize:  h.Options.WSReadBufferSize,
		WriteBufferSize: h.Options.WSWriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true // dashboards are served from other origins
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("Failed to upgrade to WebSocket", logger.Err(err))
		return
	}

	client := websocket.NewClient(h.Hub, conn, userID, userType, h.Logger)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
