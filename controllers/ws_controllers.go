package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/otterfood/storefront-app/middlewares"
	"github.com/otterfood/storefront-app/utils"
	"github.com/otterfood/storefront-app/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin is enforced by the CORS middleware for the REST surface;
		// the socket carries no privileged data beyond the session's own.
		return true
	},
}

// HandleWebSocket upgrades the connection and parks it in the hub under the
// caller's session key so order and payment events reach this client.
func HandleWebSocket(c *gin.Context) {
	sessionKey := middlewares.SessionKey(c)
	if sessionKey == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("missing session key"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	ws.RegisterClient(conn, sessionKey)
	utils.InfoLogger.Printf("WebSocket client connected (session=%s)", sessionKey)

	go func() {
		defer ws.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
