package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vnkhanh/e-learning-backend/services"
)

// TokenVerifier is satisfied by *services.SessionService.
type TokenVerifier interface {
	Verify(token string) (*services.Claims, error)
}

// NewUpgrader accepts browser origins from allowed. An empty list accepts every origin.
func NewUpgrader(allowed []string) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || len(allowed) == 0 {
				return true
			}
			for _, o := range allowed {
				if o == origin || o == "*" {
					return true
				}
			}
			return false
		},
	}
}

// HandleUserWebSocket upgrades GET /ws/notifications?token=... into the caller's
// notification stream. Browsers cannot set headers on websocket requests, hence the query token.
func HandleUserWebSocket(hub *Hub, sessions TokenVerifier, upgrader websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}
		claims, err := sessions.Verify(token)
		if err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}
		userID := claims.UserID

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "user_id", userID, "error", err)
			return
		}
		client := hub.RegisterUser(userID, conn)
		defer hub.UnregisterUser(userID, conn)
		slog.Debug("user ws connected", "user_id", userID)

		if data, err := json.Marshal(gin.H{"type": "connected", "message": "Connected to notifications"}); err == nil {
			client.Send <- data
		}

		conn.SetReadDeadline(time.Now().Add(hub.PongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(hub.PongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		slog.Debug("user ws disconnected", "user_id", userID)
	}
}
