package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/services"
)

func newServer(t *testing.T) (*httptest.Server, *Hub, *services.SessionService) {
	t.Helper()
	return newServerWithHub(t, NewHub())
}

func newServerWithHub(t *testing.T, hub *Hub) (*httptest.Server, *Hub, *services.SessionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	sessions := services.NewSessionService(services.SessionConfig{Secret: []byte("ws-secret"), TTL: time.Hour})

	r := gin.New()
	r.GET("/ws/notifications", HandleUserWebSocket(hub, sessions, NewUpgrader(nil)))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, hub, sessions
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications?token=" + token
}

func readJSON(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestHandleUserWebSocket_DeliversToUser(t *testing.T) {
	srv, hub, sessions := newServer(t)
	user := &models.User{ID: uuid.New(), Email: "a@x.com", Role: models.RoleInstructor}
	token, err := sessions.Issue(user)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "connected", readJSON(t, conn)["type"])
	assert.Equal(t, Stats{Users: 1, Connections: 1}, hub.GetStats())

	hub.SendJSON(user.ID.String(), map[string]string{"type": "notification", "title": "New enrollment"})
	hub.SendJSON(uuid.NewString(), map[string]string{"type": "notification", "title": "not for you"})

	msg := readJSON(t, conn)
	assert.Equal(t, "New enrollment", msg["title"])

	conn.Close()
	assert.Eventually(t, func() bool { return hub.GetStats().Connections == 0 }, 2*time.Second, 10*time.Millisecond)
}

func dialUser(t *testing.T, srv *httptest.Server, sessions *services.SessionService) *websocket.Conn {
	t.Helper()
	token, err := sessions.Issue(&models.User{ID: uuid.New(), Email: "p@x.com", Role: models.RoleStudent})
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Equal(t, "connected", readJSON(t, conn)["type"])
	return conn
}

func fastHeartbeatHub() *Hub {
	hub := NewHub()
	hub.PongWait = 300 * time.Millisecond
	hub.PingPeriod = 50 * time.Millisecond
	return hub
}

func TestHandleUserWebSocket_DropsSilentPeer(t *testing.T) {
	srv, hub, sessions := newServerWithHub(t, fastHeartbeatHub())
	dialUser(t, srv, sessions)
	require.Equal(t, 1, hub.GetStats().Connections)

	// the client never reads again, so pings go unanswered
	assert.Eventually(t, func() bool { return hub.GetStats().Connections == 0 }, 3*time.Second, 20*time.Millisecond)
}

func TestHandleUserWebSocket_PongKeepsPeerAlive(t *testing.T) {
	srv, hub, sessions := newServerWithHub(t, fastHeartbeatHub())
	conn := dialUser(t, srv, sessions)
	require.NoError(t, conn.SetReadDeadline(time.Time{}))

	// reading lets the default ping handler answer with pongs
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	time.Sleep(time.Second)
	assert.Equal(t, 1, hub.GetStats().Connections)
}

func TestHandleUserWebSocket_RejectsBadToken(t *testing.T) {
	srv, _, _ := newServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "bogus"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestNewUpgrader_CheckOrigin(t *testing.T) {
	up := NewUpgrader([]string{"http://localhost:3000"})

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, up.CheckOrigin(req))
}
