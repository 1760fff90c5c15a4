package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/safework-dev/safework/internal/models"
	"github.com/safework-dev/safework/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func dialWebSocket(t *testing.T, server *httptest.Server, path string, token string) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + path

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Origin", "http://localhost:3000")

	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err, "dial failed")

	if resp != nil {
		resp.Body.Close()
	}

	return conn
}

func TestNotificationWebSocketDelivers(t *testing.T) {
	r := setupRouter(t)

	server := httptest.NewServer(r)
	defer server.Close()

	user, token := createUser(t, "수신자", "receiver@example.com")

	conn := dialWebSocket(t, server, "/api/ws/notifications", token)
	defer conn.Close()

	var welcome map[string]interface{}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&welcome))
	require.Equal(t, "connected", welcome["type"])

	services.Notify(user.ID, models.NotificationTypeSystem, "테스트 알림", "내용", "", datatypes.JSON(nil))

	var pushed map[string]interface{}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&pushed))
	require.Equal(t, "notification", pushed["type"])
}

func TestWebSocketCloseReleasesGoroutines(t *testing.T) {
	r := setupRouter(t)

	server := httptest.NewServer(r)
	defer server.Close()

	_, token := createUser(t, "접속자", "visitor@example.com")

	baseline := runtime.NumGoroutine()

	for i := 0; i < 5; i++ {
		conn := dialWebSocket(t, server, "/api/ws/notifications", token)

		var welcome map[string]interface{}
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&welcome))

		require.NoError(t, conn.Close())
	}

	deadline := time.Now().Add(3 * time.Second)

	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= baseline+2 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatalf("goroutines did not drain: baseline %d, now %d", baseline, runtime.NumGoroutine())
}
