package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/safework-dev/safework/db"
	"github.com/safework-dev/safework/internal/logger"
	"github.com/safework-dev/safework/internal/permissions"
	"github.com/safework-dev/safework/internal/types"
	"github.com/safework-dev/safework/internal/utils"
	"github.com/safework-dev/safework/internal/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		for _, allowed := range types.AllowedOrigins {
			if origin == allowed {
				return true
			}
		}
		return false
	},
}

// ProjectWebSocket streams project refresh events. Membership is checked
// before the upgrade.
func ProjectWebSocket(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	projectID, err := utils.ParseIDParam(ctx, "project_id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청입니다"})
		return
	}

	if _, err := permissions.RequireMembership(db.DB, projectID, currentUser.ID); err != nil {
		respondDomainError(ctx, err)
		return
	}

	serveRoom(ctx, ws.ProjectRoom(projectID))
}

// NotificationWebSocket streams the requester's own notifications.
func NotificationWebSocket(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "인증이 필요합니다"})
		return
	}

	serveRoom(ctx, ws.UserRoom(currentUser.ID))
}

func serveRoom(ctx *gin.Context, room string) {
	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)

	if err != nil {
		logger.Log.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(ws.MaxMessageSize)

	if err := conn.SetReadDeadline(time.Now().Add(ws.PongWait)); err != nil {
		logger.Log.Warnf("Failed to set initial read deadline: %v", err)
		conn.Close()
		return
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(ws.PongWait))
	})

	ws.Register(room, conn)

	defer func() {
		ws.Unregister(room, conn)
		conn.Close()
		logger.Log.Debugf("WebSocket connection closed for room %s", room)
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(ws.WriteWait)); err != nil {
		return
	}

	if err := conn.WriteJSON(gin.H{"type": "connected"}); err != nil {
		logger.Log.Warnf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(ws.PingPeriod)
	done := make(chan struct{})

	defer func() {
		ticker.Stop()
		close(done)
	}()

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(ws.WriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(ws.PongWait)); err != nil {
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Warnf("WebSocket error for room %s: %v", room, err)
			}
			break
		}
	}
}
