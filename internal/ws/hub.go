// Package ws keeps the live socket registry. Connections join a room, either
// a project room for dashboard refreshes or a user room for notification
// pushes, and the modules publish into rooms without touching connections.
package ws

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/safework-dev/safework/internal/logger"
)

var (
	rooms   = make(map[string]map[*websocket.Conn]bool)
	roomsMu sync.RWMutex
)

const (
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 512
)

func ProjectRoom(projectID uint) string {
	return fmt.Sprintf("project:%d", projectID)
}

func UserRoom(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func Register(room string, conn *websocket.Conn) {
	roomsMu.Lock()
	defer roomsMu.Unlock()

	if rooms[room] == nil {
		rooms[room] = make(map[*websocket.Conn]bool)
	}

	rooms[room][conn] = true
}

func Unregister(room string, conn *websocket.Conn) {
	roomsMu.Lock()
	defer roomsMu.Unlock()

	if clients, exists := rooms[room]; exists {
		delete(clients, conn)

		if len(clients) == 0 {
			delete(rooms, room)
		}
	}
}

// Publish sends the payload to every connection in the room. Connections
// that fail to accept the write are dropped from the room.
func Publish(room string, payload interface{}) {
	roomsMu.RLock()
	clients, exists := rooms[room]

	if !exists || len(clients) == 0 {
		roomsMu.RUnlock()
		return
	}

	// Copy so the lock is not held during writes.
	conns := make([]*websocket.Conn, 0, len(clients))

	for conn := range clients {
		conns = append(conns, conn)
	}
	roomsMu.RUnlock()

	for _, conn := range conns {
		if err := conn.SetWriteDeadline(time.Now().Add(WriteWait)); err != nil {
			logger.Log.Warnf("Failed to set write deadline for room %s: %v", room, err)
			continue
		}

		if err := conn.WriteJSON(payload); err != nil {
			logger.Log.Warnf("Failed to publish to room %s: %v", room, err)
			Unregister(room, conn)
			conn.Close()
		}
	}
}
