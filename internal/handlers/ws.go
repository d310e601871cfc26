package handlers

import (
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goaltrace-dev/goaltrace/internal/types"
	"github.com/gorilla/websocket"
)

var (
	traceClients   = make(map[string]map[*websocket.Conn]bool)
	traceClientsMu sync.RWMutex
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// BroadcastTraceRefresh tells every open viewer of a trace to re-fetch its
// nodes. Mutating handlers call this after a successful write.
func BroadcastTraceRefresh(traceID uint) {
	key := strconv.FormatUint(uint64(traceID), 10)

	traceClientsMu.RLock()
	clients, exists := traceClients[key]
	if !exists || len(clients) == 0 {
		traceClientsMu.RUnlock()
		return
	}

	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	traceClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			log.Printf("Failed to set write deadline for broadcast: %v", err)
			continue
		}

		err := conn.WriteJSON(map[string]string{
			"type":     "refresh",
			"message":  "Trace data updated",
			"trace_id": key,
		})

		if err != nil {
			log.Printf("Failed to broadcast refresh to client: %v", err)
			removeTraceClient(key, conn)
			conn.Close()
		}
	}
}

func removeTraceClient(key string, conn *websocket.Conn) {
	traceClientsMu.Lock()
	if clients, exists := traceClients[key]; exists {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(traceClients, key)
		}
	}
	traceClientsMu.Unlock()
}

func WebSocket(c *gin.Context) {
	traceID := c.Param("trace_id")

	if traceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Trace ID is required"})
		return
	}

	upgrader := websocket.Upgrader{
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

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	traceClientsMu.Lock()
	if traceClients[traceID] == nil {
		traceClients[traceID] = make(map[*websocket.Conn]bool)
	}
	traceClients[traceID][conn] = true
	traceClientsMu.Unlock()

	defer func() {
		removeTraceClient(traceID, conn)
		conn.Close()
	}()

	// Keep the connection alive with pings; the client never sends data.
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
