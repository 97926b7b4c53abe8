package http

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"utme-prep-service/internal/app"
)

// WSHandler streams leaderboard snapshots to connected clients. Each client
// gets the current standings on connect, then every refresh as sessions
// complete.
type WSHandler struct {
	progress *app.ProgressService
	feed     *app.LeaderboardFeed
	upgrader websocket.Upgrader
}

func NewWSHandler(progress *app.ProgressService, feed *app.LeaderboardFeed) *WSHandler {
	return &WSHandler{
		progress: progress,
		feed:     feed,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades the request and streams leaderboard updates until the
// client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancel := h.feed.Subscribe()
	defer cancel()

	if snapshot, err := h.progress.Leaderboard(r.Context(), 0); err == nil {
		if err := conn.WriteJSON(outboundMessage[any]{Type: "leaderboard", Payload: snapshot}); err != nil {
			return
		}
	}

	// The read loop only detects disconnects; clients send nothing.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := conn.WriteJSON(outboundMessage[any]{Type: "leaderboard", Payload: update}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-readerDone:
			return
		}
	}
}
