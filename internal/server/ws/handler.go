package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checking is handled by the CORS layer in front of the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests and registers the resulting client with the
// hub.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.WithError(err).Warn("websocket upgrade failed")
			return
		}

		client := newClient(hub, conn, uuid.NewString())
		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}
