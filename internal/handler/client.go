package handler

import (
	"net/http"
	"wastescanner/internal/logger"

	"github.com/gorilla/websocket"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewerHub tracks live-feed connections.
type ViewerHub interface {
	Register(conn *websocket.Conn)
	Unregister(conn *websocket.Conn)
}

// ViewScansHandler handles viewer connections over WebSocket and registers
// them in the hub to receive scan events.
func ViewScansHandler(hub ViewerHub, baseLogger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context(), baseLogger)

		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("WebSocket upgrade error: %v", err)
			return
		}

		hub.Register(connection)
		defer hub.Unregister(connection)

		for {
			_, _, err := connection.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Info("Viewer disconnected normally")
				} else {
					log.Warning("Viewer disconnected with error: %v", err)
				}
				break
			}
		}
	}
}
