package ws

import (
	"strings"

	"github.com/gofiber/websocket/v2"

	"crewplan/utils"
)

type authFrame struct {
	Token string `json:"token"`
}

type ackFrame struct {
	Kind string `json:"kind"`
}

// resolveToken accepts the raw first-frame credential, with or without the
// "Bearer " prefix.
func resolveToken(raw string) (*utils.Claims, error) {
	token := strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	return utils.ParseToken(token)
}

// Handler returns the websocket handler for the live-update channel. The
// first client frame must carry a credential that resolves to an identity;
// the connection is rejected outright otherwise. After the auth handshake
// the channel is one-way: the server pushes events, client frames only keep
// the connection alive. Reconnecting is idempotent; this is a live channel,
// not an event log, so nothing is replayed.
func Handler(hub *Hub) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		var auth authFrame
		if err := c.ReadJSON(&auth); err != nil {
			return
		}

		claims, err := resolveToken(auth.Token)
		if err != nil {
			_ = c.WriteJSON(ackFrame{Kind: "unauthenticated"})
			return
		}

		client := hub.Register(claims.UserID, c)
		defer hub.Unregister(claims.UserID, client)

		_ = client.Send(ackFrame{Kind: "connected"})

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}
}
