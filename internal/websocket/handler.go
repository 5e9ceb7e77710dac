package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs registers the connection with the hub and blocks until the peer
// disconnects. A stopped hub closes the connection straight away.
func ServeWs(hub *Hub, c *websocket.Conn, sessionKey string) {
	client := &Client{Hub: hub, Conn: c, SessionKey: sessionKey, Send: make(chan []byte, 256)}
	if !hub.join(client) {
		c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
