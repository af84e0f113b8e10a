package gateway

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chat-relay-backend/internal/protocol"
)

// Client is one websocket connection from a chat client. Outbound messages
// go through the buffered Message channel so a slow consumer never stalls a
// broadcast; the write pump drains it onto the socket.
type Client struct {
	Conn     *websocket.Conn
	Message  chan *protocol.Message
	ID       string
	done     chan struct{}
	mu       sync.Mutex
	isClosed bool
}

func (cl *Client) keepAlive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case <-ticker.C:
			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteMessage(websocket.PingMessage, nil)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Ping error for client %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *Client) writeMessage() {
	defer func() {
		cl.mu.Lock()
		cl.isClosed = true
		cl.Conn.Close()
		cl.mu.Unlock()
	}()

	for {
		select {
		case <-cl.done:
			return
		case msg, ok := <-cl.Message:
			if !ok {
				return
			}

			cl.mu.Lock()
			if cl.isClosed {
				cl.mu.Unlock()
				return
			}
			err := cl.Conn.WriteJSON(msg)
			cl.mu.Unlock()

			if err != nil {
				log.Printf("Error sending message to client %s: %v", cl.ID, err)
				return
			}
		}
	}
}

func (cl *Client) readMessage(hub *Hub) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in readMessage: %v", r)
		}

		if cl.done != nil {
			close(cl.done)
		}

		hub.unregister <- cl
		log.Printf("Client %s disconnected", cl.ID)
	}()

	cl.Conn.SetReadLimit(64 * 1024)

	for {
		_, data, err := cl.Conn.ReadMessage()
		if err != nil {
			if closeErr, ok := err.(*websocket.CloseError); ok {
				if closeErr.Code == websocket.CloseNormalClosure ||
					closeErr.Code == websocket.CloseGoingAway ||
					closeErr.Code == websocket.CloseNoStatusReceived {
					break
				}
			}
			log.Printf("Error reading message from client %s: %v", cl.ID, err)
			break
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			// Malformed frames are dropped; the connection stays open.
			log.Printf("Dropping malformed frame from client %s: %v", cl.ID, err)
			continue
		}

		hub.inbound <- inboundFrame{client: cl, msg: msg}
	}
}
