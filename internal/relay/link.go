package relay

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Link is one gateway instance's connection as seen from the hub side.
type Link struct {
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	mu       sync.Mutex
	isClosed bool
}

func NewLink(conn *websocket.Conn) *Link {
	return &Link{
		conn: conn,
		send: make(chan []byte, publishBufferSize),
		done: make(chan struct{}),
	}
}

func (l *Link) readPump(hub *Hub) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in link readPump: %v", r)
		}

		if l.done != nil {
			close(l.done)
		}

		hub.unregister <- l
	}()

	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			log.Printf("Instance link read error: %v", err)
			break
		}
		// No interpretation here; the hub is a pass-through.
		hub.forward <- frame{from: l, payload: data}
	}
}

func (l *Link) writePump() {
	ticker := time.NewTicker(linkPingInterval)
	defer func() {
		ticker.Stop()
		l.mu.Lock()
		l.isClosed = true
		l.conn.Close()
		l.mu.Unlock()
	}()

	for {
		select {
		case <-l.done:
			return
		case data, ok := <-l.send:
			if !ok {
				return
			}

			l.mu.Lock()
			if l.isClosed {
				l.mu.Unlock()
				return
			}
			err := l.conn.WriteMessage(websocket.TextMessage, data)
			l.mu.Unlock()

			if err != nil {
				log.Printf("Instance link write error: %v", err)
				return
			}
		case <-ticker.C:
			l.mu.Lock()
			if l.isClosed {
				l.mu.Unlock()
				return
			}
			err := l.conn.WriteMessage(websocket.PingMessage, nil)
			l.mu.Unlock()

			if err != nil {
				log.Printf("Instance link ping error: %v", err)
				return
			}
		}
	}
}
