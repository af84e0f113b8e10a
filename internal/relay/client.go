// Package relay connects gateway instances to each other: Client is the
// outbound link one instance keeps to the relay hub, and Hub is the central
// star-topology rebroadcaster the relay server runs.
package relay

import (
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"chat-relay-backend/internal/protocol"
)

// Receiver gets every message that arrives from the relay hub, in arrival
// order.
type Receiver interface {
	Receive(msg *protocol.Message)
}

// Client maintains exactly one connection to the relay hub. While the hub is
// unreachable it reconnects with jittered exponential backoff capped at 10s;
// messages published during the outage are dropped, not queued.
type Client struct {
	url      string
	receiver Receiver
	out      chan *protocol.Message
	done     chan struct{}
	stop     sync.Once

	mu   sync.Mutex
	conn *websocket.Conn
}

const (
	maxReconnectWait  = 10 * time.Second
	linkPingInterval  = 30 * time.Second
	publishBufferSize = 64
)

func NewClient(url string, r Receiver) *Client {
	return &Client{
		url:      url,
		receiver: r,
		out:      make(chan *protocol.Message, publishBufferSize),
		done:     make(chan struct{}),
	}
}

// Publish forwards a locally-originated message to the hub. It never blocks:
// with the link down, or the outbound buffer full, the message is dropped
// and only local delivery happens.
func (c *Client) Publish(msg *protocol.Message) {
	if c.currentConn() == nil {
		incLinkDropped()
		return
	}
	select {
	case c.out <- msg:
	default:
		incLinkDropped()
	}
}

// Run dials the hub and keeps the link alive until Stop is called. It should
// be started in its own goroutine; local room traffic never waits on it.
func (c *Client) Run() {
	go c.writeLoop()

	for {
		conn := c.dial()
		if conn == nil {
			return
		}

		c.setConn(conn)
		setLinkConnected(true)
		log.Printf("Relay link established to %s", c.url)

		c.readLoop(conn)

		c.setConn(nil)
		setLinkConnected(false)
		conn.Close()

		select {
		case <-c.done:
			return
		default:
			incLinkReconnects()
		}
	}
}

// Connected reports whether the link to the hub is currently up.
func (c *Client) Connected() bool {
	return c.currentConn() != nil
}

// Stop tears down the link and ends Run. Safe to call more than once.
func (c *Client) Stop() {
	c.stop.Do(func() {
		close(c.done)
		if conn := c.currentConn(); conn != nil {
			conn.Close()
		}
	})
}

// dial retries until it reaches the hub or the client is stopped.
func (c *Client) dial() *websocket.Conn {
	policy := backoff.NewExponentialBackOff()
	policy.MaxInterval = maxReconnectWait
	policy.MaxElapsedTime = 0

	for {
		select {
		case <-c.done:
			return nil
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err == nil {
			return conn
		}

		wait := policy.NextBackOff()
		log.Printf("Relay hub unreachable (%v); retrying in %s", err, wait.Round(time.Millisecond))

		select {
		case <-c.done:
			return nil
		case <-time.After(wait):
		}
	}
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("Relay link read error: %v", err)
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			log.Printf("Dropping malformed relay frame: %v", err)
			continue
		}

		incLinkReceived()
		c.receiver.Receive(msg)
	}
}

// writeLoop drains the publish buffer onto whichever connection is current
// and keeps the link alive with pings. It runs for the client's lifetime,
// across reconnects.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(linkPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.out:
			conn := c.currentConn()
			if conn == nil {
				incLinkDropped()
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("Relay link write error: %v", err)
				incLinkDropped()
				continue
			}
			incLinkPublished()
		case <-ticker.C:
			if conn := c.currentConn(); conn != nil {
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					log.Printf("Relay link ping error: %v", err)
				}
			}
		}
	}
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) currentConn() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}
