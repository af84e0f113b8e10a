package relay

import "log"

type frame struct {
	from    *Link
	payload []byte
}

// Hub is the central fan-out point for cross-instance traffic. It treats
// frames as opaque payloads and rebroadcasts each one to every connected
// instance except the sender. One stalled link never affects the others.
type Hub struct {
	register   chan *Link
	unregister chan *Link
	forward    chan frame
	links      map[*Link]bool
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Link),
		unregister: make(chan *Link),
		forward:    make(chan frame),
		links:      make(map[*Link]bool),
	}
}

// Run is the hub's event loop; start it in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case l := <-h.register:
			h.links[l] = true
			setLinks(len(h.links))
			log.Printf("Instance link connected (%d total)", len(h.links))

		case l := <-h.unregister:
			if _, ok := h.links[l]; ok {
				delete(h.links, l)
				close(l.send)
				setLinks(len(h.links))
				log.Printf("Instance link disconnected (%d total)", len(h.links))
			}

		case f := <-h.forward:
			h.fanOut(f)
		}
	}
}

// fanOut rebroadcasts the frame to all other links. Sends are best-effort:
// a link with a full buffer is skipped rather than awaited.
func (h *Hub) fanOut(f frame) {
	relayed := 0
	for l := range h.links {
		if l == f.from {
			continue
		}
		select {
		case l.send <- f.payload:
			relayed++
		default:
		}
	}
	if relayed > 0 {
		addRelayed(relayed)
	}
}
