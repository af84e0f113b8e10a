package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLink(buffer int) *Link {
	return &Link{
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func received(l *Link) [][]byte {
	var out [][]byte
	for {
		select {
		case data := <-l.send:
			out = append(out, data)
		default:
			return out
		}
	}
}

func TestFanOutSkipsSender(t *testing.T) {
	h := NewHub()
	a := newTestLink(4)
	b := newTestLink(4)
	c := newTestLink(4)
	h.links[a] = true
	h.links[b] = true
	h.links[c] = true

	h.fanOut(frame{from: a, payload: []byte(`{"type":"chat"}`)})

	assert.Empty(t, received(a))
	require.Len(t, received(b), 1)
	require.Len(t, received(c), 1)
}

func TestFanOutPassesPayloadThroughUnchanged(t *testing.T) {
	h := NewHub()
	a := newTestLink(4)
	b := newTestLink(4)
	h.links[a] = true
	h.links[b] = true

	payload := []byte(`{"type":"room-created","room":"general","id":"abc"}`)
	h.fanOut(frame{from: a, payload: payload})

	got := received(b)
	require.Len(t, got, 1)
	assert.Equal(t, payload, got[0])
}

func TestFanOutSkipsStalledLink(t *testing.T) {
	h := NewHub()
	a := newTestLink(4)
	stalled := newTestLink(0) // nobody draining
	healthy := newTestLink(4)
	h.links[a] = true
	h.links[stalled] = true
	h.links[healthy] = true

	// Must not block on the stalled link and must still reach the healthy one.
	h.fanOut(frame{from: a, payload: []byte("x")})

	require.Len(t, received(healthy), 1)
}

func TestFanOutSingleLinkNoEcho(t *testing.T) {
	h := NewHub()
	a := newTestLink(4)
	h.links[a] = true

	h.fanOut(frame{from: a, payload: []byte("x")})

	assert.Empty(t, received(a))
}
