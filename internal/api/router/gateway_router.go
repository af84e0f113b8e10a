package router

import (
	"net/http"

	"chat-relay-backend/internal/api"
	"chat-relay-backend/internal/gateway"
)

// GatewayRoutes mounts the chat client surface: the websocket upgrade at
// /ws (raw, not queued) and the room directory under the API prefix.
func GatewayRoutes(prefix string, h *gateway.Handler) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		mux.HandleFunc("/ws", h.ServeWS)
		mux.HandleFunc(prefix+"/rooms", s.MakeHTTPHandleFunc(h.Rooms))
	}
}
