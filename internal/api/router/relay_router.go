package router

import (
	"net/http"

	"chat-relay-backend/internal/api"
	"chat-relay-backend/internal/relay"
)

// RelayRoutes mounts the instance-link upgrade endpoint on the relay server.
func RelayRoutes(h *relay.Handler) api.RouteRegistrar {
	return func(mux *http.ServeMux, s *api.APIServer) {
		mux.HandleFunc("/ws", h.ServeWS)
	}
}
