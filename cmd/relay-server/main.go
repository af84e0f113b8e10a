package main

import (
	"chat-relay-backend/internal/api"
	"chat-relay-backend/internal/api/router"
	"chat-relay-backend/internal/env"
	"chat-relay-backend/internal/queue"
	"chat-relay-backend/internal/relay"
)

func main() {
	queueManager := queue.NewRequestQueueManager(16, 4)

	hub := relay.NewHub()
	go hub.Run()

	server := api.NewAPIServer(
		env.GetOrDefault(env.RelayAddr, ":3001"),
		queueManager,
		router.UtilsRoutes("/api/relay/v1"),
		router.RelayRoutes(relay.NewHandler(hub)),
	)

	server.Run()
}
