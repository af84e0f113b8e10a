package main

import (
	"chat-relay-backend/internal/api"
	"chat-relay-backend/internal/api/router"
	"chat-relay-backend/internal/env"
	"chat-relay-backend/internal/gateway"
	"chat-relay-backend/internal/queue"
	"chat-relay-backend/internal/relay"
)

func main() {
	queueManager := queue.NewRequestQueueManager(32, 8)

	hub := gateway.NewHub()
	relayClient := relay.NewClient(env.GetOrDefault(env.RelayURL, "ws://localhost:3001/ws"), hub)
	hub.SetRelay(relayClient)

	go hub.Run()
	go relayClient.Run()

	handler := gateway.NewHandler(hub)

	server := api.NewAPIServer(
		env.GetOrDefault(env.GatewayAddr, ":8080"),
		queueManager,
		router.UtilsRoutes("/api/gateway/v1"),
		router.GatewayRoutes("/api/gateway/v1", handler),
	)

	server.Run()
}
