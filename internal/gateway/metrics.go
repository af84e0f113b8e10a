package gateway

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_relay_gateway_connections",
			Help: "Current number of connected chat clients on this instance.",
		},
	)
	wsRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_relay_gateway_rooms",
			Help: "Rooms currently known to this instance.",
		},
	)
	wsMessagesDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_relay_gateway_messages_delivered_total",
			Help: "Total messages delivered to local clients.",
		},
	)
	wsMessagesDeduplicated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_relay_gateway_messages_deduplicated_total",
			Help: "Messages discarded because their identifier was already seen.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsRooms, wsMessagesDelivered, wsMessagesDeduplicated)
}

func incConnections() {
	wsConnections.Inc()
}

func decConnections() {
	wsConnections.Dec()
}

func setRooms(count int) {
	wsRooms.Set(float64(count))
}

func addDelivered(count int) {
	wsMessagesDelivered.Add(float64(count))
}

func incDeduplicated() {
	wsMessagesDeduplicated.Inc()
}
