package relay

import "github.com/prometheus/client_golang/prometheus"

var (
	hubLinks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_relay_hub_links",
			Help: "Gateway instances currently connected to the relay hub.",
		},
	)
	hubFramesRelayed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_relay_hub_frames_relayed_total",
			Help: "Frames fanned out to instance links.",
		},
	)
	linkConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_relay_link_connected",
			Help: "Whether this instance's relay link is up (1) or down (0).",
		},
	)
	linkPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_relay_link_published_total",
			Help: "Messages forwarded to the relay hub.",
		},
	)
	linkReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_relay_link_received_total",
			Help: "Messages received from the relay hub.",
		},
	)
	linkDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_relay_link_dropped_total",
			Help: "Messages dropped because the relay link was down or full.",
		},
	)
	linkReconnects = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_relay_link_reconnects_total",
			Help: "Times the relay link was re-established after a failure.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		hubLinks, hubFramesRelayed,
		linkConnected, linkPublished, linkReceived, linkDropped, linkReconnects,
	)
}

func setLinks(count int) {
	hubLinks.Set(float64(count))
}

func addRelayed(count int) {
	hubFramesRelayed.Add(float64(count))
}

func setLinkConnected(up bool) {
	if up {
		linkConnected.Set(1)
	} else {
		linkConnected.Set(0)
	}
}

func incLinkPublished() {
	linkPublished.Inc()
}

func incLinkReceived() {
	linkReceived.Inc()
}

func incLinkDropped() {
	linkDropped.Inc()
}

func incLinkReconnects() {
	linkReconnects.Inc()
}
