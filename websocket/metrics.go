package websocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	wsConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connected_clients",
		Help: "The number of clients connected to the octree stream.",
	})

	wsReceivedMsgs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_received_msgs",
		Help: "The number of snapshot requests received from clients.",
	})

	wsSentMsgs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_sent_msgs",
		Help: "The number of octree snapshots sent to clients.",
	})

	wsSentBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_sent_bytes",
		Help: "The number of bytes of octree snapshots sent to clients.",
	})

	wsSendErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_send_errors",
		Help: "The number of octree snapshots that could not be sent.",
	})
)
