package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ticketboard_realtime_events_published_total",
		Help: "Events published to user channels.",
	}, []string{"event"})

	eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ticketboard_realtime_events_dropped_total",
		Help: "Events dropped because a subscriber buffer was full.",
	})

	subscribersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ticketboard_realtime_subscribers",
		Help: "Currently connected event stream subscribers.",
	})
)
