package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

// Metrics holds the bridge instrumentation. All collectors are usable
// whether or not they were registered, which keeps tests free of a shared
// registry.
type Metrics struct {
	FramesTotal     prometheus.Counter
	FrameErrors     prometheus.Counter
	SnapshotsTotal  prometheus.Counter
	LinkState       prometheus.Gauge
	LinkReconnects  prometheus.Counter
	Subscribers     prometheus.Gauge
	SubscriberDrops prometheus.Counter
	ExportDropped   prometheus.Counter
}

// New builds the collectors and registers them on reg when it is not nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge", Subsystem: "link", Name: "frames_total",
			Help: "Valid frames decoded from the link.",
		}),
		FrameErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge", Subsystem: "link", Name: "frame_errors_total",
			Help: "Frames discarded because of checksum or decode failures.",
		}),
		SnapshotsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge", Subsystem: "link", Name: "snapshots_total",
			Help: "Snapshots produced from the message stream.",
		}),
		LinkState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bridge", Subsystem: "link", Name: "state",
			Help: "Link state: 0 disconnected, 1 connecting, 2 connected, 3 degraded.",
		}),
		LinkReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge", Subsystem: "link", Name: "reconnects_total",
			Help: "Reconnect attempts after a lost or failed connection.",
		}),
		Subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bridge", Subsystem: "hub", Name: "subscribers",
			Help: "Currently connected stream subscribers.",
		}),
		SubscriberDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge", Subsystem: "hub", Name: "subscriber_drops_total",
			Help: "Subscribers dropped because their queue overflowed.",
		}),
		ExportDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bridge", Subsystem: "export", Name: "dropped_total",
			Help: "Snapshots shed from the export queue under backpressure.",
		}),
	}

	if reg != nil {
		register(reg,
			m.FramesTotal, m.FrameErrors, m.SnapshotsTotal,
			m.LinkState, m.LinkReconnects,
			m.Subscribers, m.SubscriberDrops, m.ExportDropped,
		)
	}
	return m
}

func register(reg prometheus.Registerer, collectors ...prometheus.Collector) {
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				log.WithField("err", err).Warn("Failed to register metric")
			}
		}
	}
}
