package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	CyclesTotal  prometheus.Counter
	CycleErrors  prometheus.Counter
	CycleSeconds prometheus.Histogram

	VehiclesSeen      prometheus.Gauge
	VehiclesResolved  prometheus.Gauge
	VehiclesDiscarded prometheus.Counter
	EntitiesDropped   prometheus.Counter

	HistoryVehicles prometheus.Gauge
	RoutesRanked    prometheus.Gauge

	GTFSRefreshes     prometheus.Counter
	GTFSRefreshErrors prometheus.Counter
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buspulse_cycles_total",
			Help: "Completed poll cycles.",
		}),
		CycleErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buspulse_cycle_errors_total",
			Help: "Poll cycles that failed at the feed fetch.",
		}),
		CycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "buspulse_cycle_duration_seconds",
			Help:    "Wall time of one fetch-resolve-aggregate cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		VehiclesSeen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buspulse_vehicles_seen",
			Help: "Decoded vehicle reports in the last cycle.",
		}),
		VehiclesResolved: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buspulse_vehicles_resolved",
			Help: "Vehicles with a usable speed in the last cycle.",
		}),
		VehiclesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buspulse_vehicles_discarded_total",
			Help: "Reports excluded by the plausibility filters.",
		}),
		EntitiesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buspulse_entities_dropped_total",
			Help: "Feed entities missing route or coordinates.",
		}),
		HistoryVehicles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buspulse_history_vehicles",
			Help: "Vehicles currently tracked in the history store.",
		}),
		RoutesRanked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "buspulse_routes_ranked",
			Help: "Route variants on the last leaderboard.",
		}),
		GTFSRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buspulse_gtfs_refreshes_total",
			Help: "Successful static GTFS refreshes.",
		}),
		GTFSRefreshErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "buspulse_gtfs_refresh_errors_total",
			Help: "Failed static GTFS refreshes.",
		}),
	}

	reg.MustRegister(
		c.CyclesTotal,
		c.CycleErrors,
		c.CycleSeconds,
		c.VehiclesSeen,
		c.VehiclesResolved,
		c.VehiclesDiscarded,
		c.EntitiesDropped,
		c.HistoryVehicles,
		c.RoutesRanked,
		c.GTFSRefreshes,
		c.GTFSRefreshErrors,
	)

	return c
}

func (c *Collector) ObserveCycle(d time.Duration) {
	c.CyclesTotal.Inc()
	c.CycleSeconds.Observe(d.Seconds())
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}
