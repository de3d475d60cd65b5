package mwire

import (
	"github.com/prometheus/client_golang/prometheus"
)

// statsCollector exports ClientStats as Prometheus metrics, read at scrape
// time from the client's counters.
type statsCollector struct {
	client *Client

	operations  *prometheus.Desc
	getHits     *prometheus.Desc
	connects    *prometheus.Desc
	disconnects *prometheus.Desc
	errors      *prometheus.Desc
	connected   *prometheus.Desc
}

// NewStatsCollector returns a prometheus.Collector exporting the stats of c.
// Metric names are prefixed with namespace, e.g. "mwire".
//
//	registry.MustRegister(mwire.NewStatsCollector(client, "mwire"))
func NewStatsCollector(c *Client, namespace string) prometheus.Collector {
	constLabels := prometheus.Labels{"gateway": c.Addr()}
	return &statsCollector{
		client: c,
		operations: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "operations_total"),
			"Total number of successful operations by kind",
			[]string{"op"}, constLabels,
		),
		getHits: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "get_hits_total"),
			"Total number of GET operations that returned a value",
			nil, constLabels,
		),
		connects: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "connects_total"),
			"Total number of connections established",
			nil, constLabels,
		),
		disconnects: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "disconnects_total"),
			"Total number of connections closed",
			nil, constLabels,
		),
		errors: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "errors_total"),
			"Total number of failed operations",
			nil, constLabels,
		),
		connected: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "connected"),
			"1 when the connection to the gateway is open",
			nil, constLabels,
		),
	}
}

func (s *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- s.operations
	ch <- s.getHits
	ch <- s.connects
	ch <- s.disconnects
	ch <- s.errors
	ch <- s.connected
}

func (s *statsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := s.client.Stats()

	ops := []struct {
		name  string
		value uint64
	}{
		{"get", stats.Gets},
		{"set", stats.Sets},
		{"kill", stats.Kills},
		{"exists", stats.Exists},
		{"increment", stats.Increments},
		{"traversal", stats.Traversals},
		{"enumeration", stats.Enumerations},
		{"ping", stats.Pings},
	}
	for _, op := range ops {
		ch <- prometheus.MustNewConstMetric(s.operations, prometheus.CounterValue, float64(op.value), op.name)
	}

	ch <- prometheus.MustNewConstMetric(s.getHits, prometheus.CounterValue, float64(stats.GetHits))
	ch <- prometheus.MustNewConstMetric(s.connects, prometheus.CounterValue, float64(stats.Connects))
	ch <- prometheus.MustNewConstMetric(s.disconnects, prometheus.CounterValue, float64(stats.Disconnects))
	ch <- prometheus.MustNewConstMetric(s.errors, prometheus.CounterValue, float64(stats.Errors))

	connected := 0.0
	if s.client.State() == StateConnected {
		connected = 1
	}
	ch <- prometheus.MustNewConstMetric(s.connected, prometheus.GaugeValue, connected)
}
