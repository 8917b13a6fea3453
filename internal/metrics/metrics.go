package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes the listing engine's activity as Prometheus metrics.
// It satisfies engine.Recorder.
type Collector struct {
	reveals        prometheus.Counter
	ignored        prometheus.Counter
	configChanges  *prometheus.CounterVec
	window         prometheus.Gauge
	visible        prometheus.Gauge
	matched        prometheus.Gauge
	recomputeTimes prometheus.Histogram
}

// New creates a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		reveals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "collegeview",
			Name:      "reveals_total",
			Help:      "Reveal expansions committed",
		}),
		ignored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "collegeview",
			Name:      "near_end_ignored_total",
			Help:      "Near-end signals ignored because an expansion was in flight",
		}),
		configChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "collegeview",
				Name:      "config_changes_total",
				Help:      "Query and sort changes",
			},
			[]string{"kind"},
		),
		window: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "collegeview",
			Name:      "reveal_window",
			Help:      "Current reveal window after the last committed expansion",
		}),
		visible: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "collegeview",
			Name:      "visible_records",
			Help:      "Records currently exposed to the presentation layer",
		}),
		matched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "collegeview",
			Name:      "matched_records",
			Help:      "Records matching the current query",
		}),
		recomputeTimes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "collegeview",
			Name:      "recompute_duration_seconds",
			Help:      "Time spent deriving the view state",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1},
		}),
	}

	for _, m := range []prometheus.Collector{
		c.reveals, c.ignored, c.configChanges, c.window, c.visible, c.matched, c.recomputeTimes,
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) RevealCommitted(window int) {
	c.reveals.Inc()
	c.window.Set(float64(window))
}

func (c *Collector) SignalIgnored() { c.ignored.Inc() }

func (c *Collector) ConfigChanged(kind string) { c.configChanges.WithLabelValues(kind).Inc() }

func (c *Collector) Recomputed(d time.Duration, visible, matched int) {
	c.recomputeTimes.Observe(d.Seconds())
	c.visible.Set(float64(visible))
	c.matched.Set(float64(matched))
}
