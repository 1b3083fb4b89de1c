package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusProvider adapts Provider to github.com/prometheus/client_golang,
// registering one collector per instrument name on first use.
type PrometheusProvider struct {
	reg *prometheus.Registry

	mu         sync.Mutex
	counters   map[string]*promCounter
	updowns    map[string]*promUpDown
	histograms map[string]*promHistogram
}

// NewPrometheusProvider constructs a Provider backed by reg. If reg is nil,
// a fresh registry is created.
func NewPrometheusProvider(reg *prometheus.Registry) *PrometheusProvider {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &PrometheusProvider{
		reg:        reg,
		counters:   make(map[string]*promCounter),
		updowns:    make(map[string]*promUpDown),
		histograms: make(map[string]*promHistogram),
	}
}

// Registry returns the underlying prometheus registry, for wiring into an
// HTTP handler (promhttp.HandlerFor).
func (p *PrometheusProvider) Registry() *prometheus.Registry { return p.reg }

func (p *PrometheusProvider) Counter(name string, opts ...InstrumentOption) Counter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.counters[name]; ok {
		return c
	}
	cfg := applyOptions(opts)
	vec := prometheus.NewCounter(prometheus.CounterOpts{Name: sanitize(name), Help: helpOrDefault(cfg.Description, name)})
	p.reg.MustRegister(vec)
	c := &promCounter{c: vec}
	p.counters[name] = c
	return c
}

func (p *PrometheusProvider) UpDownCounter(name string, opts ...InstrumentOption) UpDownCounter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u, ok := p.updowns[name]; ok {
		return u
	}
	cfg := applyOptions(opts)
	vec := prometheus.NewGauge(prometheus.GaugeOpts{Name: sanitize(name), Help: helpOrDefault(cfg.Description, name)})
	p.reg.MustRegister(vec)
	u := &promUpDown{g: vec}
	p.updowns[name] = u
	return u
}

func (p *PrometheusProvider) Histogram(name string, opts ...InstrumentOption) Histogram {
	p.mu.Lock()
	defer p.mu.Unlock()
	if h, ok := p.histograms[name]; ok {
		return h
	}
	cfg := applyOptions(opts)
	vec := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    sanitize(name),
		Help:    helpOrDefault(cfg.Description, name),
		Buckets: prometheus.DefBuckets,
	})
	p.reg.MustRegister(vec)
	h := &promHistogram{h: vec}
	p.histograms[name] = h
	return h
}

type promCounter struct{ c prometheus.Counter }

func (c *promCounter) Add(n int64) {
	if n < 0 {
		return
	}
	c.c.Add(float64(n))
}

type promUpDown struct{ g prometheus.Gauge }

func (u *promUpDown) Add(n int64) { u.g.Add(float64(n)) }

type promHistogram struct{ h prometheus.Histogram }

func (h *promHistogram) Record(v float64) { h.h.Observe(v) }

func helpOrDefault(desc, name string) string {
	if desc != "" {
		return desc
	}
	return name
}

// sanitize maps a strand instrument name (dot-separated, e.g.
// "fiber.spawned") onto a prometheus-legal metric name.
func sanitize(name string) string {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			out[i] = c
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
