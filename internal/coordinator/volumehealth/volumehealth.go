// Package volumehealth implements a background poller that periodically
// probes configured volumes and records their reachability, purely for
// observability. It never gates or blocks request handling: only the
// per-key lock and the No-overwrite check (see internal/coordinator) gate a
// PUT.
package volumehealth

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/dreamware/minikv/internal/volumeclient"
)

// probeKey is the sentinel key HEAD-probed against every volume. Operators
// are expected to pre-seed this path (or tolerate its absence showing as
// unhealthy) since RemoteHead only succeeds on a 2xx response.
const probeKey = "__minikv_health_probe__"

// Gauge is the narrow metrics sink the Monitor writes into. Satisfied by a
// *prometheus.GaugeVec labelled by volume (see NewPrometheusGauge), or by a
// test double.
type Gauge interface {
	Set(volume string, healthy float64)
}

// prometheusGauge adapts a *prometheus.GaugeVec keyed by volume to Gauge.
type prometheusGauge struct {
	vec *prometheus.GaugeVec
}

func (g prometheusGauge) Set(volume string, healthy float64) {
	g.vec.WithLabelValues(volume).Set(healthy)
}

// NewPrometheusGauge registers the minikv_volume_health gauge vector against
// reg and returns it wrapped as a Gauge.
func NewPrometheusGauge(reg *prometheus.Registry) Gauge {
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "minikv_volume_health",
		Help: "1 if the volume answered its last health probe, 0 otherwise.",
	}, []string{"volume"})
	reg.MustRegister(vec)
	return prometheusGauge{vec: vec}
}

// Status is a point-in-time snapshot of one volume's health.
type Status struct {
	LastCheck time.Time
	LastErr   error
	Healthy   bool
}

// Monitor periodically HEAD-probes every configured volume and records the
// result into a Gauge and an in-memory status map exposed via Snapshot.
type Monitor struct {
	client   volumeclient.Client
	gauge    Gauge
	log      *zap.SugaredLogger
	interval time.Duration
	timeout  time.Duration

	mu       sync.RWMutex
	statuses map[string]Status

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a Monitor that probes volumes every interval using client,
// recording results into gauge and logging transitions via log.
func New(client volumeclient.Client, gauge Gauge, log *zap.SugaredLogger, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Monitor{
		client:   client,
		gauge:    gauge,
		log:      log,
		interval: interval,
		timeout:  2 * time.Second,
		statuses: make(map[string]Status),
	}
}

// Start begins probing volumes in a background goroutine. It returns
// immediately; call Stop to shut the poller down. Start is a no-op if
// already running.
func (m *Monitor) Start(volumes []string) {
	if m.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.wg.Add(1)
	go m.run(ctx, volumes)
}

// Stop cancels the poller and waits for it to exit.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.wg.Wait()
}

func (m *Monitor) run(ctx context.Context, volumes []string) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probeAll(ctx, volumes)
	for {
		select {
		case <-ticker.C:
			m.probeAll(ctx, volumes)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) probeAll(ctx context.Context, volumes []string) {
	var wg sync.WaitGroup
	for _, v := range volumes {
		wg.Add(1)
		go func(volume string) {
			defer wg.Done()
			m.probeOne(ctx, volume)
		}(v)
	}
	wg.Wait()
}

func (m *Monitor) probeOne(ctx context.Context, volume string) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.client.RemoteHead(ctx, volume, probeKey)
	healthy := err == nil

	m.mu.Lock()
	prev, existed := m.statuses[volume]
	m.statuses[volume] = Status{Healthy: healthy, LastCheck: time.Now(), LastErr: err}
	m.mu.Unlock()

	gaugeValue := 0.0
	if healthy {
		gaugeValue = 1.0
	}
	m.gauge.Set(volume, gaugeValue)

	if m.log != nil && (!existed || prev.Healthy != healthy) {
		if healthy {
			m.log.Infow("volume health recovered", "volume", volume)
		} else {
			m.log.Warnw("volume health probe failed", "volume", volume, "error", err)
		}
	}
}

// Snapshot returns a copy of the current per-volume health status.
func (m *Monitor) Snapshot() map[string]Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]Status, len(m.statuses))
	for k, v := range m.statuses {
		out[k] = v
	}
	return out
}
