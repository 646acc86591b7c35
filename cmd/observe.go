package cmd

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/DeustoFoam/LBDEMcoupling-DEUSTO/sim"
)

// newRunRegistry exposes the live counters of a run as Prometheus metrics.
// Every value is read from m at scrape time.
func newRunRegistry(m *sim.Metrics, runID string) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"run_id": runID}

	factory.NewCounterFunc(prometheus.CounterOpts{
		Name:        "lbdem_iterations_total",
		Help:        "Completed lattice iterations",
		ConstLabels: labels,
	}, func() float64 { return float64(m.Snapshot().Iterations) })
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name:        "lbdem_engine_substeps_total",
		Help:        "Particle engine integration steps requested",
		ConstLabels: labels,
	}, func() float64 { return float64(m.Snapshot().EngineSteps) })
	factory.NewCounterFunc(prometheus.CounterOpts{
		Name:        "lbdem_output_failures_total",
		Help:        "Output writer failures (non-fatal)",
		ConstLabels: labels,
	}, func() float64 { return float64(m.Snapshot().OutputFailures) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "lbdem_throughput_mlups",
		Help:        "Lattice throughput over the last log window, million lattice updates per second",
		ConstLabels: labels,
	}, func() float64 { return m.Snapshot().LastMLUPS })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "lbdem_particles",
		Help:        "Particles reported by the engine in the last pull",
		ConstLabels: labels,
	}, func() float64 { return float64(m.Snapshot().Particles) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "lbdem_covered_sites",
		Help:        "Lattice sites claimed by a particle in the last immersion",
		ConstLabels: labels,
	}, func() float64 { return float64(m.Snapshot().CoveredSites) })
	return reg
}

// serveMetrics starts an HTTP endpoint for reg at addr/metrics. Listen
// failures are logged; the run continues without metrics.
func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Warnf("metrics endpoint %s stopped: %v", addr, err)
		}
	}()
	logrus.Infof("serving metrics on %s/metrics", addr)
	return srv
}
