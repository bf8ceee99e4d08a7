// Package metrics exposes simulator activity as Prometheus collectors.
//
// A nil *Recorder is valid and records nothing, so components can hold an
// optional recorder without checking it at every call site.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "spikeforge"

// Recorder groups the collectors updated by compile and run.
type Recorder struct {
	compiles prometheus.Counter
	runs     prometheus.Counter
	steps    prometheus.Counter
	spikes   prometheus.Counter
	neurons  prometheus.Gauge
	synapses prometheus.Gauge
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		compiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "compiles_total",
			Help:      "Number of graphs compiled into execution plans.",
		}),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Number of completed simulation runs.",
		}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "steps_total",
			Help:      "Number of simulated time steps.",
		}),
		spikes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "spikes_total",
			Help:      "Number of recorded spike events.",
		}),
		neurons: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "plan_neurons",
			Help:      "Neurons in the most recently compiled plan.",
		}),
		synapses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "plan_synapses",
			Help:      "Synapses in the most recently compiled plan.",
		}),
	}

	for _, c := range []prometheus.Collector{r.compiles, r.runs, r.steps, r.spikes, r.neurons, r.synapses} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNewRecorder is like NewRecorder but panics on registration errors.
func MustNewRecorder(reg prometheus.Registerer) *Recorder {
	r, err := NewRecorder(reg)
	if err != nil {
		panic(err)
	}
	return r
}

// ObserveCompile records a successful compile.
func (r *Recorder) ObserveCompile(neurons, synapses int) {
	if r == nil {
		return
	}
	r.compiles.Inc()
	r.neurons.Set(float64(neurons))
	r.synapses.Set(float64(synapses))
}

// ObserveRun records a completed run.
func (r *Recorder) ObserveRun(steps, spikes int) {
	if r == nil {
		return
	}
	r.runs.Inc()
	r.steps.Add(float64(steps))
	r.spikes.Add(float64(spikes))
}
