// Package metrics exports autosave and submission metrics to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"

	"intakeform/pkg/autosave"
	"intakeform/pkg/submit"
)

const defaultNamespace = "intakeform"

// Observer implements autosave.Observer and submit.Observer.
type Observer struct {
	saveDuration   promclient.Histogram
	saveErrors     promclient.Counter
	restores       *promclient.CounterVec
	submitDuration *promclient.HistogramVec
	submissions    *promclient.CounterVec
}

var (
	_ autosave.Observer = (*Observer)(nil)
	_ submit.Observer   = (*Observer)(nil)
)

// NewObserver registers the collectors on reg, reusing collectors that are
// already registered under the same name.
func NewObserver(namespace string, reg promclient.Registerer) (*Observer, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}

	var err error
	o := &Observer{}
	if o.saveDuration, err = register(reg, promclient.NewHistogram(promclient.HistogramOpts{
		Namespace: namespace,
		Subsystem: "autosave",
		Name:      "write_duration_seconds",
		Help:      "Latency of draft writes.",
		Buckets:   promclient.DefBuckets,
	})); err != nil {
		return nil, err
	}
	if o.saveErrors, err = register(reg, promclient.NewCounter(promclient.CounterOpts{
		Namespace: namespace,
		Subsystem: "autosave",
		Name:      "write_errors_total",
		Help:      "Count of failed draft writes.",
	})); err != nil {
		return nil, err
	}
	if o.restores, err = register(reg, promclient.NewCounterVec(promclient.CounterOpts{
		Namespace: namespace,
		Subsystem: "autosave",
		Name:      "restores_total",
		Help:      "Draft lookups at session start by outcome.",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}
	if o.submitDuration, err = register(reg, promclient.NewHistogramVec(promclient.HistogramOpts{
		Namespace: namespace,
		Subsystem: "submit",
		Name:      "duration_seconds",
		Help:      "Latency of submission dispatch.",
		Buckets:   promclient.DefBuckets,
	}, []string{"provider"})); err != nil {
		return nil, err
	}
	if o.submissions, err = register(reg, promclient.NewCounterVec(promclient.CounterOpts{
		Namespace: namespace,
		Subsystem: "submit",
		Name:      "total",
		Help:      "Submission attempts by provider and status.",
	}, []string{"provider", "status"})); err != nil {
		return nil, err
	}
	return o, nil
}

func register[C promclient.Collector](reg promclient.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are promclient.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register metrics collector: %w", err)
	}
	return c, nil
}

// RecordSave tracks one draft write.
func (o *Observer) RecordSave(d time.Duration, err error) {
	if o == nil {
		return
	}
	o.saveDuration.Observe(d.Seconds())
	if err != nil {
		o.saveErrors.Inc()
	}
}

// RecordRestore counts a draft lookup outcome.
func (o *Observer) RecordRestore(outcome string) {
	if o == nil {
		return
	}
	o.restores.WithLabelValues(outcome).Inc()
}

// RecordSubmit tracks one submission attempt.
func (o *Observer) RecordSubmit(provider, status string, d time.Duration) {
	if o == nil {
		return
	}
	o.submitDuration.WithLabelValues(provider).Observe(d.Seconds())
	o.submissions.WithLabelValues(provider, status).Inc()
}
