/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modelstore_gateway_operations_total",
				Help: "Total number of gateway operations",
			},
			[]string{"partition", "op", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modelstore_gateway_operation_duration_seconds",
				Help:    "Duration of gateway operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"partition", "op"},
		),
	}
	reg.MustRegister(m.operations, m.duration)
	return m
}

// observe is safe on a nil receiver so callers need not check whether metrics are enabled.
func (m *metrics) observe(partition, op string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(partition, op, outcome).Inc()
	m.duration.WithLabelValues(partition, op).Observe(time.Since(start).Seconds())
}
