// © Broadcom. All Rights Reserved.
// The term "Broadcom" refers to Broadcom Inc. and/or its subsidiaries.
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every metric this module registers. Callers embedding the
// engine can expose it alongside their own registry.
var Registry = prometheus.NewRegistry()

var (
	reconfigMetricsOnce sync.Once
	reconfigMetrics     *ReconfigMetrics
)

type ReconfigMetrics struct {
	reconciliations    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	powerCycleRequired prometheus.Counter
}

// NewReconfigMetrics initializes a singleton and registers all the defined metrics.
func NewReconfigMetrics() *ReconfigMetrics {
	reconfigMetricsOnce.Do(func() {
		reconfigMetrics = &ReconfigMetrics{
			reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "configurator",
				Name:      "reconciliations_total",
				Help:      "Number of completed hardware reconciliations by outcome",
			}, []string{
				outcomeLabel,
			}),
			validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "configurator",
				Name:      "validation_failures_total",
				Help:      "Number of parameter validation failures by parameter and reason",
			}, []string{
				parameterLabel,
				reasonLabel,
			}),
			powerCycleRequired: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "configurator",
				Name:      "power_cycle_required_total",
				Help:      "Number of reconciliations that required a VM power cycle to proceed",
			}),
		}

		Registry.MustRegister(
			reconfigMetrics.reconciliations,
			reconfigMetrics.validationFailures,
			reconfigMetrics.powerCycleRequired,
		)
	})

	return reconfigMetrics
}

// RegisterReconciliation records a completed reconciliation with its outcome.
func (m *ReconfigMetrics) RegisterReconciliation(outcome string) {
	m.reconciliations.With(prometheus.Labels{
		outcomeLabel: outcome,
	}).Inc()
}

// RegisterValidationFailure records a rejected parameter set.
func (m *ReconfigMetrics) RegisterValidationFailure(parameter, reason string) {
	m.validationFailures.With(prometheus.Labels{
		parameterLabel: parameter,
		reasonLabel:    reason,
	}).Inc()
}

// RegisterPowerCycleRequired records a reconciliation stopped by the
// power cycle policy.
func (m *ReconfigMetrics) RegisterPowerCycleRequired() {
	m.powerCycleRequired.Inc()
}
