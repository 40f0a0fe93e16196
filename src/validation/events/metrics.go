// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package events

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all validator metrics.
	Namespace = "x509_trust"

	LabelAlgorithm   = "algorithm"
	LabelLocation    = "location"
	LabelAdES        = "ades_allowed"
	LabelEtsiTs11931 = "etsi_ts_119_312_allowed"
)

// MetricsHandler counts [AlgorithmUsageEvent]s in a Prometheus counter
// vector labelled by algorithm, location and compliance.
type MetricsHandler struct {
	usage *prometheus.CounterVec
}

// NewMetricsHandler registers the counters with reg. A nil reg leaves them
// unregistered, which is useful in tests.
func NewMetricsHandler(reg prometheus.Registerer) *MetricsHandler {
	return &MetricsHandler{
		usage: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "algorithm_usage_total",
				Help:      "Cryptographic algorithm usages observed during validation, by location and compliance",
			},
			[]string{LabelAlgorithm, LabelLocation, LabelAdES, LabelEtsiTs11931},
		),
	}
}

// OnEvent implements [Handler].
func (h *MetricsHandler) OnEvent(e Event) {
	ev, ok := e.(*AlgorithmUsageEvent)
	if !ok {
		return
	}
	h.usage.WithLabelValues(
		ev.Name,
		ev.UsageLocation,
		strconv.FormatBool(ev.IsAllowedAccordingToAdES()),
		strconv.FormatBool(ev.IsAllowedAccordingToEtsiTs119312()),
	).Inc()
}

// Collector exposes the underlying counter vector.
func (h *MetricsHandler) Collector() *prometheus.CounterVec { return h.usage }
