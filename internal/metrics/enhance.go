package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var enhanceRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "resumebuilder",
		Subsystem: "enhance",
		Name:      "requests_total",
		Help:      "AI 润色请求总数，按内容类型与结果划分。",
	},
	[]string{"kind", "outcome"},
)

// ObserveEnhance 记录一次润色请求的结果。
func ObserveEnhance(kind, outcome string) {
	enhanceRequestsTotal.WithLabelValues(kind, outcome).Inc()
}
