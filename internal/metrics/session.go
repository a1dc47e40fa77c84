package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	editingSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "resumebuilder",
			Subsystem: "session",
			Name:      "active",
			Help:      "进程内存活的编辑会话数量。",
		},
	)

	sessionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "resumebuilder",
			Subsystem: "session",
			Name:      "expired_total",
			Help:      "因空闲超时被清理的编辑会话数量。",
		},
	)
)

// SetEditingSessions 更新存活会话数。
func SetEditingSessions(n int) {
	editingSessions.Set(float64(n))
}

// ObserveExpiredSessions 累加过期清理数量。
func ObserveExpiredSessions(n int) {
	if n > 0 {
		sessionsExpiredTotal.Add(float64(n))
	}
}
