package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"hotel-frontdesk/logger"
	"hotel-frontdesk/models"
)

var (
	roomTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_room_transitions_total",
			Help: "Room transitions attempted, by action and outcome",
		},
		[]string{"action", "status"},
	)

	backendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frontdesk_backend_call_duration_seconds",
			Help:    "Duration of calls to the rooms backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	chargeAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frontdesk_checkout_charge",
			Help:    "Checkout totals by pricing tier",
			Buckets: prometheus.ExponentialBuckets(50000, 2, 10),
		},
		[]string{"tier"},
	)

	activeSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frontdesk_active_checkin_sessions",
			Help: "Check-in sessions currently cached",
		},
	)
)

const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

func TrackTransition(action, status string) {
	roomTransitions.WithLabelValues(action, status).Inc()
}

func TrackBackendCall(operation string, started time.Time) {
	backendLatency.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func TrackCharge(tier string, total int64) {
	chargeAmount.WithLabelValues(tier).Observe(float64(total))
}

// SessionLister is the part of the session store the collector reads.
type SessionLister interface {
	List(ctx context.Context) (map[uint]*models.CheckinSession, error)
}

type Monitor struct {
	sessions SessionLister
	interval time.Duration
}

func NewMonitor(sessions SessionLister, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{sessions: sessions, interval: interval}
}

// Run refreshes the session gauge until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Collect(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Collect(ctx)
		}
	}
}

func (m *Monitor) Collect(ctx context.Context) {
	all, err := m.sessions.List(ctx)
	if err != nil {
		logger.WarnContext(ctx, "session metrics collection failed", "error", err)
		return
	}
	activeSessions.Set(float64(len(all)))
}
