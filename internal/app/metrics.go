package app

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeApplied  = "applied"
	outcomeNoop     = "noop"
	outcomeRejected = "rejected"
)

// Metrics counts store commands and notification fan-out. A nil *Metrics is valid and records nothing.
type Metrics struct {
	commands      *prometheus.CounterVec
	notifications prometheus.Counter
	students      prometheus.Gauge
}

// NewMetrics registers the store collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "drivequest",
			Subsystem: "store",
			Name:      "commands_total",
			Help:      "Store commands by name and outcome (applied, noop, rejected).",
		}, []string{"command", "outcome"}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "drivequest",
			Subsystem: "store",
			Name:      "notifications_total",
			Help:      "Listener invocations after applied commands.",
		}),
		students: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "drivequest",
			Subsystem: "store",
			Name:      "students",
			Help:      "Students currently held by the store.",
		}),
	}
	reg.MustRegister(m.commands, m.notifications, m.students)
	return m
}

func (m *Metrics) command(name, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name, outcome).Inc()
}

func (m *Metrics) notification() {
	if m == nil {
		return
	}
	m.notifications.Inc()
}

func (m *Metrics) setStudents(n int) {
	if m == nil {
		return
	}
	m.students.Set(float64(n))
}
