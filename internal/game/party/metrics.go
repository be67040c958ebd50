package party

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes coordinator state to Prometheus.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	parties    prometheus.Gauge
	invites    prometheus.Gauge
	operations *prometheus.CounterVec
	disbanded  prometheus.Counter
}

// NewMetrics creates party metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		parties: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "partylobby",
			Subsystem: "party",
			Name:      "active",
			Help:      "Number of parties with at least one indexed member.",
		}),
		invites: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "partylobby",
			Subsystem: "party",
			Name:      "pending_invites",
			Help:      "Number of live pending invites.",
		}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "partylobby",
			Subsystem: "party",
			Name:      "operations_total",
			Help:      "Party commands by operation and result.",
		}, []string{"op", "result"}),
		disbanded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "partylobby",
			Subsystem: "party",
			Name:      "disbanded_total",
			Help:      "Parties disbanded after their owner left.",
		}),
	}

	for _, c := range []prometheus.Collector{m.parties, m.invites, m.operations, m.disbanded} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, resultLabel(err)).Inc()
}

func (m *Metrics) setState(parties, invites int) {
	if m == nil {
		return
	}
	m.parties.Set(float64(parties))
	m.invites.Set(float64(invites))
}

func (m *Metrics) partyDisbanded() {
	if m == nil {
		return
	}
	m.disbanded.Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotInParty):
		return "not_in_party"
	case errors.Is(err, ErrNotOwner):
		return "not_owner"
	case errors.Is(err, ErrNoSuchInvite):
		return "no_such_invite"
	case errors.Is(err, ErrAlreadyInParty):
		return "already_in_party"
	case errors.Is(err, ErrBlocked):
		return "blocked"
	case errors.Is(err, ErrInviteSelf):
		return "invite_self"
	default:
		return "error"
	}
}
