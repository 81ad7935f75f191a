package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"landledger/pkg/domain"
)

// Metrics holds all Prometheus metrics for the registry.
type Metrics struct {
	UsersRegistered      prometheus.Counter
	PropertiesRegistered prometheus.Counter
	PropertiesSold       prometheus.Counter
	PropertiesRented     prometheus.Counter
	TokensMinted         prometheus.Counter
	FeesDisbursed        *prometheus.CounterVec
	TransactionVolume    prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "landledger_users_registered_total",
			Help: "Total number of self-registered users",
		}),
		PropertiesRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "landledger_properties_registered_total",
			Help: "Total number of property records created",
		}),
		PropertiesSold: promauto.NewCounter(prometheus.CounterOpts{
			Name: "landledger_properties_sold_total",
			Help: "Total number of completed purchases",
		}),
		PropertiesRented: promauto.NewCounter(prometheus.CounterOpts{
			Name: "landledger_properties_rented_total",
			Help: "Total number of completed rental transactions",
		}),
		TokensMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "landledger_tokens_minted_total",
			Help: "Total number of property tokens minted",
		}),
		FeesDisbursed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "landledger_fees_disbursed_units_total",
			Help: "Fee units disbursed, partitioned by recipient class",
		}, []string{"recipient"}),
		TransactionVolume: promauto.NewCounter(prometheus.CounterOpts{
			Name: "landledger_transaction_volume_units_total",
			Help: "Gross sale and rental volume in payment units",
		}),
	}
}

// ObserveDisbursement records fee units paid out to a recipient class
// (agency, government, agent).
func (m *Metrics) ObserveDisbursement(recipient string, amount domain.Amount) {
	if m == nil {
		return
	}
	m.FeesDisbursed.WithLabelValues(recipient).Add(float64(amount))
}
