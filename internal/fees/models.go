package fees

import "landledger/pkg/domain"

// Caps on the configurable rates. Their sum stays below 100%, which is what
// makes the breakdown invariant unreachable under a validated configuration.
const (
	MaxAgencyBp     domain.BasisPoints = 2000
	MaxGovernmentBp domain.BasisPoints = 1000
	MaxAgentBp      domain.BasisPoints = 2000
)

// Config is the single global fee configuration. It is replaced wholesale by
// an admin and read by every monetary transaction.
type Config struct {
	AgencyBp     domain.BasisPoints
	GovernmentBp domain.BasisPoints
	FlatFee      domain.Amount
	AgentBp      domain.BasisPoints
	Enabled      bool
}

// Breakdown is the four-way split of a transaction amount. The flat fee is a
// surcharge on top of the amount, not a slice of it.
type Breakdown struct {
	AgencyCut       domain.Amount
	GovernmentCut   domain.Amount
	AgentCommission domain.Amount
	FlatFee         domain.Amount
}

// Total returns the percentage cuts taken out of the amount itself.
func (b Breakdown) Total() domain.Amount {
	return b.AgencyCut + b.GovernmentCut + b.AgentCommission
}
