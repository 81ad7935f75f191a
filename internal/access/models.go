package access

import (
	"time"

	"landledger/pkg/domain"
)

// Agent is a licensed intermediary. The address is immutable once registered;
// verification status may be flipped repeatedly by an admin or the government.
type Agent struct {
	Address      domain.Address
	Name         string
	Contact      string
	Active       bool
	Status       domain.VerificationStatus
	RegisteredAt time.Time
}
