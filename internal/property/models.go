package property

import (
	"time"

	"landledger/pkg/domain"
)

// Info holds the descriptive fields of a property record. The survey hash is
// empty until the government submits a report and is overwritten wholesale on
// resubmission.
type Info struct {
	Title        string
	Location     string
	Category     string
	Size         uint64
	Bedrooms     uint32
	Bathrooms    uint32
	Features     string
	Description  string
	DocumentHash string
	SurveyHash   string
}

// Status holds the lifecycle flags. ForSale and ForRent are mutually
// exclusive at any instant; listing one clears the other.
type Status struct {
	Registered   bool
	Verification domain.VerificationStatus
	Tokenized    bool
	ForSale      bool
	ForRent      bool
	SalePrice    domain.Amount
	RentPrice    domain.Amount
	Owner        domain.Address
	Verifier     domain.Address
}

// Timestamps records lifecycle instants. VerifiedAt is cleared to the zero
// time whenever verification leaves APPROVED.
type Timestamps struct {
	RegisteredAt time.Time
	VerifiedAt   time.Time
	MintedAt     time.Time
}

// Rental is bound 1:1 to a property. It is reset when the property is listed
// for rent and deactivated only after the agreed duration has elapsed; the
// tenant and timing fields are retained as a historical trace until the next
// listing resets them.
type Rental struct {
	Tenant    domain.Address
	StartTime time.Time
	Duration  time.Duration
	Active    bool
}

// Property is the full co-keyed record set for one property id.
type Property struct {
	ID         domain.PropertyID
	Info       Info
	Status     Status
	Timestamps Timestamps
	Rental     Rental
}

// VerificationSummary is the buyer-facing view of a property's review state.
type VerificationSummary struct {
	Approved   bool
	Status     domain.VerificationStatus
	Verifier   domain.Address
	SurveyHash string
}
