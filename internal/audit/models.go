package audit

import (
	"time"

	"landledger/pkg/domain"
)

// EventType names every externally observable action of the registry.
type EventType string

const (
	EventUserRegistered        EventType = "user_registered"
	EventAgentRegistered       EventType = "agent_registered"
	EventAgentVerified         EventType = "agent_verified"
	EventPropertyRegistered    EventType = "property_registered"
	EventPropertyVerified      EventType = "property_verified"
	EventPropertyMinted        EventType = "property_minted"
	EventPropertyListedForSale EventType = "property_listed_for_sale"
	EventPropertyListedForRent EventType = "property_listed_for_rent"
	EventPropertySold          EventType = "property_sold"
	EventPropertyRented        EventType = "property_rented"
	EventRentalEnded           EventType = "rental_ended"
	EventOwnershipTransferred  EventType = "ownership_transferred"
	EventPropertyViewed        EventType = "property_viewed"
	EventFeesUpdated           EventType = "fees_updated"
)

// Event is appended for every observable action. Payload fields are data for
// off-chain subscribers, never control flow. Keep it transport-agnostic so
// stores and sinks can fan out.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time

	// Property is nil for events not tied to a property record
	// (user/agent registration, fee updates).
	Property *domain.PropertyID

	// Actor initiated or is the subject of the event (registrant, viewer,
	// seller, landlord).
	Actor domain.Address

	// Counterparty is the other principal when one exists (buyer, tenant,
	// new owner).
	Counterparty domain.Address

	// Amount carries the price for monetary events.
	Amount domain.Amount

	// Status carries a verification status where applicable.
	Status string

	// Detail carries free-form payload data (agent display name, fee
	// configuration snapshot).
	Detail string
}
