package domain

import "fmt"

// VerificationStatus tracks the government/admin review state of a property or
// agent. Records start in StatusPending.
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "PENDING"
	StatusApproved VerificationStatus = "APPROVED"
	StatusRejected VerificationStatus = "REJECTED"
)

// ParseVerificationStatus validates and returns a VerificationStatus.
func ParseVerificationStatus(s string) (VerificationStatus, error) {
	switch VerificationStatus(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return VerificationStatus(s), nil
	}
	return "", fmt.Errorf("unknown verification status: %s", s)
}

// String returns the string representation of the status.
func (s VerificationStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is one of the three known states.
func (s VerificationStatus) IsValid() bool {
	_, err := ParseVerificationStatus(string(s))
	return err == nil
}

// Role is a capability class consulted by the access control registry.
type Role string

const (
	// RoleAdmin covers fee configuration, agent registration, and property
	// verification. The deployer holds it from construction.
	RoleAdmin Role = "admin"
	// RoleGovernment covers survey submission and property/agent verification.
	RoleGovernment Role = "government"
	// RoleAgent is granted automatically on agent registration and is used
	// only to identify commission recipients.
	RoleAgent Role = "agent"
)

// IsValid reports whether the role is a known capability class.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleGovernment, RoleAgent:
		return true
	}
	return false
}
