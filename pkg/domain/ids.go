package domain

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
)

// Address identifies a principal: a user, an agent, a wallet, or one of the
// payout accounts. Addresses are opaque strings; the zero value means "nobody"
// and is never a valid recipient.
type Address string

// ZeroAddress is the absence of a principal (no tenant, no verifier).
const ZeroAddress Address = ""

// String returns the string representation of the address.
func (a Address) String() string {
	return string(a)
}

// IsZero returns true when the address names no principal.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// PropertyID is the sequential identifier of a property record. IDs start at 0
// and are never reused; token IDs share the same number space.
type PropertyID uint64

// ParsePropertyID validates and returns a PropertyID from its decimal form.
func ParsePropertyID(s string) (PropertyID, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid property id: %s", s)
	}
	return PropertyID(n), nil
}

// String returns the decimal representation of the property id.
func (p PropertyID) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

// Amount is a monetary value in the smallest unit of the payment medium.
// There is a single currency; fractional units do not exist.
type Amount uint64

// BasisPoints expresses a fee rate in 1/100ths of a percent (100bp = 1%).
type BasisPoints uint64

// BasisPointDenominator converts basis points to a fraction of an amount.
const BasisPointDenominator = 10_000

// Of returns the floor of amount * bp / 10000. The product is computed in
// 128 bits so large amounts cannot wrap; a rate above 100% whose result would
// not fit in 64 bits saturates to the maximum amount.
func (bp BasisPoints) Of(amount Amount) Amount {
	hi, lo := bits.Mul64(uint64(amount), uint64(bp))
	if hi >= BasisPointDenominator {
		return Amount(math.MaxUint64)
	}
	quo, _ := bits.Div64(hi, lo, BasisPointDenominator)
	return Amount(quo)
}
