package ledger

import (
	"context"
	"fmt"
	"sync"

	"landledger/pkg/domain"
	"landledger/pkg/platform/sentinel"
)

// Tx moves funds inside an atomic section. Transfers are visible to later
// transfers in the same section but are not committed until the section
// returns nil.
type Tx interface {
	Transfer(from, to domain.Address, amount domain.Amount) error
}

// Bank is the native payment medium. Atomic runs fn against a working copy of
// the balances and commits every transfer or none of them; any error from fn
// discards the section wholesale. This is the all-or-nothing guarantee the
// marketplace relies on instead of compensating rollbacks.
type Bank interface {
	Balance(ctx context.Context, addr domain.Address) (domain.Amount, error)
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}

// MemoryBank keeps balances in process. The mutex serializes atomic sections,
// matching the single-writer execution model of the core.
type MemoryBank struct {
	mu       sync.RWMutex
	balances map[domain.Address]domain.Amount
}

// NewMemoryBank returns an empty in-process bank.
func NewMemoryBank() *MemoryBank {
	return &MemoryBank{balances: make(map[domain.Address]domain.Amount)}
}

// Mint credits an account outside any transaction. Used by dev wiring and
// tests to fund principals; there is no issuance path in the registry itself.
func (b *MemoryBank) Mint(addr domain.Address, amount domain.Amount) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[addr] += amount
}

func (b *MemoryBank) Balance(_ context.Context, addr domain.Address) (domain.Amount, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[addr], nil
}

func (b *MemoryBank) Atomic(_ context.Context, fn func(tx Tx) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	working := make(map[domain.Address]domain.Amount, len(b.balances))
	for addr, bal := range b.balances {
		working[addr] = bal
	}

	if err := fn(&memoryTx{balances: working}); err != nil {
		return err
	}

	b.balances = working
	return nil
}

type memoryTx struct {
	balances map[domain.Address]domain.Amount
}

func (t *memoryTx) Transfer(from, to domain.Address, amount domain.Amount) error {
	if to.IsZero() {
		return fmt.Errorf("transfer to zero address: %w", sentinel.ErrConflict)
	}
	if amount == 0 {
		return nil
	}
	if t.balances[from] < amount {
		return fmt.Errorf("transfer %d from %s: %w", amount, from, sentinel.ErrInsufficientFunds)
	}
	t.balances[from] -= amount
	t.balances[to] += amount
	return nil
}
