package market

import (
	"sync"

	"landledger/pkg/domain"
	dErrors "landledger/pkg/domain-errors"
)

// guard is a per-property in-progress flag for one protected entry point. A
// nested call against the same property while a fund transfer is outstanding
// is rejected before it can observe intermediate state; calls for unrelated
// properties proceed independently.
type guard struct {
	busy sync.Map // domain.PropertyID -> struct{}
}

func (g *guard) enter(id domain.PropertyID) error {
	if _, held := g.busy.LoadOrStore(id, struct{}{}); held {
		return dErrors.New(dErrors.CodeInvalidState, "Reentrant call")
	}
	return nil
}

func (g *guard) exit(id domain.PropertyID) {
	g.busy.Delete(id)
}
