package update

import (
	"errors"
	"sync/atomic"
)

// ErrBusy is returned when an operation class is invoked while a previous
// invocation of the same class is still running.
var ErrBusy = errors.New("update: operation already in progress")

// guard is a per-operation-class re-entrancy latch. acquire succeeds for
// exactly one caller until release.
type guard struct {
	held atomic.Bool
}

func (g *guard) acquire() bool {
	return g.held.CompareAndSwap(false, true)
}

func (g *guard) release() {
	g.held.Store(false)
}
