package chronoval

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current wall-clock time. The store injects a Clock so
// tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system wall clock.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time { return time.Now() }

// Tx identifies one unit of work. All writes issued within it record the
// same instant: the wall-clock time of the transaction's first write.
type Tx struct {
	ID uuid.UUID

	writeTime int64
	hasWrite  bool
}

// TxClock hands out write timestamps scoped to a unit of work. The first
// write of a transaction memoizes the clock reading; every later write in
// the same transaction reuses it, so one atomic unit of work is recorded at
// a single instant. Commit tears the memoized instant down.
//
// The host serializes concurrent mutation of a stored value; TxClock itself
// only guards its own unit-of-work state.
type TxClock struct {
	clock Clock

	mu      sync.Mutex
	current *Tx
}

// NewTxClock creates a transaction clock. A nil clock defaults to the
// system wall clock.
func NewTxClock(clock Clock) *TxClock {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TxClock{clock: clock}
}

// Begin opens a unit of work and returns its handle. The write timestamp is
// not sampled yet; it is initialized lazily by the first write.
func (c *TxClock) Begin() *Tx {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = &Tx{ID: uuid.New()}
	return c.current
}

// WriteTimestamp returns the Unix nanosecond timestamp for a write in the
// current unit of work, memoizing the clock on the first call. Writes issued
// outside an explicit Begin/Commit pair run as implicit single-write
// transactions.
func (c *TxClock) WriteTimestamp() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		c.current = &Tx{ID: uuid.New()}
	}
	if !c.current.hasWrite {
		c.current.writeTime = c.clock.Now().UnixNano()
		c.current.hasWrite = true
	}
	return c.current.writeTime
}

// Commit ends the current unit of work, resetting the memoized write
// timestamp. The next write starts a fresh transaction with a fresh instant.
func (c *TxClock) Commit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}
