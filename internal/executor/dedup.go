package executor

import "sync"

const defaultLedgerCapacity = 1000

// Ledger is the processed-trade dedup set. Keys are "address:txhash"
// composites. Membership check and insert are a single atomic step so two
// deliveries of the same event can never both pass.
type Ledger struct {
	mu  sync.Mutex
	set map[string]struct{}
	cap int
}

func NewLedger(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = defaultLedgerCapacity
	}
	return &Ledger{
		set: make(map[string]struct{}, capacity),
		cap: capacity,
	}
}

// CheckAndInsert records key and reports whether it was already present.
// When the set is full the whole set is dropped and rebuilt containing only
// key; recently seen hashes become re-processable after an overflow, which
// is accepted in exchange for a hard memory bound.
func (l *Ledger) CheckAndInsert(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, seen := l.set[key]; seen {
		return true
	}
	if len(l.set) >= l.cap {
		l.set = make(map[string]struct{}, l.cap)
	}
	l.set[key] = struct{}{}
	return false
}

// Len returns the current number of remembered keys.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.set)
}
