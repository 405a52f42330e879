package records

// Reason explains why a guarded mutation was not applied.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNotFound
	ReasonLocked
)

func (r Reason) String() string {
	switch r {
	case ReasonNotFound:
		return "not_found"
	case ReasonLocked:
		return "locked"
	}
	return "none"
}

// Decision is the outcome of a guarded Update or Delete.
type Decision struct {
	Applied bool
	Reason  Reason
}

// Guard enforces the per-kind state machine in front of a Store. Both
// predicates are evaluated against the stored record, never the caller's copy.
type Guard[R Record[R]] struct {
	store    *Store[R]
	terminal func(R) bool
	locked   func(R) bool
}

// NewGuard wires the terminal and locked predicates for a kind. A nil
// predicate never matches.
func NewGuard[R Record[R]](store *Store[R], terminal, locked func(R) bool) *Guard[R] {
	if terminal == nil {
		terminal = func(R) bool { return false }
	}
	if locked == nil {
		locked = func(R) bool { return false }
	}
	return &Guard[R]{store: store, terminal: terminal, locked: locked}
}

// Update rejects re-completing a record that is already in its terminal status.
func (g *Guard[R]) Update(rec R) Decision {
	incomingTerminal := g.terminal(rec)
	found, applied := g.store.UpdateIf(rec, func(current R) bool {
		return !(incomingTerminal && g.terminal(current))
	})
	return decide(found, applied)
}

// Delete rejects removing a locked record.
func (g *Guard[R]) Delete(id string) Decision {
	found, applied := g.store.DeleteIf(id, func(current R) bool {
		return !g.locked(current)
	})
	return decide(found, applied)
}

func decide(found, applied bool) Decision {
	switch {
	case !found:
		return Decision{Reason: ReasonNotFound}
	case !applied:
		return Decision{Reason: ReasonLocked}
	}
	return Decision{Applied: true}
}
