package mil

import (
	"fmt"
	"sync"
)

// SymbolTable interns symbol names to small integer ids and back. The
// real symbol-interning table is an external collaborator; this is a
// minimal stand-in sufficient to build terms through the Go
// API and to pretty-print them, used by the CLI demo and the tests.
type SymbolTable struct {
	mu      sync.RWMutex
	byName  map[string]uint
	byID    []string
	counter uint
}

// NewSymbolTable creates an empty symbol table. Id 0 is reserved: it
// never names a real symbol (Intern and Fresh start at 1). An open
// predicate position is an unbound Ref, not symbol 0.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byName: make(map[string]uint),
		byID:   []string{"$unbound-pred"},
	}
}

// Intern returns the id for name, minting a fresh one if this is the
// first time name has been seen.
func (s *SymbolTable) Intern(name string) uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byName[name]; ok {
		return id
	}
	s.counter++
	id := s.counter
	s.byName[name] = id
	s.byID = append(s.byID, name)
	return id
}

// Fresh mints a brand-new symbol guaranteed distinct from every
// previously interned name, using prefix as a human-readable base (e.g.
// "pred" for invented predicates, producing "pred_3"). This is how
// predicate invention mints a fresh constant.
func (s *SymbolTable) Fresh(prefix string) (id uint, name string) {
	s.mu.Lock()
	s.counter++
	id = s.counter
	name = fmt.Sprintf("%s_%d", prefix, id)
	s.byName[name] = id
	s.byID = append(s.byID, name)
	s.mu.Unlock()
	return id, name
}

// Name returns the interned name for id, or a placeholder if id is
// unknown (never panics: symbol lookup is a diagnostics path, not a
// correctness-critical one).
func (s *SymbolTable) Name(id uint) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) < len(s.byID) {
		return s.byID[id]
	}
	return fmt.Sprintf("$sym%d", id)
}
