package mil

import (
	"fmt"
	"strings"
	"sync"
)

// ProgramRegion is the immutable-once-built background theory and
// meta-rule storage, shared read-only by every proof thread. It is
// logically the low-address prefix of the term store: addresses below
// len(program.cells) resolve here, addresses at or above it resolve in
// a thread's own query region.
//
// The RWMutex models the "many readers, no writers while proofs run"
// discipline: every read of a program-region cell (Store.Cell) and of
// its length takes the read lock, and a builtin like assert or module
// loading takes the write lock to extend the region, draining readers
// first.
type ProgramRegion struct {
	mu     sync.RWMutex
	cells  []Cell
	frozen bool
	syms   *SymbolTable
}

// NewProgramRegion creates an empty program region.
func NewProgramRegion(syms *SymbolTable) *ProgramRegion {
	return &ProgramRegion{syms: syms}
}

// Push appends a cell to the program region. Valid only before the
// region is frozen (i.e. during background-theory/meta-rule loading).
func (p *ProgramRegion) Push(c Cell) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen {
		storeFault("ProgramRegion.Push", len(p.cells), c, "program region is frozen")
	}
	p.cells = append(p.cells, c)
	return len(p.cells) - 1
}

// Freeze marks the region read-only, after which Push faults and every
// proof thread may share it for reading.
func (p *ProgramRegion) Freeze() {
	p.mu.Lock()
	p.frozen = true
	p.mu.Unlock()
}

// Len returns the number of cells in the program region; this is also
// the first valid address of any query region built on top of it.
func (p *ProgramRegion) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.cells)
}

// Upgrade runs fn while holding the region's write lock, draining
// concurrent readers first. This is the "brief upgrade window" builtins
// like assert or module loading use; it must not be called
// from inside a proof thread's own main loop without the Top Program
// driver having first paused every other thread, or readers would
// observe a torn region.
func (p *ProgramRegion) Upgrade(fn func(*ProgramRegion)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}

func (p *ProgramRegion) cellAt(addr int) Cell {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cells[addr]
}

// Store is one proof thread's view of the term store: a shared,
// read-only program region plus an owned, append-only query region.
// Writes (Push, Bind) only ever touch the query region; reads fall
// through transparently to the program region for low addresses.
type Store struct {
	program *ProgramRegion
	query   []Cell
	syms    *SymbolTable
}

// NewStore creates a fresh query region layered over program.
func NewStore(program *ProgramRegion) *Store {
	return &Store{program: program, syms: program.syms}
}

// Program returns the shared program region this store is layered over.
func (s *Store) Program() *ProgramRegion { return s.program }

// Symbols returns the symbol table used to name constants in this store.
func (s *Store) Symbols() *SymbolTable { return s.syms }

// Len returns the absolute address one past the last cell in the
// store (program region plus this thread's query region).
func (s *Store) Len() int {
	return s.program.Len() + len(s.query)
}

// QueryStart returns the first address of the mutable query region,
// i.e. the query-start length used by the backtrack-exact-restoration
// property.
func (s *Store) QueryStart() int {
	return s.program.Len()
}

// Push appends a cell to the query region and returns its address.
func (s *Store) Push(c Cell) int {
	s.query = append(s.query, c)
	return s.program.Len() + len(s.query) - 1
}

// PushRef pushes a fresh, unbound first-order variable and returns its
// address (a self-referencing Ref).
func (s *Store) PushRef() int {
	addr := s.program.Len() + len(s.query)
	s.query = append(s.query, Cell{Tag: Ref, Payload: uint(addr)})
	return addr
}

// PushConst pushes an interned constant symbol.
func (s *Store) PushConst(symbol uint) int {
	return s.Push(Cell{Tag: Con, Payload: symbol})
}

// PushInt pushes a signed integer immediate.
func (s *Store) PushInt(v int) int {
	return s.Push(Cell{Tag: Int, Payload: uint(uint64(int64(v)))})
}

// PushFunc pushes a functor cell followed by its symbol and n argument
// placeholders (each initialized as fresh Refs), returning the functor
// cell's address and the addresses of its n argument slots so the
// caller can fill or rebind them.
func (s *Store) PushFunc(symbol uint, arity int) (funcAddr int, argAddrs []int) {
	funcAddr = s.Push(Cell{Tag: Func, Payload: uint(arity)})
	s.Push(Cell{Tag: Con, Payload: symbol})
	argAddrs = make([]int, arity)
	for i := 0; i < arity; i++ {
		argAddrs[i] = s.PushRef()
	}
	return funcAddr, argAddrs
}

// PushCompound pushes a functor cell over an already-built symbol
// address and already-built argument addresses, each linked through a
// Ref indirection cell — the same structure-sharing representation
// PushList uses for a cons cell's head and tail. Unlike PushFunc, it
// never mints a fresh variable for the symbol position: the caller has
// already resolved it, or left it open on purpose.
func (s *Store) PushCompound(symAddr int, argAddrs []int) int {
	funcAddr := s.Push(Cell{Tag: Func, Payload: uint(len(argAddrs))})
	s.Push(Cell{Tag: Ref, Payload: uint(symAddr)})
	for _, a := range argAddrs {
		s.Push(Cell{Tag: Ref, Payload: uint(a)})
	}
	return funcAddr
}

// PushStr pushes an indirection cell pointing at a Func cell, the
// representation used wherever a compound term occupies an argument
// slot (enables structure sharing).
func (s *Store) PushStr(funcAddr int) int {
	return s.Push(Cell{Tag: Str, Payload: uint(funcAddr)})
}

// PushEmptyList pushes the distinguished empty-list sentinel.
func (s *Store) PushEmptyList() int {
	return s.Push(Cell{Tag: Lis, Payload: ConPtr})
}

// PushList pushes a cons cell (head . tail): a Lis cell pointing at a
// pair of indirection cells that hold the addresses of head and tail.
func (s *Store) PushList(head, tail int) int {
	pairAddr := s.Push(Cell{Tag: Lis, Payload: 0})
	s.setCell(pairAddr, Cell{Tag: Lis, Payload: uint(pairAddr + 1)})
	s.Push(Cell{Tag: Ref, Payload: uint(head)})
	s.Push(Cell{Tag: Ref, Payload: uint(tail)})
	return pairAddr
}

// PushFloat pushes a floating point immediate.
func (s *Store) PushFloat(v float64) int {
	return s.Push(Cell{Tag: Flt, Payload: floatBits(v)})
}

func (s *Store) setCell(addr int, c Cell) {
	boundary := s.program.Len()
	if addr < boundary {
		storeFault("Store.setCell", addr, c, "attempted write into program region")
	}
	s.query[addr-boundary] = c
}

// Cell returns the cell at addr without following any chain.
func (s *Store) Cell(addr int) Cell {
	boundary := s.program.Len()
	if addr < boundary {
		return s.program.cellAt(addr)
	}
	idx := addr - boundary
	if idx < 0 || idx >= len(s.query) {
		storeFault("Store.Cell", addr, Cell{}, "address out of range (len=%d)", s.Len())
	}
	return s.query[idx]
}

// Deref follows Ref and Str chains from addr to the first non-indirect
// cell, or to the final unbound Ref if the chain ends there.
func (s *Store) Deref(addr int) int {
	for {
		c := s.Cell(addr)
		switch c.Tag {
		case Ref:
			if int(c.Payload) == addr {
				return addr // unbound
			}
			addr = int(c.Payload)
		case Str:
			addr = int(c.Payload)
			return addr // Str always points straight at a Func cell; no further chasing needed
		default:
			return addr
		}
	}
}

// Binding is one entry of a reversible bind/unbind pair: src must be an
// unbound Ref; after Bind, it points at tgt.
type Binding struct {
	Src int
	Tgt int
}

// Bind commits a set of bindings to the query region: for each entry,
// the cell at Src is overwritten to point at Tgt. Every Src must
// currently be a self-referencing (unbound) Ref in the query region —
// violating this is a contract error and panics with a
// StoreFault, since it would indicate aliasing corruption rather than a
// retriable proof-search outcome.
func (s *Store) Bind(bindings []Binding) {
	for _, b := range bindings {
		c := s.Cell(b.Src)
		if c.Tag != Ref || int(c.Payload) != b.Src {
			storeFault("Store.Bind", b.Src, c, "target is not a self-referencing (unbound) Ref")
		}
		s.setCell(b.Src, Cell{Tag: Ref, Payload: uint(b.Tgt)})
	}
}

// Unbind reverses a previously applied Bind, restoring each Src cell to
// a self-referencing Ref. Implementations should iterate LIFO, though
// correctness does not depend on order since each binding is a
// point-write to a distinct address.
func (s *Store) Unbind(bindings []Binding) {
	for i := len(bindings) - 1; i >= 0; i-- {
		b := bindings[i]
		s.setCell(b.Src, Cell{Tag: Ref, Payload: uint(b.Src)})
	}
}

// Truncate discards every query-region cell at or after n, restoring
// the store to the state it had when its query region had length
// n-QueryStart(). Used at query-boundary resets
// and is the mechanism the backtrack-exact-restoration property (spec
// §8 property 6) checks against.
func (s *Store) Truncate(n int) {
	boundary := s.program.Len()
	idx := n - boundary
	if idx < 0 || idx > len(s.query) {
		storeFault("Store.Truncate", n, Cell{}, "truncation point out of range (query len=%d)", len(s.query))
	}
	s.query = s.query[:idx]
}

// StrSymbolArity returns the functor symbol (or, for a template slot,
// the Arg slot index reinterpreted as a "symbol") and arity for the
// Func cell at addr, or for the Func cell a Str at addr points to.
func (s *Store) StrSymbolArity(addr int) (symbolOrSlot uint, arity int) {
	c := s.Cell(addr)
	funcAddr := addr
	switch c.Tag {
	case Str:
		funcAddr = int(c.Payload)
		c = s.Cell(funcAddr)
	case Func:
		// already at the Func cell
	default:
		storeFault("Store.StrSymbolArity", addr, c, "expected Str or Func cell")
	}
	arity = int(c.Payload)
	symCell := s.Cell(s.Deref(funcAddr + 1))
	return symCell.Payload, arity
}

// FuncArgs returns the addresses of the arity argument cells following
// the Func cell at funcAddr (funcAddr must address a Func cell
// directly, not a Str indirection — callers dereference first).
func (s *Store) FuncArgs(funcAddr int) []int {
	c := s.Cell(funcAddr)
	if c.Tag != Func {
		storeFault("Store.FuncArgs", funcAddr, c, "expected Func cell")
	}
	arity := int(c.Payload)
	args := make([]int, arity)
	for i := 0; i < arity; i++ {
		args[i] = funcAddr + 2 + i
	}
	return args
}

// ListSpine walks a Lis chain starting at addr, returning the head
// addresses in order and the final tail address (which is either the
// empty-list sentinel or, for a partial/improper list, an unbound Ref
// or other non-Lis term).
func (s *Store) ListSpine(addr int) (heads []int, tail int) {
	for {
		addr = s.Deref(addr)
		c := s.Cell(addr)
		if c.IsEmptyList() {
			return heads, addr
		}
		if c.Tag != Lis {
			return heads, addr
		}
		pair := int(c.Payload)
		heads = append(heads, pair)
		addr = pair + 1
	}
}

// TermString pretty-prints the term rooted at addr, resolving Con
// symbols through the store's symbol table and following bindings.
func (s *Store) TermString(addr int) string {
	var b strings.Builder
	s.writeTerm(&b, addr)
	return b.String()
}

func (s *Store) writeTerm(b *strings.Builder, addr int) {
	addr = s.Deref(addr)
	c := s.Cell(addr)
	switch c.Tag {
	case Ref:
		fmt.Fprintf(b, "_G%d", addr)
	case Arg:
		fmt.Fprintf(b, "_A%d", c.Payload)
	case ArgA:
		fmt.Fprintf(b, "_U%d", c.Payload)
	case Con:
		b.WriteString(s.syms.Name(c.Payload))
	case Int:
		fmt.Fprintf(b, "%d", int64(c.Payload))
	case Flt:
		fmt.Fprintf(b, "%v", floatFromBits(c.Payload))
	case Str, Func:
		sym, arity := s.StrSymbolArity(addr)
		b.WriteString(s.syms.Name(sym))
		if arity > 0 {
			funcAddr := addr
			if c.Tag == Str {
				funcAddr = int(c.Payload)
			}
			b.WriteByte('(')
			for i, a := range s.FuncArgs(funcAddr) {
				if i > 0 {
					b.WriteString(", ")
				}
				s.writeTerm(b, a)
			}
			b.WriteByte(')')
		}
	case Lis:
		if c.IsEmptyList() {
			b.WriteString("[]")
			return
		}
		b.WriteByte('[')
		heads, tail := s.ListSpine(addr)
		for i, h := range heads {
			if i > 0 {
				b.WriteString(", ")
			}
			s.writeTerm(b, h)
		}
		if !s.Cell(tail).IsEmptyList() {
			b.WriteByte('|')
			s.writeTerm(b, tail)
		}
		b.WriteByte(']')
	default:
		fmt.Fprintf(b, "<%s>", c)
	}
}
