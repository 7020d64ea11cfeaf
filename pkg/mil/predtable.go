package mil

// BuiltinFunc is a registered builtin predicate. Rather than succeeding
// or failing outright, a builtin exposes its alternatives the same way
// a clause choice point does: the proof engine asks how many
// alternatives exist for the given
// arguments, then applies them one at a time, undoing via the ordinary
// store Bind/Unbind trail between attempts.
type BuiltinFunc struct {
	Arity int

	// Alternatives returns how many alternatives this builtin offers
	// for args (already dereferenced store addresses). is/2 and the
	// arithmetic comparisons offer at most one; member/2 offers one
	// per list element.
	Alternatives func(store *Store, args []int) int

	// Apply attempts alternative alt (0-based), returning the store
	// bindings it applied and whether the alternative holds. A false
	// return must apply no bindings.
	Apply func(store *Store, args []int, alt int) ([]Binding, bool)
}

// PredicateTable resolves a predicate symbol and arity to either a
// registered builtin or the set of clauses (background, meta-rule, or
// hypothesis) whose head might match it. The proof engine
// is the sole caller; a concrete table only needs to answer these two
// questions.
type PredicateTable interface {
	Builtin(symbol uint, arity int) (BuiltinFunc, bool)
	Clauses(symbol uint, arity int) []int // indices into the engine's combined clause list
}

// StaticPredicateTable is a fixed, in-memory PredicateTable: background
// theory and meta-rules are registered once up front as a stand-in for
// a module/database layer, builtins are a small fixed
// registry seeded by NewStaticPredicateTable.
type StaticPredicateTable struct {
	syms     *SymbolTable
	builtins map[uint]BuiltinFunc
	clauses  map[uint][]int // keyed by symbol id, value arity folded into BuiltinFunc/clause lookup by caller
}

// NewStaticPredicateTable creates a table with the standard arithmetic
// and list builtins registered: is/2, the six arithmetic comparisons,
// and member/2.
func NewStaticPredicateTable(syms *SymbolTable) *StaticPredicateTable {
	t := &StaticPredicateTable{
		syms:     syms,
		builtins: make(map[uint]BuiltinFunc),
		clauses:  make(map[uint][]int),
	}
	t.registerArithmetic()
	t.registerMember()
	return t
}

// RegisterClause records that clause index idx (into the engine's
// combined background+hypothesis clause list) is a candidate for
// predicate symbol/arity, keeping the table in sync as clauses are
// asserted or hypothesis frames are pushed.
func (t *StaticPredicateTable) RegisterClause(symbol uint, idx int) {
	t.clauses[symbol] = append(t.clauses[symbol], idx)
}

// Builtin implements PredicateTable.
func (t *StaticPredicateTable) Builtin(symbol uint, arity int) (BuiltinFunc, bool) {
	b, ok := t.builtins[symbol]
	if !ok || b.Arity != arity {
		return BuiltinFunc{}, false
	}
	return b, true
}

// Clauses implements PredicateTable.
func (t *StaticPredicateTable) Clauses(symbol uint, arity int) []int {
	return append([]int(nil), t.clauses[symbol]...)
}

func (t *StaticPredicateTable) registerArithmetic() {
	isSym := t.syms.Intern("is")
	t.builtins[isSym] = BuiltinFunc{
		Arity: 2,
		Alternatives: func(store *Store, args []int) int {
			if _, ok := evalArith(store, args[1]); !ok {
				return 0
			}
			return 1
		},
		Apply: func(store *Store, args []int, alt int) ([]Binding, bool) {
			v, ok := evalArith(store, args[1])
			if !ok {
				return nil, false
			}
			resultAddr := store.Deref(args[0])
			valAddr := store.PushInt(v)
			u := NewUnifier(store, nil)
			if !u.Unify(resultAddr, valAddr) {
				u.UndoTo(0, 0)
				return nil, false
			}
			return u.Trail(), true
		},
	}

	cmp := func(name string, cmp func(a, b int) bool) {
		sym := t.syms.Intern(name)
		t.builtins[sym] = BuiltinFunc{
			Arity: 2,
			Alternatives: func(store *Store, args []int) int {
				a, ok1 := evalArith(store, args[0])
				b, ok2 := evalArith(store, args[1])
				if !ok1 || !ok2 || !cmp(a, b) {
					return 0
				}
				return 1
			},
			Apply: func(store *Store, args []int, alt int) ([]Binding, bool) {
				a, ok1 := evalArith(store, args[0])
				b, ok2 := evalArith(store, args[1])
				if !ok1 || !ok2 || !cmp(a, b) {
					return nil, false
				}
				return nil, true
			},
		}
	}
	cmp(">", func(a, b int) bool { return a > b })
	cmp("<", func(a, b int) bool { return a < b })
	cmp(">=", func(a, b int) bool { return a >= b })
	cmp("=<", func(a, b int) bool { return a <= b })
	cmp("=:=", func(a, b int) bool { return a == b })
	cmp("=\\=", func(a, b int) bool { return a != b })
}

func (t *StaticPredicateTable) registerMember() {
	sym := t.syms.Intern("member")
	t.builtins[sym] = BuiltinFunc{
		Arity: 2,
		Alternatives: func(store *Store, args []int) int {
			heads, _ := store.ListSpine(args[1])
			return len(heads)
		},
		Apply: func(store *Store, args []int, alt int) ([]Binding, bool) {
			heads, _ := store.ListSpine(args[1])
			if alt < 0 || alt >= len(heads) {
				return nil, false
			}
			u := NewUnifier(store, nil)
			if !u.Unify(args[0], heads[alt]) {
				u.UndoTo(0, 0)
				return nil, false
			}
			return u.Trail(), true
		},
	}
}

// evalArith evaluates the arithmetic expression rooted at addr: an Int
// immediate, or a Func cell over +, -, *, / with two arithmetic
// sub-expressions. It returns false rather than panicking on anything
// else (an unbound variable, a non-arithmetic functor), since a failed
// evaluation is an ordinary is/2 failure, not a contract violation.
func evalArith(store *Store, addr int) (int, bool) {
	addr = store.Deref(addr)
	c := store.Cell(addr)
	switch c.Tag {
	case Int:
		return int(int64(c.Payload)), true
	case Func, Str:
		sym, arity := store.StrSymbolArity(addr)
		if arity != 2 {
			return 0, false
		}
		funcAddr := addr
		if c.Tag == Str {
			funcAddr = int(c.Payload)
		}
		args := store.FuncArgs(funcAddr)
		a, ok := evalArith(store, args[0])
		if !ok {
			return 0, false
		}
		b, ok := evalArith(store, args[1])
		if !ok {
			return 0, false
		}
		switch store.Symbols().Name(sym) {
		case "+":
			return a + b, true
		case "-":
			return a - b, true
		case "*":
			return a * b, true
		case "/":
			if b == 0 {
				return 0, false
			}
			return a / b, true
		default:
			return 0, false
		}
	default:
		return 0, false
	}
}
