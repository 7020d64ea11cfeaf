package mil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/jamestrewern/mil/internal/parallel"
)

// Example is one labelled training instance for the Top Program
// driver: a goal template (built fresh per thread, since every proof
// thread owns its own query region) and whether it is a positive or
// negative example.
type Example struct {
	Build func(*Store) int
	Positive bool
}

// HypothesisResult is what one proof thread reports back about a
// single positive example: either a concrete hypothesis (as clause
// strings, since each thread's store is private and does not outlive
// the thread) or that no proof was found at all.
type HypothesisResult struct {
	ExampleIndex int
	Proved       bool
	Clauses      []string // canonical printed form of each learned/invented clause
}

// TopProgram is the external consumer driving one proof thread per
// positive example in parallel: proof threads share the program
// region read-only and each own a private query region: see
// pkg/mil.Store's split-region design. Results are aggregated through
// a channel protocol with canonical-key dedup, so identical hypotheses
// learned independently by different threads are only reported once.
type TopProgram struct {
	program    *ProgramRegion
	background []Clause
	metaRules  []Clause
	config     Config
	pool       *parallel.WorkerPool
	log        hclog.Logger
}

// NewTopProgram creates a driver sharing program (already frozen) and
// the given background theory/meta-rules across every proof thread it
// spawns, running at most maxWorkers proof threads at once.
func NewTopProgram(program *ProgramRegion, background, metaRules []Clause, config Config, maxWorkers int) *TopProgram {
	return &TopProgram{
		program:    program,
		background: background,
		metaRules:  metaRules,
		config:     config,
		pool:       parallel.NewWorkerPool(maxWorkers),
		log:        NewLogger(config.Debug),
	}
}

// Shutdown stops the underlying worker pool, waiting for in-flight
// proof threads to finish.
func (tp *TopProgram) Shutdown() {
	tp.pool.Shutdown()
}

// Run resolves every positive example in examples concurrently (one
// proof thread each; each thread rejects any solution that also proves
// a negative example) and returns one result per distinct hypothesis
// proved, deduplicated by its canonical clause-string key, plus one
// unproven result for every positive example with no accepted proof.
func (tp *TopProgram) Run(ctx context.Context, examples []Example) ([]HypothesisResult, error) {
	results := make(chan HypothesisResult, len(examples))
	var wg sync.WaitGroup

	for i, ex := range examples {
		if !ex.Positive {
			continue
		}
		i, ex := i, ex
		wg.Add(1)
		err := tp.pool.Submit(ctx, func() {
			defer wg.Done()
			threadID := uuid.New().String()
			detector := tp.pool.GetDeadlockDetector()
			detector.RegisterTask(threadID, "proof thread for example")
			defer detector.UnregisterTask(threadID)

			results <- tp.runOne(i, ex, examples)
		})
		if err != nil {
			wg.Done()
			return nil, err
		}
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	seen := make(map[string]bool)
	var deduped []HypothesisResult
	for r := range results {
		if !r.Proved {
			deduped = append(deduped, r)
			continue
		}
		key := canonicalKey(r.Clauses)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, r)
	}
	return deduped, nil
}

// runOne builds a fresh store for this thread, attempts positive, and
// checks every negative example against the resulting hypothesis
// before accepting it — a hypothesis that also proves a negative
// example is rejected outright, per the intersection/subtraction
// contract of the hypothesis accumulation rules.
func (tp *TopProgram) runOne(idx int, positive Example, all []Example) HypothesisResult {
	store := NewStore(tp.program)
	goal := positive.Build(store)

	preds := NewStaticPredicateTable(store.Symbols())
	engine := NewProofEngine(store, preds, tp.background, tp.metaRules, tp.config)

	for engine.Next(goal) {
		if tp.rejectedByNegatives(store, engine, all) {
			continue
		}
		clauses := engine.Hypothesis().Clauses()
		strs := make([]string, len(clauses))
		for i, c := range clauses {
			strs[i] = c.String(store)
		}
		return HypothesisResult{ExampleIndex: idx, Proved: true, Clauses: strs}
	}
	return HypothesisResult{ExampleIndex: idx, Proved: false}
}

// rejectedByNegatives reports whether the hypothesis currently proved
// by engine also proves any negative example. Each check builds the
// negative goal in the same store the positive proof ran in — a
// hypothesis clause's literals are store addresses private to that
// store, so checking against a different store's instance would read
// garbage — and truncates the query region back down afterward so the
// check leaves no trace on the positive proof's own bindings.
func (tp *TopProgram) rejectedByNegatives(store *Store, engine *ProofEngine, all []Example) bool {
	hypClauses := engine.Hypothesis().Clauses()
	combined := append(append([]Clause(nil), tp.background...), hypClauses...)

	for _, ex := range all {
		if ex.Positive {
			continue
		}
		mark := store.Len()
		goal := ex.Build(store)
		preds := NewStaticPredicateTable(store.Symbols())
		negEngine := NewProofEngine(store, preds, combined, nil, tp.config)
		proved := negEngine.Next(goal)
		negEngine.Abandon()
		store.Truncate(mark)
		if proved {
			return true
		}
	}
	return false
}

// canonicalKey builds a dedup key from a hypothesis's clause strings,
// independent of the order learning happened to produce them in.
func canonicalKey(clauses []string) string {
	sorted := append([]string(nil), clauses...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\n")
}
