// Command mil runs the resolution engine against a small worked
// family-relations scenario, demonstrating meta-interpretive learning
// of the ancestor relation from a handful of parent facts and a
// classic identity/chain meta-rule pair.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamestrewern/mil/pkg/mil"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mil",
		Short:         "mil resolves goals against a meta-interpretive learning engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	var debug bool
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable TRY/MATCH/UNDO trace logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newProveCmd(&debug))
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the engine version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), mil.Version)
			return nil
		},
	}
}

func newProveCmd(debug *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "prove",
		Short: "learn the ancestor relation from parent facts via MIL",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProve(cmd, *debug)
		},
	}
}

func runProve(cmd *cobra.Command, debug bool) error {
	syms := mil.NewSymbolTable()
	program := mil.NewProgramRegion(syms)
	scenario := buildFamilyScenario(syms, program)
	program.Freeze()

	config := mil.NewConfig(mil.WithDebug(debug), mil.WithMaxDepth(200), mil.WithMaxClause(16), mil.WithMaxPred(4))

	store := mil.NewStore(program)
	preds := mil.NewStaticPredicateTable(syms)
	engine := mil.NewProofEngine(store, preds, scenario.background, scenario.metaRules, config)

	goal := scenario.buildGoal(store)

	out := cmd.OutOrStdout()
	found := 0
	for engine.Next(goal) {
		found++
		fmt.Fprintf(out, "solution %d: %s\n", found, store.TermString(goal))
		for _, c := range engine.Hypothesis().Clauses() {
			fmt.Fprintf(out, "  learned: %s\n", c.String(store))
		}
	}
	if found == 0 {
		fmt.Fprintln(out, "no proof found")
	}
	return nil
}

// familyScenario bundles the background theory, meta-rules, and a
// closure to build the query goal in a freshly created store — the
// same shape pkg/mil.Example uses, kept private here since the CLI
// only ever resolves a single fixed scenario.
type familyScenario struct {
	background []mil.Clause
	metaRules  []mil.Clause
	buildGoal  func(*mil.Store) int
}

// buildFamilyScenario writes parent/2 facts and the identity/chain
// meta-rule pair into program, and returns a scenario asking whether
// tom is an ancestor of ann.
func buildFamilyScenario(syms *mil.SymbolTable, program *mil.ProgramRegion) familyScenario {
	t := mil.NewTemplateBuilder(program)

	parentSym := syms.Intern("parent")
	fact := func(a, b string) mil.Clause {
		head := t.Func(t.Con(parentSym), t.Con(syms.Intern(a)), t.Con(syms.Intern(b)))
		return mil.Clause{Kind: mil.ClauseProgram, Head: head}
	}
	background := []mil.Clause{
		fact("tom", "bob"),
		fact("tom", "liz"),
		fact("bob", "ann"),
		fact("bob", "pat"),
		fact("pat", "jim"),
	}

	// identity: P(X,Y) :- Q(X,Y)
	identityX, identityY := t.Var(), t.Var()
	identityHead := t.Func(t.Arg(0), identityX, identityY)
	identityBody := t.Func(t.Arg(1), identityX, identityY)
	identity := mil.Clause{Kind: mil.ClauseMeta, Head: identityHead, Body: []int{identityBody}}

	// chain: P(X,Y) :- Q(X,Z), R(Z,Y)
	chainX, chainY, chainZ := t.Var(), t.Var(), t.Var()
	chainHead := t.Func(t.Arg(0), chainX, chainY)
	chainBodyQ := t.Func(t.Arg(1), chainX, chainZ)
	chainBodyR := t.Func(t.Arg(2), chainZ, chainY)
	chain := mil.Clause{Kind: mil.ClauseMeta, Head: chainHead, Body: []int{chainBodyQ, chainBodyR}}

	metaRules := []mil.Clause{identity, chain}

	ancestorSym := syms.Intern("ancestor")
	tomSym := syms.Intern("tom")
	annSym := syms.Intern("ann")

	return familyScenario{
		background: background,
		metaRules:  metaRules,
		buildGoal: func(store *mil.Store) int {
			tomAddr := store.PushConst(tomSym)
			annAddr := store.PushConst(annSym)
			funcAddr, argAddrs := store.PushFunc(ancestorSym, 2)
			store.Bind([]mil.Binding{{Src: argAddrs[0], Tgt: tomAddr}, {Src: argAddrs[1], Tgt: annAddr}})
			return funcAddr
		},
	}
}
