package mil

import (
	"os"

	"github.com/hashicorp/go-hclog"
)

// NewLogger returns the package's default structured logger: a named
// hclog sub-logger at debug level when debug is true, or a null logger
// when it is false, so a non-debug proof pays nothing for the TRY/
// MATCH/UNDO trace calls sprinkled through the proof engine.
func NewLogger(debug bool) hclog.Logger {
	if !debug {
		return hclog.NewNullLogger()
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "mil",
		Level:  hclog.Debug,
		Output: os.Stderr,
	})
}

// traceTry logs a goal about to be attempted against a choice.
func traceTry(log hclog.Logger, depth int, goal string, choice Choice) {
	log.Debug("try", "depth", depth, "goal", goal, "choice_kind", choiceKindString(choice.Kind), "clause", choice.ClauseIndex)
}

// traceMatch logs a successful unification.
func traceMatch(log hclog.Logger, depth int, goal, clauseKind string) {
	log.Debug("match", "depth", depth, "goal", goal, "clause_kind", clauseKind)
}

// traceUndo logs a backtrack step and how many envs it drained.
func traceUndo(log hclog.Logger, depth int, envsDrained int) {
	log.Debug("undo", "depth", depth, "envs_drained", envsDrained)
}

func choiceKindString(k ChoiceKind) string {
	switch k {
	case ChoiceBuiltin:
		return "builtin"
	case ChoiceClause:
		return "clause"
	case ChoiceInvent:
		return "invent"
	default:
		return "unknown"
	}
}
