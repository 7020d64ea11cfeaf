package mil

// Config bounds and tunes one proof attempt: max_depth, max_clause,
// max_pred limits, and the debug-trace switch. Built via functional
// options, the convention the rest of this codebase's
// ambient stack follows for multi-field, mostly-defaulted structs.
type Config struct {
	MaxDepth uint32
	MaxClause uint32
	MaxPred  uint32
	Debug    bool
}

// DefaultConfig returns the package's baseline limits: generous enough
// for the worked family-relations examples, small enough to fail fast
// on a runaway derivation.
func DefaultConfig() Config {
	return Config{
		MaxDepth:  500,
		MaxClause: 64,
		MaxPred:   16,
		Debug:     false,
	}
}

// Option configures a Config in NewConfig.
type Option func(*Config)

// WithMaxDepth overrides the maximum proof-tree depth.
func WithMaxDepth(n uint32) Option {
	return func(c *Config) { c.MaxDepth = n }
}

// WithMaxClause overrides the maximum number of clauses a single
// hypothesis may accumulate.
func WithMaxClause(n uint32) Option {
	return func(c *Config) { c.MaxClause = n }
}

// WithMaxPred overrides the maximum number of invented predicates a
// single hypothesis may mint.
func WithMaxPred(n uint32) Option {
	return func(c *Config) { c.MaxPred = n }
}

// WithDebug turns on TRY/MATCH/UNDO trace logging.
func WithDebug(debug bool) Option {
	return func(c *Config) { c.Debug = debug }
}

// NewConfig builds a Config starting from DefaultConfig and applying
// opts in order.
func NewConfig(opts ...Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
