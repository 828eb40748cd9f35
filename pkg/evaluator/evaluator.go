package evaluator

// Package evaluator implements the expression evaluation engine and its
// standard library.
//
// Expressions are trees of *types.Expression nodes, each bound to an
// operator definition from the registry. The Evaluator facade adds what a
// host usually wants around the bare TryEvaluate call:
//   - Parsing with an optional LRU cache of parsed trees
//   - Custom functions registered next to the built-ins
//   - Structured logging, OpenTelemetry metrics and spans
//   - Concurrent evaluation of independent expressions (EvalMany)
//
// # Example
//
//	ev := evaluator.New(evaluator.WithCaching(true))
//	result, err := ev.Eval(ctx, "if(turn.count > 3, 'done', 'continue')", state, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandrolain/goexpr/pkg/cache"
	"github.com/sandrolain/goexpr/pkg/functions"
	"github.com/sandrolain/goexpr/pkg/memory"
	"github.com/sandrolain/goexpr/pkg/observability"
	"github.com/sandrolain/goexpr/pkg/parser"
	"github.com/sandrolain/goexpr/pkg/types"
)

// Evaluator parses and evaluates expressions.
type Evaluator struct {
	opts      EvalOptions
	logger    *slog.Logger
	cache     *cache.Cache                  // non-nil when Caching is enabled
	customOps map[string]*types.OperatorDef // user-registered custom functions
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
}

// EvalOptions configures evaluator behavior.
type EvalOptions struct {
	// Caching enables parsed expression caching keyed by source text.
	Caching bool
	// CacheSize sets the maximum number of cached expressions.
	// Only used when Caching is true and no explicit Cache is provided.
	// Defaults to 256.
	CacheSize int
	// Cache is a custom expression cache. If non-nil, Caching is implicitly enabled.
	Cache *cache.Cache
	// Concurrency lets EvalMany evaluate read-only expressions in parallel.
	Concurrency bool
	// MaxDepth limits parser nesting.
	MaxDepth int
	// Debug logs every evaluation.
	Debug bool
	// Logger for structured logging.
	Logger *slog.Logger
	// Locale is applied when a call passes options without one.
	Locale string
	// Metrics records OpenTelemetry metrics through the global provider.
	Metrics bool
	// MetricsRecorder overrides the recorder used when Metrics is true.
	MetricsRecorder observability.MetricsRecorder
	// Tracing emits a span per evaluation through the global provider.
	Tracing bool
	// SpanManager overrides the span manager used when Tracing is true.
	SpanManager observability.SpanManager
	// CustomFunctions holds user-defined functions to register with the evaluator.
	CustomFunctions []functions.CustomFunctionDef
}

// defaultConcurrency is false on WebAssembly targets; see evaluator_wasm.go.
var defaultConcurrency = true

// New creates a new Evaluator.
func New(opts ...EvalOption) *Evaluator {
	options := EvalOptions{
		Concurrency: defaultConcurrency,
		MaxDepth:    parser.DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		c = cache.New(options.CacheSize)
	}

	var metrics observability.MetricsRecorder = observability.NoopMetrics{}
	if options.Metrics {
		metrics = options.MetricsRecorder
		if metrics == nil {
			metrics = observability.NewMetricsRecorder()
		}
	}

	var spans observability.SpanManager = observability.NoopSpanManager{}
	if options.Tracing {
		spans = options.SpanManager
		if spans == nil {
			spans = observability.NewSpanManager()
		}
	}

	customOps := make(map[string]*types.OperatorDef, len(options.CustomFunctions))
	for _, cfd := range options.CustomFunctions {
		if err := cfd.Validate(); err != nil {
			options.Logger.Warn("skipping custom function", slog.String("error", err.Error()))
			continue
		}
		if _, builtin := LookupBuiltin(cfd.Name); builtin {
			options.Logger.Warn("skipping custom function that shadows a built-in",
				slog.String("name", cfd.Name))
			continue
		}
		customOps[cfd.Name] = customOperator(cfd)
	}

	return &Evaluator{
		opts:      options,
		logger:    options.Logger,
		cache:     c,
		customOps: customOps,
		metrics:   metrics,
		spans:     spans,
	}
}

func customOperator(cfd functions.CustomFunctionDef) *types.OperatorDef {
	minArgs, maxArgs := cfd.Arity()
	fn := cfd.Fn
	return &types.OperatorDef{
		Name:       cfd.Name,
		ReturnType: cfd.Returns(),
		Evaluate: ApplyWithError(func(args []any) (any, error) {
			return fn(args...)
		}, nil),
		Validate: validateArity(minArgs, maxArgs, types.ReturnAny),
	}
}

// Cache returns the expression cache, or nil if caching is disabled.
func (e *Evaluator) Cache() *cache.Cache {
	return e.cache
}

// Lookup resolves built-ins first, then this evaluator's custom functions.
func (e *Evaluator) Lookup(name string) (*types.OperatorDef, bool) {
	if def, ok := LookupBuiltin(name); ok {
		return def, true
	}
	def, ok := e.customOps[name]
	return def, ok
}

// Parse turns source text into a validated expression tree.
func (e *Evaluator) Parse(text string) (*types.Expression, error) {
	parse := func(text string) (*types.Expression, error) {
		return parser.Parse(text, parser.WithLookup(e.Lookup), parser.WithMaxDepth(e.opts.MaxDepth))
	}
	var (
		expr *types.Expression
		err  error
	)
	if e.cache != nil {
		var hit bool
		expr, hit, err = e.cache.Lookup(text, parse)
		e.metrics.RecordCacheLookup(context.Background(), hit)
	} else {
		expr, err = parse(text)
	}
	if err != nil {
		observability.LogParseError(e.logger, text, err)
		return nil, err
	}
	return expr, nil
}

// MakeExpression builds and validates a node against this evaluator's
// registry, so custom functions can be used too.
func (e *Evaluator) MakeExpression(kind string, children ...*types.Expression) (*types.Expression, error) {
	return makeWith(e.Lookup, kind, children...)
}

// Evaluate runs expr against state. state may be a types.MemoryView or any
// Go value (maps, slices, structs), which is wrapped in a
// memory.SimpleObjectMemory. A nil opts uses defaults.
//
// The context only carries tracing; evaluation itself is synchronous and
// not cancellable.
func (e *Evaluator) Evaluate(ctx context.Context, expr *types.Expression, state any, opts *types.Options) (any, error) {
	if expr == nil {
		return nil, fmt.Errorf("invalid expression")
	}
	opts = e.callOptions(opts)

	// Rendering walks the whole tree, so it happens only when a span, an
	// error log or a debug log needs the text.
	var text string
	if e.opts.Tracing {
		text = expr.String()
	}
	_, span := e.spans.StartEvaluationSpan(ctx, text, expr.Kind())
	done := observability.TimedOperation()
	start := time.Now()

	result, err := expr.TryEvaluate(memory.Wrap(state), opts)

	e.spans.EndSpanWithError(span, err)
	e.metrics.RecordEvaluation(ctx, expr.Kind(), time.Since(start), err)
	if err != nil {
		if text == "" {
			text = expr.String()
		}
		observability.LogEvaluationError(e.logger, text, err, done())
		return nil, err
	}
	if e.opts.Debug {
		if text == "" {
			text = expr.String()
		}
		observability.LogEvaluationComplete(e.logger, text, done())
	}
	return result, nil
}

// Eval parses text and evaluates it.
func (e *Evaluator) Eval(ctx context.Context, text string, state any, opts *types.Options) (any, error) {
	expr, err := e.Parse(text)
	if err != nil {
		return nil, err
	}
	return e.Evaluate(ctx, expr, state, opts)
}

// Result pairs the outcome of one expression in EvalMany.
type Result struct {
	Value any
	Err   error
}

// EvalMany evaluates independent expressions against the same state and
// returns the results in input order. When concurrency is enabled and no
// expression writes to state, they run in parallel.
func (e *Evaluator) EvalMany(ctx context.Context, exprs []*types.Expression, state any, opts *types.Options) []Result {
	results := make([]Result, len(exprs))
	view := memory.Wrap(state)

	if !e.opts.Concurrency || len(exprs) < 2 || anyWrites(exprs) {
		for i, expr := range exprs {
			results[i].Value, results[i].Err = e.Evaluate(ctx, expr, view, opts)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, expr := range exprs {
		wg.Add(1)
		go func(i int, expr *types.Expression) {
			defer wg.Done()
			results[i].Value, results[i].Err = e.Evaluate(ctx, expr, view, opts)
		}(i, expr)
	}
	wg.Wait()
	return results
}

// anyWrites reports whether some expression may write to state.
func anyWrites(exprs []*types.Expression) bool {
	var writes func(*types.Expression) bool
	writes = func(expr *types.Expression) bool {
		if expr == nil {
			return false
		}
		if expr.Kind() == types.KindSetPathToValue {
			return true
		}
		for _, child := range expr.Children() {
			if writes(child) {
				return true
			}
		}
		return false
	}
	for _, expr := range exprs {
		if writes(expr) {
			return true
		}
	}
	return false
}

func (e *Evaluator) callOptions(opts *types.Options) *types.Options {
	if opts == nil {
		opts = types.NewOptions()
		opts.Locale = e.opts.Locale
		return opts
	}
	if opts.Locale == "" && e.opts.Locale != "" {
		return opts.WithLocale(e.opts.Locale)
	}
	return opts
}

// EvalOption configures evaluation behavior.
type EvalOption func(*EvalOptions)

// WithCaching enables or disables parsed expression caching.
// When enabled, a default LRU cache of 256 entries is created.
// To control the cache size use WithCacheSize; to supply your own cache use WithCache.
func WithCaching(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Caching = enabled
	}
}

// WithCacheSize sets the maximum number of cached expressions.
// Only effective when combined with WithCaching(true).
func WithCacheSize(size int) EvalOption {
	return func(opts *EvalOptions) {
		opts.CacheSize = size
	}
}

// WithCache attaches an external expression cache.
// The evaluator will use this cache regardless of the Caching flag.
func WithCache(c *cache.Cache) EvalOption {
	return func(opts *EvalOptions) {
		opts.Cache = c
	}
}

// WithConcurrency enables or disables parallel evaluation in EvalMany.
func WithConcurrency(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Concurrency = enabled
	}
}

// WithMaxDepth sets the maximum parser nesting depth.
func WithMaxDepth(depth int) EvalOption {
	return func(opts *EvalOptions) {
		opts.MaxDepth = depth
	}
}

// WithDebug enables or disables debug logging.
func WithDebug(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Debug = enabled
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EvalOption {
	return func(opts *EvalOptions) {
		opts.Logger = logger
	}
}

// WithLocale sets the default locale for calls that do not specify one.
func WithLocale(locale string) EvalOption {
	return func(opts *EvalOptions) {
		opts.Locale = locale
	}
}

// WithMetrics enables OpenTelemetry metrics.
func WithMetrics(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Metrics = enabled
	}
}

// WithMetricsRecorder enables metrics using r.
func WithMetricsRecorder(r observability.MetricsRecorder) EvalOption {
	return func(opts *EvalOptions) {
		opts.Metrics = true
		opts.MetricsRecorder = r
	}
}

// WithTracing enables OpenTelemetry spans.
func WithTracing(enabled bool) EvalOption {
	return func(opts *EvalOptions) {
		opts.Tracing = enabled
	}
}

// WithSpanManager enables tracing using sm.
func WithSpanManager(sm observability.SpanManager) EvalOption {
	return func(opts *EvalOptions) {
		opts.Tracing = true
		opts.SpanManager = sm
	}
}

// WithCustomFunction registers user-defined functions with the evaluator.
// Functions whose name collides with a built-in are skipped.
//
// Example:
//
//	evaluator.New(evaluator.WithCustomFunction(functions.CustomFunctionDef{
//	    Name: "double", MinArgs: 1, MaxArgs: 1,
//	    Fn: func(args ...any) (any, error) { return args[0].(int64) * 2, nil },
//	}))
func WithCustomFunction(defs ...functions.CustomFunctionDef) EvalOption {
	return func(opts *EvalOptions) {
		opts.CustomFunctions = append(opts.CustomFunctions, defs...)
	}
}
