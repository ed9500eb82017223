package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jg-phare/toolcore/pkg/hooks"
	"github.com/jg-phare/toolcore/pkg/lock"
	"github.com/jg-phare/toolcore/pkg/permission"
	"github.com/jg-phare/toolcore/pkg/tools"
)

// stageFunc is a custom, non-builtin stage registered via AddStage. It runs
// with the same short-circuit semantics as the seven builtin stages: once
// e.stopped() is true, no further stage (builtin or custom) runs.
type stageFunc func(ctx context.Context, e *Execution)

// builtin stage names, fixed by spec §4.4.
const (
	StageDiscovery           = "discovery"
	StagePermissionValidate  = "permission_validation"
	StagePreExecutionHooks   = "pre_execution_hooks"
	StageConfirmation        = "confirmation"
	StageExecution           = "execution"
	StagePostExecutionHooks  = "post_execution_hooks"
	StageFormatting          = "formatting"
)

// Pipeline is the top-level orchestrator: it carries a single tool call
// through the seven fixed stages, wrapping execution in the File Lock
// Coordinator for any tool that is not concurrency-safe (spec §4.3, §4.4).
type Pipeline struct {
	registry  *tools.Registry
	evaluator *permission.Evaluator
	hookRunner *hooks.Runner
	locks     *lock.Coordinator
	history   *History
	persist   PersistCallback
	eventSink EventSink

	stageOrder  []string
	customStage map[string]stageFunc
	stageMu     sync.RWMutex
}

// Option configures a Pipeline at construction time.
type Option func(*Pipeline)

// WithHookRunner attaches a hook Runner. Without one, S3/S6 are no-ops.
func WithHookRunner(r *hooks.Runner) Option {
	return func(p *Pipeline) { p.hookRunner = r }
}

// WithLockCoordinator attaches a File Lock Coordinator. Without one, a
// fresh unshared Coordinator is created, which is almost never what a
// caller running more than one Pipeline instance wants.
func WithLockCoordinator(c *lock.Coordinator) Option {
	return func(p *Pipeline) { p.locks = c }
}

// WithHistoryCapacity sets the ring buffer size backing History/Stats.
// Spec §9's Open Question on whether history survives pipeline
// reconstruction is resolved here: History is owned by the caller's
// process lifetime, not reset by constructing a new Pipeline value against
// the same Coordinator/Registry — a reloaded config is swapped into the
// existing Evaluator via SetConfig, not a new Pipeline, so history naturally
// persists across reloads. A caller that genuinely wants a clean slate
// constructs a fresh History explicitly via WithHistory.
func WithHistoryCapacity(capacity int) Option {
	return func(p *Pipeline) { p.history = NewHistory(capacity) }
}

// WithHistory attaches an existing History, letting a caller share one
// across Pipeline instances or explicitly reset it on reconstruction.
func WithHistory(h *History) Option {
	return func(p *Pipeline) { p.history = h }
}

// WithPersistCallback attaches the external config-service write-back used
// for Persistent-scope confirmations (spec §4.4, S4).
func WithPersistCallback(cb PersistCallback) Option {
	return func(p *Pipeline) { p.persist = cb }
}

// WithEventSink attaches an observer for pipeline lifecycle events.
func WithEventSink(sink EventSink) Option {
	return func(p *Pipeline) { p.eventSink = sink }
}

// New constructs a Pipeline over a tool registry and permission evaluator.
func New(registry *tools.Registry, evaluator *permission.Evaluator, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry:    registry,
		evaluator:   evaluator,
		locks:       lock.New(),
		history:     NewHistory(0),
		customStage: make(map[string]stageFunc),
		stageOrder: []string{
			StageDiscovery,
			StagePermissionValidate,
			StagePreExecutionHooks,
			StageConfirmation,
			StageExecution,
			StagePostExecutionHooks,
			StageFormatting,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Registry exposes the underlying tool registry, e.g. for building a
// caller-facing tool-list surface (spec §6.1).
func (p *Pipeline) Registry() *tools.Registry {
	return p.registry
}

// History returns up to limit of the most recently completed calls.
func (p *Pipeline) History(limit int) []HistoryEntry {
	return p.history.List(limit)
}

// Stats summarizes the retained call history.
func (p *Pipeline) Stats() Stats {
	return p.history.Stats()
}

// ClearHistory discards all retained history entries.
func (p *Pipeline) ClearHistory() {
	p.history.Clear()
	p.emit(Event{Kind: "history_cleared"})
}

// AddStage inserts a custom stage immediately after the named existing
// stage (builtin or custom). Passing "" inserts at the front.
func (p *Pipeline) AddStage(name string, after string, fn func(ctx context.Context, e *Execution)) {
	p.stageMu.Lock()
	defer p.stageMu.Unlock()

	p.customStage[name] = fn

	if after == "" {
		p.stageOrder = append([]string{name}, p.stageOrder...)
		return
	}
	for i, s := range p.stageOrder {
		if s == after {
			order := make([]string, 0, len(p.stageOrder)+1)
			order = append(order, p.stageOrder[:i+1]...)
			order = append(order, name)
			order = append(order, p.stageOrder[i+1:]...)
			p.stageOrder = order
			return
		}
	}
	p.stageOrder = append(p.stageOrder, name)
}

// RemoveStage removes a previously added custom stage. Builtin stages
// cannot be removed.
func (p *Pipeline) RemoveStage(name string) {
	p.stageMu.Lock()
	defer p.stageMu.Unlock()

	if _, ok := p.customStage[name]; !ok {
		return
	}
	delete(p.customStage, name)
	for i, s := range p.stageOrder {
		if s == name {
			p.stageOrder = append(p.stageOrder[:i], p.stageOrder[i+1:]...)
			break
		}
	}
}

func (p *Pipeline) emit(e Event) {
	if p.eventSink != nil {
		p.eventSink(e)
	}
}

// Execute runs a single tool call through the pipeline to completion.
func (p *Pipeline) Execute(ctx context.Context, toolName string, params map[string]any, ectx ExecutionContext) ResultEnvelope {
	e := &Execution{
		ID:       uuid.NewString(),
		ToolName: toolName,
		Params:   params,
		Context:  ectx,
	}

	p.emit(Event{Kind: "execution_started", ExecutionID: e.ID, ToolName: toolName})

	p.runStages(ctx, e)
	if e.stopped() {
		// An early abort skips the remaining stages, but its result still
		// gets the Formatting defaults and metadata stamp.
		p.format(e)
	}

	result := *e.Result
	p.history.Record(HistoryEntry{
		ExecutionID: e.ID,
		ToolName:    e.ToolName,
		Params:      e.Params,
		Result:      result,
		StartedAt:   e.StartedAt,
		EndedAt:     e.EndedAt,
	})

	if result.Success {
		p.emit(Event{Kind: "execution_completed", ExecutionID: e.ID, ToolName: toolName, Duration: e.EndedAt.Sub(e.StartedAt), Result: &result})
	} else {
		var err error
		if result.Error != nil {
			err = &resultErrWrap{result.Error}
		}
		p.emit(Event{Kind: "execution_failed", ExecutionID: e.ID, ToolName: toolName, Duration: e.EndedAt.Sub(e.StartedAt), Result: &result, Err: err})
	}

	return result
}

type resultErrWrap struct{ e *ResultError }

func (r *resultErrWrap) Error() string { return r.e.Message }

// runStages walks the stage order, stopping early only when a stage
// before Execution aborts the call outright (ToolNotFound,
// ValidationError, PermissionDenied, a blocking hook, or UserRejected).
// Execution's own result — success, failure, or cancellation — always
// continues on into Post-Execution Hooks and Formatting, per spec §4.4.
// Only the Execution stage runs inside the File Lock Coordinator, and only
// when the tool is not concurrency-safe (spec §4.3, §4.4).
func (p *Pipeline) runStages(ctx context.Context, e *Execution) {
	p.stageMu.RLock()
	order := make([]string, len(p.stageOrder))
	copy(order, p.stageOrder)
	p.stageMu.RUnlock()

	lockFrom := -1
	for i, name := range order {
		if name == StageExecution {
			lockFrom = i
			break
		}
	}

	for i := 0; i < len(order); i++ {
		if e.stopped() {
			return
		}
		name := order[i]
		p.emit(Event{Kind: "stage_started", ExecutionID: e.ID, ToolName: e.ToolName, StageName: name})

		if i == lockFrom && e.Tool != nil && !e.Tool.IsConcurrencySafe() {
			p.runLockedExecutionStage(ctx, e)
		} else {
			p.runStage(ctx, e, name)
		}

		p.emit(Event{Kind: "stage_completed", ExecutionID: e.ID, ToolName: e.ToolName, StageName: name})
	}
}

// runLockedExecutionStage wraps S5 in the File Lock Coordinator, acquiring
// every affected path in sorted order to avoid deadlocking against a
// concurrent call touching the same paths in a different order.
func (p *Pipeline) runLockedExecutionStage(ctx context.Context, e *Execution) {
	paths := sortedUnique(e.Invocation.AffectedPaths())
	if len(paths) == 0 {
		p.execute(ctx, e)
		return
	}
	_, _ = acquireAll(ctx, p.locks, paths, func(ctx context.Context) (struct{}, error) {
		p.execute(ctx, e)
		return struct{}{}, nil
	})
}

// acquireAll nests AcquireLock calls over paths, already sorted so two
// calls whose affected-path sets overlap always acquire in the same order.
func acquireAll(ctx context.Context, c *lock.Coordinator, paths []string, op func(context.Context) (struct{}, error)) (struct{}, error) {
	if len(paths) == 0 {
		return op(ctx)
	}
	return lock.AcquireLock(ctx, c, paths[0], func(ctx context.Context) (struct{}, error) {
		return acquireAll(ctx, c, paths[1:], op)
	})
}

func sortedUnique(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func (p *Pipeline) runStage(ctx context.Context, e *Execution, name string) {
	switch name {
	case StageDiscovery:
		p.discover(e)
	case StagePermissionValidate:
		p.permissionAndValidate(e)
	case StagePreExecutionHooks:
		p.preExecutionHooks(ctx, e)
	case StageConfirmation:
		p.confirm(e)
	case StageExecution:
		p.execute(ctx, e)
	case StagePostExecutionHooks:
		p.postExecutionHooks(ctx, e)
	case StageFormatting:
		p.format(e)
	default:
		p.stageMu.RLock()
		fn := p.customStage[name]
		p.stageMu.RUnlock()
		if fn != nil {
			fn(ctx, e)
		}
	}
}

// Request is one call in a batch submitted to ExecuteParallel/ExecuteAll.
type Request struct {
	ToolName string
	Params   map[string]any
	Context  ExecutionContext
}

// ExecuteParallel runs independent requests concurrently, bounded by
// maxConcurrency, mirroring the semaphore-and-waitgroup shape used for
// side-effect-free tool batches. Per-call exclusivity for non-concurrency-
// safe tools is still enforced by the File Lock Coordinator inside each
// call, so two requests that happen to touch the same path serialize
// there rather than at this layer (spec §5, "Batch execution").
func (p *Pipeline) ExecuteParallel(ctx context.Context, requests []Request, maxConcurrency int) []ResultEnvelope {
	if maxConcurrency <= 0 {
		maxConcurrency = 5
	}

	results := make([]ResultEnvelope, len(requests))
	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup

	for i, req := range requests {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, r Request) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = p.Execute(ctx, r.ToolName, r.Params, r.Context)
		}(i, req)
	}

	wg.Wait()
	return results
}

// ExecuteAll runs requests serially in order, as a thin convenience over
// Execute for callers that want simple sequential batching without the
// concurrency bookkeeping of ExecuteParallel (spec §5, "Batch execution").
func (p *Pipeline) ExecuteAll(ctx context.Context, requests []Request) []ResultEnvelope {
	results := make([]ResultEnvelope, len(requests))
	for i, req := range requests {
		results[i] = p.Execute(ctx, req.ToolName, req.Params, req.Context)
	}
	return results
}
