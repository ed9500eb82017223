package permission

import (
	"sync"
)

// Evaluator is a pure function of (descriptor, config, session approvals,
// mode) → CheckResult, per spec §4.2. It holds no tool-execution state of
// its own; hooks and confirmation live in the pipeline, not here.
type Evaluator struct {
	mu sync.RWMutex

	config *Config
	mode   Mode

	sessionApprovals map[string]bool
	// persistentPatterns holds abstract_permission_rule patterns accepted
	// with Persistent scope, so a later call matching the broader pattern
	// (not the literal signature) is attributed to "remembered:persistent"
	// rather than leaking the pattern back as if config-authored.
	persistentPatterns map[string]string // pattern -> owning tool name
}

// NewEvaluator constructs an Evaluator over the given config snapshot and
// mode. Config is swapped wholesale via SetConfig on reload; it is never
// mutated in place.
func NewEvaluator(config *Config, mode Mode) *Evaluator {
	if config == nil {
		config = &Config{}
	}
	return &Evaluator{
		config:             config,
		mode:               mode,
		sessionApprovals:   make(map[string]bool),
		persistentPatterns: make(map[string]string),
	}
}

// SetConfig atomically replaces the config snapshot. In-flight Evaluate
// calls that already read the old pointer keep running against it.
func (e *Evaluator) SetConfig(config *Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = config
}

// SetMode changes the active permission mode.
func (e *Evaluator) SetMode(mode Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = mode
}

// Mode returns the current permission mode.
func (e *Evaluator) Mode() Mode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mode
}

// RememberSession records signature as approved for the lifetime of the
// process (or until ClearSessionApprovals is called). Spec §4.4 (S4).
func (e *Evaluator) RememberSession(signature string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessionApprovals[signature] = true
}

// RememberPersistent records an abstracted pattern as persistently
// approved for toolName, so future matches against the broader pattern
// report "remembered:persistent" instead of a literal rule string.
func (e *Evaluator) RememberPersistent(toolName, pattern string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.persistentPatterns[toolName+"\x00"+pattern] = toolName
}

// ClearSessionApprovals discards all session-remembered approvals.
func (e *Evaluator) ClearSessionApprovals() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessionApprovals = make(map[string]bool)
}

// Evaluate classifies descriptor per spec §4.2's six-step order, after
// the dangerous-path guard (which short-circuits independently of rules).
func (e *Evaluator) Evaluate(d Descriptor) CheckResult {
	if path, dangerous := dangerousPathGuard(d.AffectedPaths); dangerous {
		return CheckResult{
			Decision:    Deny,
			MatchedRule: "dangerous-path-guard",
			Reason:      "refusing to operate on protected path " + path,
		}
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	signature := d.Signature
	if signature == "" {
		signature = Signature(d.ToolName, "")
	}

	// Step 1: deny list, highest priority, always wins.
	if pattern, ok := firstMatch(e.config.Deny, signature, d.ToolName); ok {
		return CheckResult{Decision: Deny, MatchedRule: "deny:" + pattern, Reason: "matched deny rule"}
	}

	forceAsk := planForcesAsk(e.mode, d.Kind)

	// Step 2: allow list — Plan mode skips this for non-read-like kinds
	// (resolved open question: Plan forces Ask regardless of Allow
	// matches; see DESIGN.md).
	if !forceAsk {
		if pattern, ok := firstMatch(e.config.Allow, signature, d.ToolName); ok {
			return CheckResult{Decision: Allow, MatchedRule: "allow:" + pattern, Reason: "matched allow rule"}
		}

		// Step 3: session-remembered approvals.
		if e.sessionApprovals[signature] {
			return CheckResult{Decision: Allow, MatchedRule: "remembered:session", Reason: "approved earlier this session"}
		}

		// Persisted-rule attribution: a Persistent-scope pattern accepted
		// earlier now matches this call's broader abstraction.
		if owner, ok := e.matchPersistent(d, signature); ok {
			_ = owner
			return CheckResult{Decision: Allow, MatchedRule: "remembered:persistent", Reason: "approved earlier and persisted"}
		}
	}

	// Step 4: mode override.
	if result, ok := modeOverride(e.mode, d.Kind); ok {
		return result
	}

	// Step 5: ask list.
	if pattern, ok := firstMatch(e.config.Ask, signature, d.ToolName); ok {
		return CheckResult{Decision: Ask, MatchedRule: "ask:" + pattern, Reason: "matched ask rule"}
	}

	// Step 6: default.
	return CheckResult{Decision: Ask, MatchedRule: "default", Reason: "no rule matched; asking by default"}
}

// matchPersistent checks whether any persisted abstract pattern for this
// tool matches signature.
func (e *Evaluator) matchPersistent(d Descriptor, signature string) (string, bool) {
	for key, toolName := range e.persistentPatterns {
		if toolName != d.ToolName {
			continue
		}
		idx := len(toolName) + 1 // skip "toolName\x00"
		if idx > len(key) {
			continue
		}
		pattern := key[idx:]
		if matchSignature(pattern, signature, d.ToolName) {
			return toolName, true
		}
	}
	return "", false
}
