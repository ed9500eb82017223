package permission

import "github.com/jg-phare/toolcore/pkg/tools"

// readlikeKinds are the kinds every mode's default override treats as
// inherently safe to auto-allow.
var readlikeKinds = map[tools.Kind]bool{
	tools.KindRead:     true,
	tools.KindSearch:   true,
	tools.KindReadOnly: true,
}

// modeOverride applies the mode override table from spec §4.2. It runs
// after the deny/allow lists and session approvals but before ask rules,
// and never overrides a Deny (callers only invoke this once deny/allow/
// session have all missed).
func modeOverride(mode Mode, kind tools.Kind) (CheckResult, bool) {
	switch mode {
	case ModeYolo:
		return CheckResult{Decision: Allow, MatchedRule: "mode:yolo", Reason: "Yolo mode allows all non-denied calls"}, true

	case ModeAutoEdit:
		if readlikeKinds[kind] {
			return CheckResult{Decision: Allow, MatchedRule: "mode:default:readonly", Reason: "read-only tool auto-allowed"}, true
		}
		if kind == tools.KindEdit {
			return CheckResult{Decision: Allow, MatchedRule: "mode:autoEdit:edit", Reason: "AutoEdit mode allows edit tools"}, true
		}
		return CheckResult{}, false

	case ModePlan:
		// Plan mode forces Ask for anything beyond read/search/readonly,
		// even when an allow rule would otherwise have matched (resolved
		// open question, see DESIGN.md).
		if readlikeKinds[kind] {
			return CheckResult{Decision: Allow, MatchedRule: "mode:default:readonly", Reason: "read-only tool auto-allowed"}, true
		}
		return CheckResult{Decision: Ask, MatchedRule: "mode:plan", Reason: "Plan mode requires confirmation for non-read-only tools"}, true

	case ModeDefault:
		fallthrough
	default:
		if readlikeKinds[kind] {
			return CheckResult{Decision: Allow, MatchedRule: "mode:default:readonly", Reason: "read-only tool auto-allowed"}, true
		}
		return CheckResult{}, false
	}
}

// planForcesAsk reports whether Plan mode should pre-empt an allow-rule
// match entirely for the given kind. Used by the evaluator to implement
// the resolved "Plan forces Ask regardless of Allow rule matches" choice.
func planForcesAsk(mode Mode, kind tools.Kind) bool {
	return mode == ModePlan && !readlikeKinds[kind]
}
