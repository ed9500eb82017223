// Package permission implements the Permission Evaluator: a pure function
// of (descriptor, config, session approvals, mode) that classifies a tool
// call as Allow, Ask, or Deny.
package permission

import "github.com/jg-phare/toolcore/pkg/tools"

// Decision is the outcome of a permission evaluation.
type Decision string

const (
	Allow Decision = "allow"
	Ask   Decision = "ask"
	Deny  Decision = "deny"
)

// Mode is the global permission dial biasing the Ask/Allow boundary for
// broad tool categories.
type Mode string

const (
	ModeDefault  Mode = "Default"
	ModeAutoEdit Mode = "AutoEdit"
	ModeYolo     Mode = "Yolo"
	ModePlan     Mode = "Plan"
)

// Config is the three ordered rule lists an Evaluator consults. Rule
// strings are shell-style patterns matched against signatures. Config is
// a snapshot: callers replace the pointer wholesale on reload, they never
// mutate a live Config in place (spec §9, "Shared-mutable config").
type Config struct {
	Allow []string `json:"allow"`
	Ask   []string `json:"ask"`
	Deny  []string `json:"deny"`
}

// Descriptor is what the Evaluator is asked to classify.
type Descriptor struct {
	ToolName      string
	Kind          tools.Kind
	Params        map[string]any
	AffectedPaths []string
	Signature     string
}

// CheckResult is the tagged outcome of an evaluation.
type CheckResult struct {
	Decision    Decision
	MatchedRule string // e.g. "deny:<pattern>", "allow:<pattern>", "remembered:session", "mode:yolo"
	Reason      string
}

// Signature builds the canonical "<tool_name>:<content>" string used for
// rule matching and session memory.
func Signature(toolName, signatureContent string) string {
	return toolName + ":" + signatureContent
}
