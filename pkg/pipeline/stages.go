package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jg-phare/toolcore/pkg/hooks"
	"github.com/jg-phare/toolcore/pkg/permission"
	"github.com/jg-phare/toolcore/pkg/tools"
)

// discover is S1: Discovery.
func (p *Pipeline) discover(e *Execution) {
	tool, ok := p.registry.Get(e.ToolName)
	if !ok {
		e.fail(ErrToolNotFound, fmt.Sprintf("tool %q is not registered", e.ToolName), nil)
		return
	}
	e.Tool = tool
}

// permissionAndValidate is S2: Permission & Validation.
func (p *Pipeline) permissionAndValidate(e *Execution) {
	invocation, err := e.Tool.Build(e.Params)
	if err != nil {
		e.fail(ErrValidationError, err.Error(), err)
		return
	}
	e.Invocation = invocation

	sigContent := e.Tool.ExtractSignatureContent(e.Params)
	e.Signature = permission.Signature(e.ToolName, sigContent)

	descriptor := permission.Descriptor{
		ToolName:      e.ToolName,
		Kind:          e.Tool.Kind(),
		Params:        e.Params,
		AffectedPaths: invocation.AffectedPaths(),
		Signature:     e.Signature,
	}

	result := p.evaluator.Evaluate(descriptor)
	e.CheckResult = result

	switch result.Decision {
	case permission.Deny:
		e.fail(ErrPermissionDenied, result.Reason, map[string]any{"matched_rule": result.MatchedRule})
	case permission.Ask:
		e.NeedsConfirmation = true
		e.ConfirmationReason = result.Reason
	case permission.Allow:
		// proceed
	}
}

// preExecutionHooks is S3: Pre-Execution Hooks.
func (p *Pipeline) preExecutionHooks(ctx context.Context, e *Execution) {
	if p.hookRunner == nil {
		return
	}

	input := &hooks.PreToolUseHookInput{
		BaseHookInput: hooks.BaseHookInput{SessionID: e.Context.SessionID},
		HookEventName: string(hooks.EventPreToolUse),
		ToolName:      e.ToolName,
		ToolInput:     e.Params,
		AffectedPaths: e.Invocation.AffectedPaths(),
	}

	results, err := p.hookRunner.Fire(ctx, hooks.EventPreToolUse, input)
	if err != nil {
		return // hook failure swallowed, spec §4.4 (S3)
	}

	for _, r := range results {
		if r.Decision == "deny" {
			msg := r.Message
			if msg == "" {
				msg = "denied by hook"
			}
			e.fail(ErrHookBlock, msg, nil)
			return
		}
		if r.AdditionalContext != "" {
			e.Invocation.AppendRuntimeNote(r.AdditionalContext)
		}
	}
}

// confirm is S4: Confirmation.
func (p *Pipeline) confirm(e *Execution) {
	if !e.NeedsConfirmation {
		return
	}

	handler := e.Context.ConfirmationHandler
	if handler == nil {
		// Non-interactive environment: auto-approve with a warning note,
		// preserving headless operation (spec §4.4, S4).
		e.autoApprovedHeadless = true
		return
	}

	response, err := handler.RequestConfirmation(ConfirmationRequest{
		Title:         fmt.Sprintf("Allow %s?", e.ToolName),
		Message:       e.ConfirmationReason,
		AffectedPaths: e.Invocation.AffectedPaths(),
	})
	if err != nil || !response.Approved {
		reason := "user declined"
		if response.Reason != "" {
			reason = response.Reason
		}
		e.fail(ErrUserRejected, reason, nil)
		return
	}

	switch response.Scope {
	case ScopeSession:
		p.evaluator.RememberSession(e.Signature)
	case ScopePersistent:
		p.evaluator.RememberSession(e.Signature)
		pattern := e.Tool.AbstractPermissionRule(e.Params)
		p.evaluator.RememberPersistent(e.ToolName, pattern)
		if p.persist != nil {
			// Persistence failure is logged and swallowed, never fails
			// the call (spec §4.4, S4 and §7).
			if err := p.persist(e.ToolName, pattern); err != nil {
				log.Printf("pipeline: persisting rule %q for %s failed: %v", pattern, e.ToolName, err)
			}
		}
	}
}

// execute is S5: Execution.
func (p *Pipeline) execute(ctx context.Context, e *Execution) {
	e.StartedAt = time.Now()
	output, err := p.runInvocation(ctx, e)
	e.EndedAt = time.Now()

	if ctx.Err() != nil {
		e.Result = &ResultEnvelope{
			Success:        false,
			DisplayContent: "operation cancelled",
			LLMContent:     "operation cancelled",
			Metadata:       map[string]any{},
			Error:          &ResultError{Kind: ErrCancelled, Message: ctx.Err().Error()},
		}
		return
	}
	if err != nil {
		e.Result = &ResultEnvelope{
			Success:        false,
			DisplayContent: err.Error(),
			LLMContent:     err.Error(),
			Metadata:       map[string]any{},
			Error:          &ResultError{Kind: ErrExecutionError, Message: err.Error()},
		}
		return
	}

	e.Result = &ResultEnvelope{
		Success:        !output.IsError,
		DisplayContent: output.Content,
		LLMContent:     output.Content,
		Metadata:       map[string]any{},
	}
	if output.IsError {
		e.Result.Error = &ResultError{Kind: ErrExecutionError, Message: output.Content}
	}
}

// runInvocation recovers a panicking invocation and converts it to an
// ExecutionError, per spec §4.4 (S5): "never let it escape the pipeline."
func (p *Pipeline) runInvocation(ctx context.Context, e *Execution) (out tools.ToolOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return e.Invocation.Execute(ctx, e.Context.ProgressSink)
}

// postExecutionHooks is S6: Post-Execution Hooks.
func (p *Pipeline) postExecutionHooks(ctx context.Context, e *Execution) {
	if p.hookRunner == nil || e.Result == nil {
		return
	}

	var event hooks.Event
	var input any
	if e.Result.Success {
		event = hooks.EventPostToolUseSuccess
		input = &hooks.PostToolUseHookInput{
			BaseHookInput: hooks.BaseHookInput{SessionID: e.Context.SessionID},
			HookEventName: string(event),
			ToolName:      e.ToolName,
			ToolInput:     e.Params,
			ToolResponse:  e.Result.LLMContent,
		}
	} else {
		event = hooks.EventPostToolUseFailure
		msg := ""
		if e.Result.Error != nil {
			msg = e.Result.Error.Message
		}
		input = &hooks.PostToolUseFailureHookInput{
			BaseHookInput: hooks.BaseHookInput{SessionID: e.Context.SessionID},
			HookEventName: string(event),
			ToolName:      e.ToolName,
			ToolInput:     e.Params,
			Error:         msg,
		}
	}

	results, err := p.hookRunner.Fire(ctx, event, input)
	if err != nil {
		return
	}
	for _, r := range results {
		if r.AdditionalContext != "" {
			e.Result.LLMContent += "\n" + r.AdditionalContext
		}
		if r.SuppressOutput != nil && *r.SuppressOutput {
			e.Result.DisplayContent = "[output suppressed]"
		}
	}
}

// format is S7: Formatting.
func (p *Pipeline) format(e *Execution) {
	if e.Result == nil {
		e.Result = &ResultEnvelope{Metadata: map[string]any{}}
	}
	if e.Result.Metadata == nil {
		e.Result.Metadata = map[string]any{}
	}
	if e.Result.LLMContent == "" && e.Result.DisplayContent != "" {
		e.Result.LLMContent = e.Result.DisplayContent
	}
	if e.Result.DisplayContent == "" && e.Result.LLMContent != "" {
		e.Result.DisplayContent = e.Result.LLMContent
	}
	if e.Result.LLMContent == "" {
		if e.Result.Success {
			e.Result.LLMContent = "ok"
		} else {
			e.Result.LLMContent = "failed"
		}
	}
	if e.Result.DisplayContent == "" {
		e.Result.DisplayContent = e.Result.LLMContent
	}

	e.Result.Metadata["execution_id"] = e.ID
	e.Result.Metadata["tool_name"] = e.ToolName
	e.Result.Metadata["timestamp"] = e.EndedAt
	e.Result.Metadata["duration"] = e.EndedAt.Sub(e.StartedAt)
	if e.autoApprovedHeadless {
		e.Result.Metadata["warning"] = "auto-approved in headless mode (no confirmation handler)"
	}
}
