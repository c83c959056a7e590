package agent

import (
	"context"
	"encoding/json"

	"github.com/healthylinkx/chatbot/internal/errs"
	"github.com/healthylinkx/chatbot/internal/llm"
	"github.com/healthylinkx/chatbot/internal/tools"
	"github.com/healthylinkx/chatbot/pkg/log"
)

// Orchestrator manages the model/tool loop. It holds no per-invocation
// state and is safe for concurrent use.
type Orchestrator struct {
	adapter   ModelAdapter
	invoker   ModelInvoker
	tools     ToolDispatcher
	maxRounds int
}

// NewOrchestrator creates a new orchestrator. A non-positive maxRounds
// selects DefaultMaxToolRounds.
func NewOrchestrator(adapter ModelAdapter, invoker ModelInvoker, dispatcher ToolDispatcher, maxRounds int) *Orchestrator {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxToolRounds
	}
	return &Orchestrator{
		adapter:   adapter,
		invoker:   invoker,
		tools:     dispatcher,
		maxRounds: maxRounds,
	}
}

func (o *Orchestrator) Execute(ctx context.Context, req Request) (*Result, error) {
	return o.Run(ctx, req)
}

// Run drives the conversation until the model returns a terminal outcome.
// On error the returned Result still carries the conversation accumulated so
// far; Answer is empty.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	result := &Result{
		Conversation: req.Messages.Clone(),
		ToolCalls:    make([]ToolCallRecord, 0),
	}

	for toolRounds := 0; ; {
		if err := errs.FromContext(ctx); err != nil {
			return result, err
		}

		outcome, err := o.step(ctx, result, req.Params)
		if err != nil {
			return result, err
		}

		content, err := outcome.Serialize()
		if err != nil {
			return result, errs.Wrap(err, errs.KindCollaborator, "serialize model outcome")
		}
		result.Conversation = append(result.Conversation, llm.Message{Role: llm.RoleAssistant, Content: content})

		if outcome.Kind == llm.OutcomeTerminal {
			result.Answer = outcome.Text
			log.Info("Conversation finished after %d model rounds and %d tool calls", result.Rounds, len(result.ToolCalls))
			return result, nil
		}

		if toolRounds >= o.maxRounds {
			log.Warn("Model requested tool %s after %d tool rounds, aborting", outcome.Call.Name, toolRounds)
			return result, ErrToolRoundsExceeded
		}
		toolRounds++

		turn, err := o.runTool(ctx, result, outcome.Call)
		if err != nil {
			return result, err
		}
		result.Conversation = append(result.Conversation, turn)
	}
}

// step performs one build → invoke → parse cycle.
func (o *Orchestrator) step(ctx context.Context, result *Result, params llm.GenerationParams) (llm.Outcome, error) {
	request, err := o.adapter.BuildRequest(result.Conversation, params)
	if err != nil {
		return llm.Outcome{}, err
	}

	result.Rounds++
	log.Debug("Model round %d with %d turns", result.Rounds, len(result.Conversation))
	raw, err := o.invoker.Invoke(ctx, request)
	if err != nil {
		return llm.Outcome{}, err
	}
	return o.adapter.ParseResponse(raw)
}

func (o *Orchestrator) runTool(ctx context.Context, result *Result, call *llm.ToolCall) (llm.Message, error) {
	res, err := o.tools.Invoke(ctx, call.Name, call.Arguments)
	if err != nil {
		return llm.Message{}, err
	}
	result.ToolCalls = append(result.ToolCalls, ToolCallRecord{
		CallID:    call.ID,
		ToolName:  call.Name,
		Arguments: call.Arguments,
		Status:    res.Status,
	})

	payload, err := json.Marshal([]toolResultBlock{{
		Type:      "tool_result",
		ToolUseID: call.ID,
		Status:    res.Status,
		Content:   toolContent(res),
	}})
	if err != nil {
		return llm.Message{}, errs.Wrap(err, errs.KindCollaborator, "serialize tool result")
	}
	return llm.Message{Role: llm.RoleUser, Content: string(payload)}, nil
}

func toolContent(res tools.Result) any {
	if res.Status == tools.StatusSuccess {
		if res.Records == nil {
			return []any{}
		}
		return res.Records
	}
	if res.Error != nil {
		return []any{res.Error}
	}
	return []any{}
}

func validate(req Request) error {
	if len(req.Messages) == 0 {
		return errs.InvalidInput("messages should be a non-empty array")
	}
	for i, m := range req.Messages {
		if !m.Role.Valid() {
			return errs.InvalidInput("unsupported role").WithContext("index", i).WithContext("role", string(m.Role))
		}
	}
	if err := req.Params.Validate(); err != nil {
		return errs.Wrap(err, errs.KindValidation, "invalid generation parameters")
	}
	return nil
}
