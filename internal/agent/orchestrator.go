package agent

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lalithlochan/nimbus-agent/internal/llm"
	"github.com/lalithlochan/nimbus-agent/internal/tools"
	"github.com/lalithlochan/nimbus-agent/pkg/log"
)

// Orchestrator drives the tool-calling loop for a single run.
//
// Each run owns its conversation and iteration counter; the registry and
// LLM client are read-only and shared. The loop alternates between one
// outstanding LLM call and dispatching the batch of calls it requested,
// and terminates in an answer or in exhaustion of the iteration bound.
type Orchestrator struct {
	client        *llm.Client
	registry      *tools.Registry
	dispatcher    *tools.Dispatcher
	maxIterations int
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(client *llm.Client, registry *tools.Registry, maxIterations int) *Orchestrator {
	return &Orchestrator{
		client:        client,
		registry:      registry,
		dispatcher:    tools.NewDispatcher(registry),
		maxIterations: maxIterations,
	}
}

// Run executes the agent loop until the model answers, the iteration bound
// is hit, or ctx is cancelled. Cancellation is honored between iterations;
// a partially dispatched batch still lands in the transcript.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	maxIterations := o.maxIterations
	if req.MaxIterations > 0 {
		maxIterations = req.MaxIterations
	}

	result := &Result{
		RunID:     uuid.NewString(),
		ToolCalls: make([]ToolCallRecord, 0),
	}

	// Seed the conversation: exactly one system turn, one user turn.
	// The slice is append-only from here on.
	conversation := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: req.UserMessage},
	}

	toolDefs := o.registry.ToOpenAIFormat()

	for i := 0; i < maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			result.Transcript = conversation
			return result, fmt.Errorf("run %s aborted: %w", result.RunID, err)
		}

		result.Iterations++

		resp, err := o.client.ChatCompletionWithTools(ctx, conversation, toolDefs, nil)
		if err != nil {
			result.Transcript = conversation
			return result, fmt.Errorf("LLM call failed at iteration %d: %w", i+1, err)
		}
		if len(resp.Choices) == 0 {
			result.Transcript = conversation
			return result, fmt.Errorf("no choices in response at iteration %d", i+1)
		}

		assistantMsg := resp.Choices[0].Message
		assistantMsg.Role = "assistant"

		if len(assistantMsg.ToolCalls) == 0 {
			// Textual answer, no call requests: the run is done.
			conversation = append(conversation, assistantMsg)
			result.Answer = assistantMsg.Content
			result.Transcript = conversation
			log.Info("Run %s done after %d iteration(s), %d tool call(s)",
				result.RunID, result.Iterations, len(result.ToolCalls))
			return result, nil
		}

		// The assistant turn goes in before any results so the model's
		// correlation ids are on record for the tool turns to reference.
		conversation = append(conversation, assistantMsg)

		callResults := o.dispatchBatch(ctx, assistantMsg.ToolCalls)

		// One tool turn per request, in request order, failures included.
		for idx, callResult := range callResults {
			call := assistantMsg.ToolCalls[idx]
			result.ToolCalls = append(result.ToolCalls, ToolCallRecord{
				ID:        call.ID,
				ToolName:  call.Function.Name,
				Arguments: call.Function.Arguments,
				Result:    callResult.Content,
				IsError:   callResult.IsError,
			})
			conversation = append(conversation, llm.Message{
				Role:       "tool",
				Content:    callResult.Content,
				ToolCallID: call.ID,
			})
			log.Info("Run %s tool %s executed: error=%v", result.RunID, call.Function.Name, callResult.IsError)
		}
	}

	// Iteration bound hit without an answer.
	result.Answer = ExhaustedMessage
	result.Exhausted = true
	result.Transcript = conversation
	log.Warn("Run %s exhausted after %d iterations", result.RunID, result.Iterations)
	return result, nil
}

// dispatchBatch executes every call of one assistant turn. Dispatch fans
// out concurrently, but results land in an index-addressed slice so the
// caller appends them in the original request order.
func (o *Orchestrator) dispatchBatch(ctx context.Context, calls []llm.ToolCall) []tools.CallResult {
	results := make([]tools.CallResult, len(calls))

	g := new(errgroup.Group)
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			results[i] = o.dispatcher.Dispatch(ctx, call)
			return nil
		})
	}
	// Dispatch never returns an error; Wait only synchronizes.
	_ = g.Wait()

	return results
}
