package agent

import (
	"github.com/lalithlochan/nimbus-agent/internal/llm"
)

// ExhaustedMessage is the fixed answer of a run that hit its iteration
// bound. It is never model-generated; a partial answer is never fabricated.
const ExhaustedMessage = "Max iterations reached. Please try again with a simpler request."

// DefaultSystemPrompt seeds every run's conversation.
const DefaultSystemPrompt = "You are Nimbus AI, an assistant that manages notifications. " +
	"You can create notifications, check their status, list recent notifications, " +
	"and inspect or retry permanently failed ones. " +
	"Use UUIDs: tenant_id=00000000-0000-0000-0000-000000000001, " +
	"user_id=00000000-0000-0000-0000-000000000002 as defaults. " +
	"Be concise and friendly."

// Request represents a request to the agent
type Request struct {
	// SystemPrompt is the system prompt to set context.
	// Empty uses DefaultSystemPrompt.
	SystemPrompt string

	// UserMessage is the user's natural-language request
	UserMessage string

	// MaxIterations is the maximum number of tool-calling iterations.
	// Zero uses the agent's configured bound.
	MaxIterations int
}

// Result represents the terminal outcome of a run
type Result struct {
	// RunID identifies the run in logs and history
	RunID string

	// Answer is the final text: the model's answer, or ExhaustedMessage
	// when the iteration bound was hit
	Answer string

	// Exhausted distinguishes an iteration-bound termination from a
	// normal answer
	Exhausted bool

	// Iterations is the number of LLM calls made
	Iterations int

	// ToolCalls records every dispatched call in request order
	ToolCalls []ToolCallRecord

	// Transcript is the full conversation, in append order
	Transcript []llm.Message
}

// ToolCallRecord records a single tool call and its result
type ToolCallRecord struct {
	// ID is the correlation id the model issued for this call
	ID string

	// ToolName is the name of the tool that was called
	ToolName string

	// Arguments is the JSON arguments passed to the tool
	Arguments string

	// Result is the output fed back to the model
	Result string

	// IsError indicates if the dispatch resulted in an error
	IsError bool
}
