package agent

import (
	"context"
	"fmt"

	"github.com/lalithlochan/nimbus-agent/internal/llm"
	"github.com/lalithlochan/nimbus-agent/internal/tools"
)

// Agent defines the interface for an agent that can execute requests
type Agent interface {
	// Execute runs the agent with the given request
	Execute(ctx context.Context, req Request) (*Result, error)

	// Close releases any resources held by the agent
	Close() error
}

// LLMAgent implements the Agent interface using an LLM with tool calling
type LLMAgent struct {
	client        *llm.Client
	registry      *tools.Registry
	maxIterations int
}

// NewLLMAgent creates a new LLM-based agent
func NewLLMAgent(llmConfig llm.Config, registry *tools.Registry, maxIterations int) (*LLMAgent, error) {
	client, err := llm.NewClient(&llmConfig)
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}
	if maxIterations <= 0 {
		maxIterations = 5
	}
	return &LLMAgent{
		client:        client,
		registry:      registry,
		maxIterations: maxIterations,
	}, nil
}

// Execute runs the agent with the given request
func (a *LLMAgent) Execute(ctx context.Context, req Request) (*Result, error) {
	orchestrator := NewOrchestrator(a.client, a.registry, a.maxIterations)
	return orchestrator.Run(ctx, req)
}

// Close releases any resources held by the agent
func (a *LLMAgent) Close() error {
	// No resources to release currently
	return nil
}
