package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lalithlochan/nimbus-agent/internal/llm"
	"github.com/lalithlochan/nimbus-agent/pkg/log"
)

// CallResult is the normalized outcome of one tool call.
// ID carries the correlation token the model issued; exactly one CallResult
// is produced per requested call, success or failure.
type CallResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// Dispatcher resolves tool calls against a registry and executes them.
// Every failure mode (unknown tool, bad arguments, handler error) is folded
// into an error CallResult so the agent loop can feed it back to the model
// instead of aborting the run.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a dispatcher over the given registry
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch executes a single tool call and returns its result.
// It never returns an error; the caller always gets a well-formed CallResult.
func (d *Dispatcher) Dispatch(ctx context.Context, call llm.ToolCall) CallResult {
	result := CallResult{
		ID:   call.ID,
		Name: call.Function.Name,
	}

	tool, exists := d.registry.Get(call.Function.Name)
	if !exists {
		result.Content = fmt.Sprintf("Tool %q not found", call.Function.Name)
		result.IsError = true
		return result
	}

	args := json.RawMessage(call.Function.Arguments)
	if missing, err := validateRequired(tool.Parameters(), args); err != nil {
		result.Content = fmt.Sprintf("Invalid arguments for tool %q: %v", call.Function.Name, err)
		result.IsError = true
		return result
	} else if len(missing) > 0 {
		result.Content = fmt.Sprintf("Missing required parameters for tool %q: %s",
			call.Function.Name, strings.Join(missing, ", "))
		result.IsError = true
		return result
	}

	toolResult, err := tool.Execute(ctx, args)
	if err != nil {
		result.Content = fmt.Sprintf("Tool execution error: %v", err)
		result.IsError = true
		return result
	}

	result.Content = toolResult.Content
	result.IsError = toolResult.IsError
	log.Debug("Tool %s dispatched: error=%v", call.Function.Name, result.IsError)
	return result
}

// validateRequired checks the call arguments against the "required" list of
// the tool's own parameter schema. Returns the sorted missing names, or an
// error when either the schema or the arguments cannot be parsed.
func validateRequired(schema, args json.RawMessage) ([]string, error) {
	var schemaDoc struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(schema, &schemaDoc); err != nil {
		return nil, fmt.Errorf("unparseable tool schema: %w", err)
	}
	if len(schemaDoc.Required) == 0 {
		return nil, nil
	}

	supplied := map[string]json.RawMessage{}
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, &supplied); err != nil {
			return nil, fmt.Errorf("arguments are not a JSON object: %w", err)
		}
	}

	var missing []string
	for _, name := range schemaDoc.Required {
		if _, ok := supplied[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing, nil
}
