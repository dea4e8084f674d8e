package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lalithlochan/nimbus-agent/internal/llm"
)

func newCall(id, name, arguments string) llm.ToolCall {
	return llm.ToolCall{
		ID:   id,
		Type: "function",
		Function: llm.ToolCallFunction{
			Name:      name,
			Arguments: arguments,
		},
	}
}

func TestDispatch_UnknownToolIsFailureResult(t *testing.T) {
	t.Parallel()

	dispatcher := NewDispatcher(NewRegistry())
	result := dispatcher.Dispatch(context.Background(), newCall("call_1", "nonexistent", `{}`))

	assert.Equal(t, "call_1", result.ID)
	assert.Equal(t, "nonexistent", result.Name)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "not found")
}

func TestDispatch_MissingRequiredSkipsHandler(t *testing.T) {
	t.Parallel()

	invoked := false
	registry := NewRegistry()
	require.NoError(t, registry.Register(stubTool{
		name:   "notify",
		schema: `{"type":"object","properties":{"recipient":{"type":"string"},"channel":{"type":"string"}},"required":["recipient","channel"]}`,
		execute: func(ctx context.Context, args json.RawMessage) (ToolResult, error) {
			invoked = true
			return ToolResult{Content: "sent"}, nil
		},
	}))

	dispatcher := NewDispatcher(registry)
	result := dispatcher.Dispatch(context.Background(), newCall("call_2", "notify", `{"channel":"email"}`))

	assert.False(t, invoked, "handler must not run with missing required parameters")
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "recipient")
	assert.NotContains(t, result.Content, "channel,")
}

func TestDispatch_MissingSeveralNamesAll(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	require.NoError(t, registry.Register(stubTool{
		name:   "notify",
		schema: `{"type":"object","required":["recipient","channel"]}`,
	}))

	dispatcher := NewDispatcher(registry)
	result := dispatcher.Dispatch(context.Background(), newCall("call_3", "notify", `{}`))

	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "channel, recipient")
}

func TestDispatch_MalformedArguments(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	require.NoError(t, registry.Register(stubTool{
		name:   "notify",
		schema: `{"type":"object","required":["recipient"]}`,
	}))

	dispatcher := NewDispatcher(registry)
	result := dispatcher.Dispatch(context.Background(), newCall("call_4", "notify", `{not json`))

	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "Invalid arguments")
}

func TestDispatch_HandlerErrorNormalized(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	require.NoError(t, registry.Register(stubTool{
		name: "flaky",
		execute: func(ctx context.Context, args json.RawMessage) (ToolResult, error) {
			return ToolResult{}, fmt.Errorf("connection refused")
		},
	}))

	dispatcher := NewDispatcher(registry)
	result := dispatcher.Dispatch(context.Background(), newCall("call_5", "flaky", `{}`))

	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "connection refused")
}

func TestDispatch_SuccessPassthrough(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	require.NoError(t, registry.Register(stubTool{
		name:   "echo",
		schema: `{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`,
		execute: func(ctx context.Context, args json.RawMessage) (ToolResult, error) {
			return ToolResult{Content: string(args)}, nil
		},
	}))

	dispatcher := NewDispatcher(registry)
	result := dispatcher.Dispatch(context.Background(), newCall("call_6", "echo", `{"text":"hello"}`))

	assert.Equal(t, "call_6", result.ID)
	assert.False(t, result.IsError)
	assert.JSONEq(t, `{"text":"hello"}`, result.Content)
}

func TestDispatch_ToolLevelErrorFlagKept(t *testing.T) {
	t.Parallel()

	// A tool may fold its own failure into ToolResult{IsError: true} with a
	// nil error; the flag must survive dispatch.
	registry := NewRegistry()
	require.NoError(t, registry.Register(stubTool{
		name: "soft-fail",
		execute: func(ctx context.Context, args json.RawMessage) (ToolResult, error) {
			return ToolResult{Content: "upstream said no", IsError: true}, nil
		},
	}))

	dispatcher := NewDispatcher(registry)
	result := dispatcher.Dispatch(context.Background(), newCall("call_7", "soft-fail", `{}`))

	assert.True(t, result.IsError)
	assert.Equal(t, "upstream said no", result.Content)
}
