package tools

import (
	"github.com/lalithlochan/nimbus-agent/internal/nimbus"
)

// NewNimbusRegistry returns a registry with the full Nimbus toolset wired
// against the given API client.
func NewNimbusRegistry(client *nimbus.Client) (*Registry, error) {
	registry := NewRegistry()

	all := []Tool{
		NewCreateNotificationTool(client),
		NewNotificationStatusTool(client),
		NewListNotificationsTool(client),
		NewListDeadLettersTool(client),
		NewRetryDeadLetterTool(client),
	}
	for _, tool := range all {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
