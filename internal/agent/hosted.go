package agent

import (
	"context"
	"fmt"
)

// HostedGateway is the gateway for a hosted reasoning model, selected when
// offline_mode is disabled. It resolves the configured model name to its
// hosted identifier and carries the system prompt, but the transport and
// credential wiring are not available yet, so Process reports a
// configuration error instead of streaming events.
type HostedGateway struct {
	modelID string
	prompt  string
}

// NewHostedGateway creates a gateway for the named model. Unknown names
// fall back to the default model, matching ResolveModelID.
func NewHostedGateway(model string) *HostedGateway {
	return &HostedGateway{
		modelID: ResolveModelID(model),
		prompt:  SystemPrompt,
	}
}

// ModelID returns the resolved hosted model identifier.
func (g *HostedGateway) ModelID() string {
	return g.modelID
}

func (g *HostedGateway) Process(ctx context.Context, emailContent, customerEmail string) (EventStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processing email: %w", err)
	}
	return nil, fmt.Errorf("hosted model %s is not configured; enable offline_mode to use the scripted gateway", g.modelID)
}
