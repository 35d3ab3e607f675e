package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher provides typed methods for publishing events to NATS JetStream.
// A nil Publisher is valid and drops everything, so callers never have to
// branch on whether the event bus is configured.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishChatTurn publishes a chat turn event.
func (p *Publisher) PublishChatTurn(ctx context.Context, event ChatTurnEvent) error {
	return p.publish(ctx, SubjectChatTurn, event)
}

// PublishAnalysis publishes a weather analysis event.
func (p *Publisher) PublishAnalysis(ctx context.Context, event AnalysisEvent) error {
	return p.publish(ctx, SubjectAnalysis, event)
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	if _, err := p.js.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
