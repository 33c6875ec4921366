package alert

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// PubSubNotifier publishes alert events to a Pub/Sub topic so that
// downstream consumers (dashboards, paging) can react to them.
type PubSubNotifier struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topicName string
	logger    zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub notifier.
type PubSubConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// NewPubSubNotifier creates a notifier publishing to the configured topic.
func NewPubSubNotifier(ctx context.Context, cfg PubSubConfig) (*PubSubNotifier, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	return &PubSubNotifier{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		topicName: cfg.TopicName,
		logger:    cfg.Logger,
	}, nil
}

// Notify publishes one message per event. Publish failures for later
// events do not prevent earlier ones from going out.
func (n *PubSubNotifier) Notify(ctx context.Context, events []Event) error {
	var firstErr error
	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encoding alert event: %w", err)
		}

		result := n.publisher.Publish(ctx, &pubsub.Message{
			Data: data,
			Attributes: map[string]string{
				"zone":   ev.Zone,
				"metric": ev.Metric,
			},
		})
		id, err := result.Get(ctx)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("publishing alert for zone %s: %w", ev.Zone, err)
			}
			continue
		}

		n.logger.Debug().
			Str("message_id", id).
			Str("topic", n.topicName).
			Str("zone", ev.Zone).
			Msg("alert published")
	}
	return firstErr
}

// Close stops the publisher and releases the client.
func (n *PubSubNotifier) Close() error {
	n.publisher.Stop()
	return n.client.Close()
}
