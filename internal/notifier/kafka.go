package notifier

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/pkg/sasl/scram"

	"specsync/internal/config"
	"specsync/internal/secrets"
	specsyncerrors "specsync/pkg/errors"
)

// KafkaNotifier publishes change events to a Kafka topic, one record per
// event, keyed by service name so per-service ordering is preserved.
type KafkaNotifier struct {
	client *kgo.Client
	topic  string
}

// NewKafkaNotifier builds a producer from the notifier configuration. The
// SASL password is resolved through the secret resolver, never read inline.
func NewKafkaNotifier(cfg config.Notifier, resolver secrets.Resolver) (*KafkaNotifier, error) {
	if cfg.Kafka == nil {
		return nil, fmt.Errorf("kafka notifier requires a kafka config block")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Kafka.Brokers...),
		kgo.DefaultProduceTopic(cfg.Topic),
	}

	if cfg.Kafka.TLS {
		opts = append(opts, kgo.DialTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
		}))
	}

	if cfg.Kafka.SASL != nil {
		mech, err := buildSASLMechanism(cfg.Kafka.SASL, resolver)
		if err != nil {
			return nil, err
		}
		opts = append(opts, kgo.SASL(mech))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	return &KafkaNotifier{client: client, topic: cfg.Topic}, nil
}

// Notify implements Notifier. The produce is synchronous so the orchestrator
// can record delivery failures in the run report.
func (n *KafkaNotifier) Notify(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return specsyncerrors.NewNotificationError(event.Service, err)
	}

	record := &kgo.Record{
		Topic: n.topic,
		Key:   []byte(event.Service),
		Value: value,
	}
	if err := n.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return specsyncerrors.NewNotificationError(event.Service, err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (n *KafkaNotifier) Close() error {
	n.client.Close()
	return nil
}

// buildSASLMechanism constructs the appropriate SASL mechanism.
func buildSASLMechanism(cfg *config.SASLConfig, resolver secrets.Resolver) (sasl.Mechanism, error) {
	password, ok := resolver.Resolve(cfg.PasswordRef)
	if !ok {
		return nil, fmt.Errorf("sasl password reference %q did not resolve", cfg.PasswordRef)
	}

	switch cfg.Mechanism {
	case "plain":
		return plain.Auth{
			User: cfg.User,
			Pass: password,
		}.AsMechanism(), nil
	case "scram-sha-256":
		return scram.Auth{
			User: cfg.User,
			Pass: password,
		}.AsSha256Mechanism(), nil
	case "scram-sha-512":
		return scram.Auth{
			User: cfg.User,
			Pass: password,
		}.AsSha512Mechanism(), nil
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %q", cfg.Mechanism)
	}
}

var _ Notifier = (*KafkaNotifier)(nil)
