package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"service-shop-delivery/internal/domain"
)

// Payload is the JSON document published to the push topic.
type Payload struct {
	Channel   string    `json:"channel"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UserID    string    `json:"user_id,omitempty"`
	PageID    string    `json:"page_id,omitempty"`
	PageName  string    `json:"page_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// KafkaGateway publishes push notifications to a Kafka topic keyed by channel.
type KafkaGateway struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

// NewKafkaProducer builds a sync producer that waits for all in-sync replicas.
// A positive timeout bounds dialing, each network round trip, metadata
// refresh and the broker's wait for acks.
func NewKafkaProducer(brokers []string, timeout time.Duration) (sarama.SyncProducer, error) {
	return sarama.NewSyncProducer(brokers, producerConfig(timeout))
}

func producerConfig(timeout time.Duration) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 0
	if timeout > 0 {
		cfg.Net.DialTimeout = timeout
		cfg.Net.ReadTimeout = timeout
		cfg.Net.WriteTimeout = timeout
		cfg.Metadata.Timeout = timeout
		cfg.Producer.Timeout = timeout
	}
	return cfg
}

// NewKafkaGateway wraps producer. It returns nil when producer is nil or
// topic is blank.
func NewKafkaGateway(producer sarama.SyncProducer, topic string) *KafkaGateway {
	if producer == nil || strings.TrimSpace(topic) == "" {
		return nil
	}
	return &KafkaGateway{producer: producer, topic: topic, now: time.Now}
}

// Broadcast publishes title/body to every subscriber of topic.
func (g *KafkaGateway) Broadcast(ctx context.Context, topic domain.Topic, title, body string) error {
	return g.publish(ctx, Payload{
		Channel: string(topic),
		Title:   title,
		Body:    body,
	})
}

// RecordForUser publishes rec to its user channel.
func (g *KafkaGateway) RecordForUser(ctx context.Context, rec domain.NotificationRecord) error {
	return g.publish(ctx, Payload{
		Channel:  string(rec.Topic),
		Title:    rec.Title,
		Body:     rec.Body,
		UserID:   rec.TargetUserID,
		PageID:   rec.PageID,
		PageName: rec.PageName,
	})
}

// publish checks ctx only before sending. SendMessage takes no context, so an
// in-flight send is bounded by the producer's network timeouts.
func (g *KafkaGateway) publish(ctx context.Context, p Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.CreatedAt = g.now().UTC()
	b, err := json.Marshal(p)
	if err != nil {
		return Permanent(fmt.Errorf("marshal push payload: %w", err))
	}
	_, _, err = g.producer.SendMessage(&sarama.ProducerMessage{
		Topic: g.topic,
		Key:   sarama.StringEncoder(p.Channel),
		Value: sarama.ByteEncoder(b),
	})
	if err != nil {
		if errors.Is(err, sarama.ErrMessageSizeTooLarge) {
			return Permanent(err)
		}
		return fmt.Errorf("publish to %s: %w", p.Channel, err)
	}
	return nil
}

// Close closes the underlying producer.
func (g *KafkaGateway) Close() error {
	if g == nil {
		return nil
	}
	return g.producer.Close()
}
