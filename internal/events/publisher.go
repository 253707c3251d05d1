package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher writes booking lifecycle events to one Kafka topic, keyed by
// booking id so one booking's events land on one partition in order.
// Messaging is best effort: a missing topic is provisioned once and the
// write retried once, any further failure is logged and swallowed.
type Publisher struct {
	writer  kafkaWriter
	brokers []string
	topic   string
	log     *zap.Logger

	provisionOnce sync.Once
	provision     func(ctx context.Context) error
}

func NewPublisher(brokers []string, topic string, log *zap.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	p := &Publisher{
		writer:  writer,
		brokers: brokers,
		topic:   topic,
		log:     log,
	}
	p.provision = p.createTopic
	return p
}

// Publish emits one event. The returned message id is the event's dedupe
// key. A degraded bus yields an empty id and a nil error.
func (p *Publisher) Publish(ctx context.Context, eventType, bookingID string, version int, payload any) (string, error) {
	event := Event{
		Type:      eventType,
		BookingID: bookingID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
		DedupeKey: DedupeKey(bookingID, eventType, version),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(bookingID),
		Value: data,
		Time:  event.Timestamp,
	}

	err = p.writer.WriteMessages(ctx, msg)
	if err != nil && isUnknownTopic(err) {
		var provisionErr error
		p.provisionOnce.Do(func() { provisionErr = p.provision(ctx) })
		if provisionErr != nil {
			p.log.Warn("topic provisioning failed",
				zap.String("topic", p.topic), zap.Error(provisionErr))
			return "", nil
		}
		err = p.writer.WriteMessages(ctx, msg)
	}
	if err != nil {
		p.log.Warn("event publish failed",
			zap.String("topic", p.topic),
			zap.String("event_type", eventType),
			zap.String("booking_id", bookingID),
			zap.Error(err))
		return "", nil
	}

	return event.DedupeKey, nil
}

func (p *Publisher) createTopic(ctx context.Context) error {
	conn, err := kafka.DialContext(ctx, "tcp", p.brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("resolve controller: %w", err)
	}

	ctrlConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer ctrlConn.Close()

	return ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             p.topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
}

func isUnknownTopic(err error) bool {
	if errors.Is(err, kafka.UnknownTopicOrPartition) {
		return true
	}
	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) {
		for _, we := range writeErrs {
			if errors.Is(we, kafka.UnknownTopicOrPartition) {
				return true
			}
		}
	}
	return false
}

func (p *Publisher) Close() error {
	if w, ok := p.writer.(*kafka.Writer); ok {
		return w.Close()
	}
	return nil
}
