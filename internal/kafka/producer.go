package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tutorhub/booking-engine/internal/booking"
)

// Producer publishes appointment status changes to a Kafka topic. The engine
// treats delivery as fire-and-forget; callers log failures and move on.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{writer: writer}
}

// PublishStatusChanged emits one message keyed by appointment id, so all
// events for an appointment land on the same partition in order.
func (p *Producer) PublishStatusChanged(ctx context.Context, ev booking.StatusChangedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal status change event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.AppointmentID.String()),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write status change event: %w", err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
