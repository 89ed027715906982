package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// TemplateWelcome is the notification sent to newly onboarded staff.
const TemplateWelcome = "welcome"

// Notifier emits best-effort side notifications. Callers ignore returned
// errors; they exist for logging only.
type Notifier interface {
	Emit(ctx context.Context, principalID, restaurantID, template string, fields map[string]string) error
}

// Event is the wire shape published to the notification topic.
type Event struct {
	PrincipalID  string            `json:"principal_id"`
	RestaurantID string            `json:"restaurant_id"`
	Template     string            `json:"template"`
	Fields       map[string]string `json:"fields,omitempty"`
	EmittedAt    time.Time         `json:"emitted_at"`
}

// KafkaNotifier publishes notification events to a Kafka topic.
type KafkaNotifier struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaNotifier creates a notifier writing to the given broker and topic.
func NewKafkaNotifier(broker, topic string) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}
	return &KafkaNotifier{writer: writer, topic: topic}
}

// Emit publishes one notification event, keyed by restaurant so per-tenant
// ordering is preserved.
func (n *KafkaNotifier) Emit(ctx context.Context, principalID, restaurantID, template string, fields map[string]string) error {
	event := Event{
		PrincipalID:  principalID,
		RestaurantID: restaurantID,
		Template:     template,
		Fields:       fields,
		EmittedAt:    time.Now().UTC(),
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal notification event: %w", err)
	}

	msg := kafka.Message{
		Topic: n.topic,
		Key:   []byte(restaurantID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "template", Value: []byte(template)},
			{Key: "restaurant_id", Value: []byte(restaurantID)},
		},
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := n.writer.WriteMessages(writeCtx, msg); err != nil {
		return fmt.Errorf("failed to write notification event: %w", err)
	}
	return nil
}

// Close shuts down the underlying Kafka writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
