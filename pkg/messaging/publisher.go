package messaging

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

// Publisher delivers JSON events to the configured topic exchange.
// Delivery is at-least-once and best-effort: a single attempt per call,
// retry policy belongs to the caller.
type Publisher struct {
	client *RabbitMQClient
}

func NewPublisher(client *RabbitMQClient) *Publisher {
	return &Publisher{
		client: client,
	}
}

func (p *Publisher) Publish(routingKey string, payload interface{}) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("there is no connection to RabbitMQ")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("event serialization error: %v", err)
	}

	messageID := uuid.New().String()

	channel := p.client.Channel()
	err = channel.Publish(
		p.client.config.Exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // Message persistence
			MessageId:    messageID,
			Timestamp:    time.Now(),
			Headers: amqp.Table{
				"event_type": routingKey,
			},
		},
	)

	if err != nil {
		return fmt.Errorf("event publish error: %v", err)
	}

	log.Printf("Event published: %s (message_id=%s)", routingKey, messageID)
	return nil
}
