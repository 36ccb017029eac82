// Package rabbitmq содержит публикацию сообщений и конфигурацию очередей.
package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// Exchange — общий exchange платформы для фоновых сообщений.
const Exchange = "videohub"

// ContactQueue — очередь сообщений формы обратной связи.
const ContactQueue = "contact_messages"

// ContactRoutingKey — ключ маршрутизации сообщений обратной связи.
const ContactRoutingKey = "contact"

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetContactQueues возвращает очереди воркера отправки почты.
func GetContactQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: ContactQueue, RoutingKey: ContactRoutingKey},
	}
}

// Publisher публикует сообщения формы обратной связи через открытый канал.
type Publisher struct {
	ch *amqp.Channel
}

// NewPublisher создает новый Publisher.
func NewPublisher(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// Publish отправляет сообщение в очередь обратной связи.
func (p *Publisher) Publish(message any) error {
	return PublishMessage(p.ch, Exchange, ContactRoutingKey, message)
}

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
