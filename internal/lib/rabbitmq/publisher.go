package rabbitmq

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"

	"github.com/novawriterhq/novawriter/internal/models"
)

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

// EmailPublisher публикует письма в обменник писем.
type EmailPublisher struct {
	ch *amqp.Channel
}

// NewEmailPublisher создаёт издателя поверх готового канала.
func NewEmailPublisher(ch *amqp.Channel) *EmailPublisher {
	return &EmailPublisher{ch: ch}
}

// PublishWelcome ставит в очередь приветственное письмо.
func (p *EmailPublisher) PublishWelcome(email string) error {
	return PublishMessage(p.ch, EmailExchange, WelcomeRoutingKey, models.WelcomeEmail{Email: email})
}

// PublishContact ставит в очередь обращение из формы обратной связи.
func (p *EmailPublisher) PublishContact(msg models.ContactMessage) error {
	return PublishMessage(p.ch, EmailExchange, ContactRoutingKey, msg)
}
