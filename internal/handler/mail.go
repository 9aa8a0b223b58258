package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hdclinic/bed-scheduler/backend/internal/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const MailQueue = "email_queue"

type MailPublisher interface {
	PublishMail(ctx context.Context, msg domain.MailMessage) error
}

// AMQPMailer puts mail messages on the queue consumed by cmd/mail.
type AMQPMailer struct {
	channel *amqp.Channel
	timeout time.Duration
}

func NewAMQPMailer(ch *amqp.Channel, timeout time.Duration) *AMQPMailer {
	return &AMQPMailer{channel: ch, timeout: timeout}
}

func (m *AMQPMailer) PublishMail(ctx context.Context, msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	return m.channel.PublishWithContext(
		ctx,
		"",
		MailQueue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
