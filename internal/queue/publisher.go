package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/sabha-admin/internal/model"
)

// Publisher sends events to RabbitMQ.  It dials per publish: registrations
// are rare and this keeps no connection state to repair.
type Publisher struct {
	url string
	log *zap.SugaredLogger
}

func NewPublisher(url string, log *zap.SugaredLogger) *Publisher {
	return &Publisher{url: url, log: log}
}

// NotifyRegistered publishes a UserRegisteredEvent for u.
func (p *Publisher) NotifyRegistered(ctx context.Context, u model.User) error {
	return p.publish(ctx, UserRegisteredQueue, NewUserRegisteredEvent(u))
}

func (p *Publisher) publish(ctx context.Context, queue string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warnw("rabbitmq dial failed", "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warnw("rabbitmq channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		p.log.Warnw("rabbitmq queue declare failed", "queue", queue, "error", err)
		return err
	}
	return ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
