package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// Publisher sends booking events to a durable RabbitMQ queue.  Each
// publish dials its own connection, so a broker outage never leaves a
// broken channel behind; the caller decides whether failures matter.
type Publisher struct {
    url   string
    queue string
    log   *logrus.Logger
}

// NewPublisher returns a Publisher for the given broker URL and queue.
func NewPublisher(url, queue string, log *logrus.Logger) *Publisher {
    return &Publisher{url: url, queue: queue, log: log}
}

// Publish marshals ev and publishes it as a persistent message on the
// default exchange with the queue name as routing key.
func (p *Publisher) Publish(ctx context.Context, ev BookingEvent) error {
    entry := p.log.WithFields(logrus.Fields{"queue": p.queue, "kind": ev.Kind, "booking_id": ev.BookingID})

    conn, err := amqp.Dial(p.url)
    if err != nil {
        entry.WithError(err).Warn("rabbitmq: dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        entry.WithError(err).Warn("rabbitmq: channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := declareQueue(ch, p.queue); err != nil {
        entry.WithError(err).Warn("rabbitmq: queue declare failed")
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return err
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.EventID,
        Type:         ev.Kind,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
        entry.WithError(err).Warn("rabbitmq: publish failed")
        return err
    }
    entry.Debug("rabbitmq: event published")
    return nil
}

// declareQueue declares the durable, non-exclusive booking queue.
func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
    return ch.QueueDeclare(name, true, false, false, false, nil)
}
