package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"
)

// Consumer listens to the booking queue and appends one line per event
// to a log file.
type Consumer struct {
    url     string
    queue   string
    logPath string
    log     *logrus.Logger
}

func NewConsumer(url, queue, logPath string, log *logrus.Logger) *Consumer {
    return &Consumer{url: url, queue: queue, logPath: logPath, log: log}
}

// Run connects to RabbitMQ, declares the queue and consumes until ctx
// is cancelled.  Lost connections are redialled with exponential
// backoff capped at 30s.  A message that cannot be handled is rejected
// without requeue so a poison message cannot loop.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.url)
        if err != nil {
            c.log.WithError(err).WithField("retry_in", backoff.String()).Warn("booking-consumer: failed to dial broker")
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.log.WithError(err).Warn("booking-consumer: consume loop ended; reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.WithError(err).Warn("booking-consumer: set QoS failed")
    }
    if _, err := declareQueue(ch, c.queue); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.handle(d.Body); err != nil {
                c.log.WithError(err).Error("booking-consumer: handle message failed")
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *Consumer) handle(body []byte) error {
    var ev BookingEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll(filepath.Dir(c.logPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(c.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev as one human-friendly log line.
func FormatLine(ev BookingEvent) string {
    target := ""
    switch {
    case ev.RoomID != nil:
        target = fmt.Sprintf(" | room_id=%d", *ev.RoomID)
    case ev.FacilityName != "":
        target = fmt.Sprintf(" | facilities=%q", ev.FacilityName)
    }
    transition := ev.Status
    if ev.PreviousStatus != "" {
        transition = ev.PreviousStatus + "->" + ev.Status
    }
    return fmt.Sprintf("[%s] %s | booking_id=%d | user_id=%d | type=%s%s | status=%s | total=%.2f\n",
        ev.OccurredAt, ev.Kind, ev.BookingID, ev.UserID, ev.Type, target, transition, ev.TotalAmount)
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}
