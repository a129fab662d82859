package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// Publisher sends ReservationEvents to QueueName.  Every call dials its own
// connection so a broker outage never leaves a broken channel behind.
type Publisher struct {
    url string
    log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &Publisher{url: url, log: log}
}

// Publish declares the queue (idempotent) and sends ev as a persistent
// JSON message.  Failures are returned, not logged; the caller decides how
// to report them.
func (p *Publisher) Publish(ctx context.Context, ev ReservationEvent) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        return fmt.Errorf("rabbitmq dial: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("rabbitmq channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("rabbitmq declare %s: %w", QueueName, err)
    }

    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("encode event: %w", err)
    }
    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Type:         ev.Type,
        MessageId:    ev.ReservationID + ":" + ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", QueueName, false, false, pub); err != nil {
        return fmt.Errorf("rabbitmq publish: %w", err)
    }
    p.log.Debug("event published", zap.String("event", ev.Type), zap.String("reservation_id", ev.ReservationID))
    return nil
}

// NopPublisher drops every event.  It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ReservationEvent) error { return nil }
