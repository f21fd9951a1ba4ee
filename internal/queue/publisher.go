package queue

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/bowling-lane-reservation/internal/model"
)

// Publisher sends reservation events to QueueName.  It dials per publish:
// booking volume is low and this keeps the publisher free of connection
// state that would need reconnect handling.
type Publisher struct {
    url     string
    timeout time.Duration
}

func NewPublisher(url string) *Publisher {
    return &Publisher{url: url, timeout: 5 * time.Second}
}

// Publish marshals a ReservationEvent and publishes it as a persistent
// message.  The AMQP message id is the event id.
func (p *Publisher) Publish(ctx context.Context, kind string, r model.Reservation) error {
    ev := NewReservationEvent(kind, r, time.Now())
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(p.timeout)})
    if err != nil {
        return fmt.Errorf("dial broker: %w", err)
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("open channel: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("declare queue: %w", err)
    }

    pctx, cancel := context.WithTimeout(ctx, p.timeout)
    defer cancel()
    err = ch.PublishWithContext(pctx, "", QueueName, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.EventID,
        Type:         kind,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    })
    if err != nil {
        return fmt.Errorf("publish %s: %w", kind, err)
    }
    return nil
}
