package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog/log"
)

// Consumer appends one line per reservation event to LogPath.
type Consumer struct {
    URL     string
    LogPath string
}

// Run connects to the broker and consumes QueueName until ctx is done.
// Connection failures are retried with exponential backoff capped at 30s;
// a message that cannot be handled is rejected without requeue so one bad
// payload cannot stall the queue.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            log.Warn().Err(err).Dur("retry_in", backoff).Msg("reservation consumer: dial failed")
            if !sleep(ctx, backoff) {
                return nil
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return nil
        }
        log.Warn().Err(err).Msg("reservation consumer: loop ended, reconnecting")
        if !sleep(ctx, 2*time.Second) {
            return nil
        }
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Warn().Err(err).Msg("reservation consumer: set QoS failed")
    }
    if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, QueueName, "", false, false, false, false, nil)
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
                log.Error().Err(err).Str("message_id", d.MessageId).Msg("reservation consumer: handle message failed")
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func (c *Consumer) handle(body []byte) error {
    var ev ReservationEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    return appendLine(c.LogPath, FormatLine(ev))
}

// FormatLine renders an event as a single human-readable log line.
func FormatLine(ev ReservationEvent) string {
    verb := "Reservation created"
    if strings.HasSuffix(ev.Kind, "cancelled") {
        verb = "Reservation cancelled"
    }
    return fmt.Sprintf("[%s] %s | reservation_id=%d | customer=%q | name=%q | date=%s | time=%s-%s | lane=%q | players=%d | total=%d | event_id=%s\n",
        ev.OccurredAt, verb, ev.ReservationID, ev.CustomerEmail, ev.Name, ev.Date, ev.StartTime, ev.EndTime,
        ev.Lane, ev.Players, ev.TotalCost, ev.EventID)
}

func appendLine(path, line string) error {
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// sleep waits for d or until ctx is done; it reports false in the latter case.
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
