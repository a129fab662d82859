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
    "go.uber.org/zap"
)

// Consumer appends one line per ReservationEvent to LogPath.
type Consumer struct {
    URL     string
    LogPath string
    log     *zap.Logger
}

func NewConsumer(url, logPath string, log *zap.Logger) *Consumer {
    if logPath == "" {
        logPath = filepath.Join("logs", "reservations.log")
    }
    if log == nil {
        log = zap.NewNop()
    }
    return &Consumer{URL: url, LogPath: logPath, log: log.Named("reservation-consumer")}
}

// Run connects, consumes and reconnects with exponential backoff (capped at
// 30s) until ctx is cancelled.  It returns ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.log.Warn("dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
            if !sleep(ctx, backoff) {
                return ctx.Err()
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
            return ctx.Err()
        }
        c.log.Warn("consume loop ended, reconnecting", zap.Error(err))
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
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

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.log.Warn("set QoS failed", zap.Error(err))
    }
    if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(QueueName, "", false, false, false, false, nil)
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
            if err := c.Handle(d.Body); err != nil {
                c.log.Error("handle message failed", zap.Error(err))
                _ = d.Nack(false, false) // do not requeue poison messages
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one message body and appends its audit line.
func (c *Consumer) Handle(body []byte) error {
    var ev ReservationEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || ev.ReservationID == "" {
        return errors.New("event without type or reservation id")
    }
    if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders ev as a single newline-terminated audit line.
func FormatLine(ev ReservationEvent) string {
    transition := ev.Status
    if ev.PreviousStatus != "" {
        transition = ev.PreviousStatus + "->" + ev.Status
    }
    return fmt.Sprintf("[%s] %s | confirmation=%s | reservation_id=%s | user_id=%s | actor=%s(%s) | status=%s | stay=%s..%s | guests=%d | total=%d cents | rooms=[%s]\n",
        ev.OccurredAt, ev.Type, ev.ConfirmationNumber, ev.ReservationID, ev.UserID, ev.ActorID, ev.ActorRole,
        transition, ev.CheckIn, ev.CheckOut, ev.Guests, ev.TotalPriceCents, strings.Join(ev.RoomIDs, ","))
}
