package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dutrus/MESALIB/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Sink hands an intent to the outbound notification channel.
type Sink interface {
	// Deliver sends one intent. A nil error means the channel accepted it.
	Deliver(ctx context.Context, intent *domain.NotificationIntent) error

	// Name identifies the sink in logs.
	Name() string
}

// StreamAdder is the part of the go-redis client used by RedisStreamSink.
type StreamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStreamSink appends intents to a Redis stream consumed by the e-mail
// deliverer. Each entry carries the intent fields as flat string values.
type RedisStreamSink struct {
	client StreamAdder
	stream string
	maxLen int64
}

var _ Sink = (*RedisStreamSink)(nil)

// NewRedisStreamSink creates a sink writing to stream. When maxLen is
// positive the stream is trimmed to roughly that many entries.
func NewRedisStreamSink(client StreamAdder, stream string, maxLen int64) *RedisStreamSink {
	if client == nil {
		panic("client cannot be nil")
	}
	return &RedisStreamSink{client: client, stream: stream, maxLen: maxLen}
}

// Deliver implements Sink.Deliver
func (s *RedisStreamSink) Deliver(ctx context.Context, intent *domain.NotificationIntent) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: StreamValues(intent),
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to append intent to stream %s: %w", s.stream, err)
	}
	return nil
}

// Name implements Sink.Name
func (s *RedisStreamSink) Name() string {
	return "redis_stream"
}

// StreamValues flattens an intent into stream entry fields.
func StreamValues(intent *domain.NotificationIntent) map[string]any {
	return map[string]any{
		"intent_id":    intent.ID.String(),
		"type":         string(intent.Type),
		"recipient_id": intent.RecipientID.String(),
		"payload":      string(intent.Payload),
		"created_at":   intent.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// LogSink writes intents to a structured log. It is used when no Redis
// stream is configured.
type LogSink struct {
	logger *slog.Logger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink creates a LogSink. If logger is nil, a default logger will be used.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger.With("component", "log_sink")}
}

// Deliver implements Sink.Deliver
func (s *LogSink) Deliver(ctx context.Context, intent *domain.NotificationIntent) error {
	s.logger.InfoContext(ctx, "notification intent",
		"intent_id", intent.ID,
		"type", intent.Type,
		"recipient_id", intent.RecipientID,
		"payload", string(intent.Payload))
	return nil
}

// Name implements Sink.Name
func (s *LogSink) Name() string {
	return "log"
}
