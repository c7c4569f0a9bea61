package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"eureka/pkg/domain"
	"eureka/pkg/realtime/wire"
	"eureka/pkg/requestcontext"
)

const tracerName = "eureka/realtime"

// Publisher fans events out to every open connection in a Registry.
type Publisher struct {
	registry *Registry
	logger   *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer

	// one broadcast completes its fanout before the next starts
	mu sync.Mutex
}

func NewPublisher(registry *Registry, logger *slog.Logger, metrics *Metrics) *Publisher {
	return &Publisher{
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		tracer:   otel.Tracer(tracerName),
	}
}

// Broadcast sends the event to every open connection. Only encoding errors
// are returned; per-connection write failures are logged and counted.
func (p *Publisher) Broadcast(ctx context.Context, eventType wire.EventType, payload any) error {
	return p.publish(ctx, eventType, payload, nil)
}

// BroadcastTo sends the event only to connections authenticated as recipient.
func (p *Publisher) BroadcastTo(ctx context.Context, eventType wire.EventType, payload any, recipient domain.UserID) error {
	return p.publish(ctx, eventType, payload, func(c *Connection) bool {
		return c.Subject == recipient
	})
}

func (p *Publisher) publish(ctx context.Context, eventType wire.EventType, payload any, match func(*Connection) bool) error {
	ctx, span := p.tracer.Start(ctx, "realtime.broadcast",
		trace.WithAttributes(
			attribute.String("event.type", eventType.String()),
			attribute.Bool("event.targeted", match != nil),
		))
	defer span.End()

	frame, err := wire.Encode(eventType, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode failed")
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	var sent, failed int
	p.registry.ForEach(func(c *Connection) {
		if c.State() != StateOpen {
			return
		}
		if match != nil && !match(c) {
			return
		}
		if err := c.Send(frame); err != nil {
			failed++
			p.logger.WarnContext(ctx, "realtime send failed",
				"error", err,
				"conn_id", c.ID,
				"user_id", c.Subject.String(),
				"event_type", eventType.String(),
				"request_id", requestcontext.RequestID(ctx),
			)
			return
		}
		sent++
	})
	elapsed := time.Since(start)
	p.metrics.broadcast(eventType.String(), failed, elapsed)

	span.SetAttributes(attribute.Int("event.sent", sent), attribute.Int("event.failed", failed))
	p.logger.DebugContext(ctx, "realtime broadcast",
		"event_type", eventType.String(),
		"sent", sent,
		"failed", failed,
		"duration_ms", elapsed.Milliseconds(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}
